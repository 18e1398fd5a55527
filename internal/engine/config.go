package engine

import (
	"errors"
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/env"
)

// Config holds all runtime configuration, built once in main and passed down.
type Config struct {
	LLMAPIKey      string
	LLMAPIBase     string
	LLMModel       string
	LLMTemperature float64
	LLMMaxTokens   int
	LLMTimeout     time.Duration

	YouTubeAPIKey        string // optional; enables Data API playlist resolution
	WebshareAPIKey       string // optional; proxy pool for page scraping
	TranscriptLangs      []string
	FetchTimeout         time.Duration
	PlaylistItemInterval time.Duration // 0 = no pacing between playlist items

	DisplayChars int
	OutputDir    string
	LogFile      string
	LogLevel     string
}

// ErrMissingAPIKey is returned by LoadConfig when no completion key is configured.
var ErrMissingAPIKey = errors.New("OPENAI_API_KEY is not set; add it to your environment or .env file")

// LoadConfig reads Config from the process environment.
func LoadConfig() (Config, error) {
	c := Config{
		LLMAPIKey:            env.Str("OPENAI_API_KEY", env.Str("LLM_API_KEY", "")),
		LLMAPIBase:           env.Str("LLM_API_BASE", "https://api.openai.com/v1"),
		LLMModel:             env.Str("LLM_MODEL", "gpt-3.5-turbo"),
		LLMTemperature:       env.Float("LLM_TEMPERATURE", 0.5),
		LLMMaxTokens:         env.Int("LLM_MAX_TOKENS", 2000),
		LLMTimeout:           env.Duration("LLM_TIMEOUT", 60*time.Second),
		YouTubeAPIKey:        env.Str("YOUTUBE_API_KEY", ""),
		WebshareAPIKey:       env.Str("WEBSHARE_API_KEY", ""),
		TranscriptLangs:      env.List("TRANSCRIPT_LANGS", "en"),
		FetchTimeout:         env.Duration("FETCH_TIMEOUT", 15*time.Second),
		PlaylistItemInterval: env.Duration("PLAYLIST_ITEM_INTERVAL", 0),
		DisplayChars:         env.Int("DISPLAY_CHARS", 3000),
		OutputDir:            env.Str("OUTPUT_DIR", "."),
		LogFile:              env.Str("LOG_FILE", "study-assistant.log"),
		LogLevel:             env.Str("LOG_LEVEL", "info"),
	}
	if c.LLMAPIKey == "" {
		return c, ErrMissingAPIKey
	}
	return c, nil
}

// FetchClient returns the HTTP client used for YouTube requests.
func (c Config) FetchClient() *http.Client {
	return &http.Client{
		Timeout: c.FetchTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     60 * time.Second,
		},
	}
}

func httpClientWithTimeout(d time.Duration) *http.Client {
	return &http.Client{Timeout: d}
}
