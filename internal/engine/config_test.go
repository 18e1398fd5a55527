package engine

import (
	"errors"
	"os"
	"testing"
	"time"
)

var configVars = []string{
	"OPENAI_API_KEY", "LLM_API_KEY", "LLM_API_BASE", "LLM_MODEL", "LLM_TEMPERATURE", "LLM_MAX_TOKENS",
	"LLM_TIMEOUT", "YOUTUBE_API_KEY", "WEBSHARE_API_KEY", "TRANSCRIPT_LANGS", "FETCH_TIMEOUT",
	"PLAYLIST_ITEM_INTERVAL", "DISPLAY_CHARS", "OUTPUT_DIR", "LOG_FILE", "LOG_LEVEL",
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, k := range configVars {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	c, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if c.LLMAPIKey != "sk-test" || c.LLMModel != "gpt-3.5-turbo" || c.LLMAPIBase != "https://api.openai.com/v1" {
		t.Errorf("llm config = %+v", c)
	}
	if c.LLMTemperature != 0.5 || c.LLMMaxTokens != 2000 {
		t.Errorf("temperature/max tokens = %v/%d", c.LLMTemperature, c.LLMMaxTokens)
	}
	if c.DisplayChars != 3000 || c.OutputDir != "." || c.PlaylistItemInterval != 0 {
		t.Errorf("session config = %+v", c)
	}
	if c.FetchTimeout != 15*time.Second || c.LLMTimeout != 60*time.Second {
		t.Errorf("timeouts = %v/%v", c.FetchTimeout, c.LLMTimeout)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("LLM_API_KEY", "alias-key")
	t.Setenv("LLM_MODEL", "gpt-4o-mini")
	t.Setenv("LLM_MAX_TOKENS", "512")
	t.Setenv("PLAYLIST_ITEM_INTERVAL", "2s")
	t.Setenv("OUTPUT_DIR", "/tmp/out")

	c, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if c.LLMAPIKey != "alias-key" {
		t.Errorf("LLMAPIKey = %q, want alias value", c.LLMAPIKey)
	}
	if c.LLMModel != "gpt-4o-mini" || c.LLMMaxTokens != 512 {
		t.Errorf("model/max tokens = %q/%d", c.LLMModel, c.LLMMaxTokens)
	}
	if c.PlaylistItemInterval != 2*time.Second || c.OutputDir != "/tmp/out" {
		t.Errorf("interval/output = %v/%q", c.PlaylistItemInterval, c.OutputDir)
	}
}

func TestLoadConfigMissingKey(t *testing.T) {
	clearConfigEnv(t)

	_, err := LoadConfig()
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("err = %v, want ErrMissingAPIKey", err)
	}
}

func TestFetchClientTimeout(t *testing.T) {
	c := Config{FetchTimeout: 3 * time.Second}
	if got := c.FetchClient().Timeout; got != 3*time.Second {
		t.Errorf("Timeout = %v", got)
	}
}
