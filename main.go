// go_study is an interactive study assistant.
//
// Extracts text from a PDF, a YouTube video or every video of a playlist and turns it
// into notes, flashcards, a formula sheet or a question bank with an LLM.
// Configuration comes from the environment and an optional .env file.
package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"

	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/proxypool"
	"github.com/joho/godotenv"

	"github.com/anatolykoptev/go_study/internal/console"
	"github.com/anatolykoptev/go_study/internal/engine"
	"github.com/anatolykoptev/go_study/internal/engine/sources"
	"github.com/anatolykoptev/go_study/internal/session"
	"github.com/anatolykoptev/go_study/internal/toolutil"
)

// browserTimeoutSeconds bounds each request made through the Chrome TLS client.
const browserTimeoutSeconds = 15

func main() {
	con := console.New(os.Stdin, os.Stdout)
	if err := run(con); err != nil {
		con.Notice(console.LevelError, err.Error())
		os.Exit(1)
	}
}

func run(con *console.Console) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	cfg, err := engine.LoadConfig()
	if err != nil {
		return err
	}

	logFile := engine.NewLogFile(cfg)
	defer logFile.Close()
	log := engine.NewLogger(logFile, engine.ParseLevel(cfg.LogLevel), console.NewHandler(con))
	slog.SetDefault(log)
	log.Info("starting go_study",
		slog.String("model", cfg.LLMModel),
		slog.Bool("youtube_data_api", cfg.YouTubeAPIKey != ""),
	)

	metrics := engine.NewMetrics()
	yt := sources.NewYouTube(cfg.FetchClient(), cfg.YouTubeAPIKey)
	yt.Browser = newBrowserClient(cfg, log)

	s := session.New(con, session.Deps{
		PDF:       sources.NewPDFExtractor(log, metrics),
		Video:     sources.NewTranscriptExtractor(yt, toolutil.NormLangs(cfg.TranscriptLangs), log, metrics),
		Playlist:  sources.NewPlaylistResolver(yt, log, metrics),
		Generator: engine.NewGenerator(engine.NewLLMCompleter(cfg), cfg, log, metrics),
		Log:       log,
		Metrics:   metrics,
	}, session.Options{
		OutputDir:    cfg.OutputDir,
		DisplayChars: cfg.DisplayChars,
		ItemInterval: cfg.PlaylistItemInterval,
	})

	// The first Ctrl-C cancels the session; a second one kills the process.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	context.AfterFunc(ctx, stop)
	if err := s.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("session ended with error", slog.Any("error", err))
		return err
	}
	log.Debug("metrics", slog.String("counters", metrics.Format()))
	return nil
}

// newBrowserClient builds the Chrome TLS client used for YouTube HTML pages.
// A nil result means pages are fetched with the plain HTTP client.
func newBrowserClient(cfg engine.Config, log *slog.Logger) *stealth.BrowserClient {
	opts := []stealth.ClientOption{stealth.WithTimeout(browserTimeoutSeconds)}
	if cfg.WebshareAPIKey != "" {
		pool, err := proxypool.NewWebshare(cfg.WebshareAPIKey)
		if err != nil {
			log.Warn("proxy pool init failed, running without proxy", slog.Any("error", err))
		} else {
			opts = append(opts, stealth.WithProxyPool(pool))
			log.Info("proxy pool initialized", slog.Int("proxies", pool.Len()))
		}
	}
	bc, err := stealth.NewClient(opts...)
	if err != nil {
		log.Debug("stealth client init failed, using plain HTTP", slog.Any("error", err))
		return nil
	}
	return bc
}
