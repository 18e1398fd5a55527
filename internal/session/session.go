// Package session runs the interactive menu loop: it reads choices, drives the
// extractors and the generator, and reports every outcome as one console line.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/anatolykoptev/go_study/internal/console"
	"github.com/anatolykoptev/go_study/internal/engine"
	"golang.org/x/time/rate"
)

// IO is the console surface the session talks through.
type IO interface {
	ReadLine(ctx context.Context, prompt string) (string, error)
	Println(lines ...string)
	Header(text string)
	Notice(level console.Level, text string)
}

// PDFSource extracts the text of a PDF file.
type PDFSource interface {
	Extract(ctx context.Context, path string) (engine.SourceDocument, error)
}

// VideoSource extracts the transcript of a video URL.
type VideoSource interface {
	Extract(ctx context.Context, ref string) (engine.SourceDocument, error)
}

// PlaylistSource expands a playlist URL into video URLs.
type PlaylistSource interface {
	Resolve(ctx context.Context, ref string) (engine.Playlist, error)
}

// MaterialGenerator produces study material from extracted text.
type MaterialGenerator interface {
	Generate(ctx context.Context, content string, kind engine.MaterialKind) (string, error)
}

// Deps are the collaborators a session drives.
type Deps struct {
	PDF       PDFSource
	Video     VideoSource
	Playlist  PlaylistSource
	Generator MaterialGenerator
	Log       *slog.Logger
	Metrics   *engine.Metrics
}

// Options tune output and pacing.
type Options struct {
	OutputDir    string
	DisplayChars int
	ItemInterval time.Duration // wait between playlist items; 0 disables pacing
}

// Choice is a main-menu selection.
type Choice int

const (
	ChoiceInvalid Choice = iota
	ChoicePDF
	ChoiceVideo
	ChoicePlaylist
	ChoiceExit
)

// ParseChoice maps a main-menu answer to a Choice.
func ParseChoice(s string) Choice {
	switch strings.TrimSpace(s) {
	case "1":
		return ChoicePDF
	case "2":
		return ChoiceVideo
	case "3":
		return ChoicePlaylist
	case "4":
		return ChoiceExit
	}
	return ChoiceInvalid
}

type flowFunc func(ctx context.Context) error

// Session is one interactive run.
type Session struct {
	io      IO
	deps    Deps
	opts    Options
	log     *slog.Logger
	limiter *rate.Limiter
	flows   map[Choice]flowFunc
}

// New returns a session reading from and writing to io.
func New(io IO, deps Deps, opts Options) *Session {
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	if opts.DisplayChars <= 0 {
		opts.DisplayChars = 3000
	}
	s := &Session{io: io, deps: deps, opts: opts, log: deps.Log}
	if opts.ItemInterval > 0 {
		s.limiter = rate.NewLimiter(rate.Every(opts.ItemInterval), 1)
	}
	s.flows = map[Choice]flowFunc{
		ChoicePDF:      s.pdfFlow,
		ChoiceVideo:    s.videoFlow,
		ChoicePlaylist: s.playlistFlow,
	}
	return s
}

var mainMenu = []string{
	"",
	"AI Study Assistant",
	"1. Extract from PDF eBook/Notes",
	"2. Extract from YouTube Video",
	"3. Extract from YouTube Playlist",
	"4. Exit",
}

// Run shows the main menu until the user exits, input ends or ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return s.stop(err)
		}
		s.io.Println(mainMenu...)
		line, err := s.io.ReadLine(ctx, "Select an option (1-4): ")
		if err != nil {
			if isInterrupt(err) {
				return s.stop(err)
			}
			return err
		}

		choice := ParseChoice(line)
		if choice == ChoiceExit {
			s.exit()
			return nil
		}
		flow, ok := s.flows[choice]
		if !ok {
			s.io.Notice(console.LevelWarning, "Invalid choice. Try again.")
			continue
		}
		if err := s.runFlow(ctx, choice, flow); err != nil {
			if isInterrupt(err) {
				return s.stop(err)
			}
			s.report(err)
		}
	}
}

// stop ends the session. End of input is a normal exit; cancellation is returned.
func (s *Session) stop(err error) error {
	s.exit()
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// runFlow turns a panic inside a flow into an error so the menu keeps running.
func (s *Session) runFlow(ctx context.Context, choice Choice, flow flowFunc) (err error) {
	defer func() {
		if p := recover(); p != nil {
			s.log.Error("flow panicked", slog.Int("choice", int(choice)), slog.Any("panic", p))
			err = fmt.Errorf("unexpected failure: %v", p)
		}
	}()
	return flow(ctx)
}

func (s *Session) exit() {
	s.io.Println("", "Exiting program. Goodbye!")
	s.log.Info("session finished", slog.Any("metrics", s.deps.Metrics.Snapshot()))
}

// report prints err as a single [ERROR] line.
func (s *Session) report(err error) {
	s.io.Notice(console.LevelError, describe(err))
}

func describe(err error) string {
	var e *engine.Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	switch e.Kind {
	case engine.KindNotFound:
		return "File not found: " + e.Ref
	case engine.KindInvalidReference:
		return "Invalid link: " + e.Ref
	case engine.KindExtraction:
		return fmt.Sprintf("No content extracted from %s: %v", e.Ref, e.Err)
	case engine.KindResolution:
		return fmt.Sprintf("Could not load playlist %s: %v", e.Ref, e.Err)
	case engine.KindGeneration:
		return "AI generation failed. Try again."
	}
	return err.Error()
}

// isInterrupt reports errors that end the session rather than a single flow.
func isInterrupt(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, context.Canceled)
}

// pace waits for the playlist limiter, if any.
func (s *Session) pace(ctx context.Context) error {
	if s.limiter == nil {
		return nil
	}
	return s.limiter.Wait(ctx)
}
