package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anatolykoptev/go_study/internal/console"
	"github.com/anatolykoptev/go_study/internal/engine"
	"github.com/anatolykoptev/go_study/internal/toolutil"
)

var kindMenu = []string{
	"",
	"What do you want to generate?",
	"1. Notes",
	"2. Flashcards",
	"3. Formula Sheet",
	"4. Question Bank",
}

var kindChoices = map[string]engine.MaterialKind{
	"1": engine.MaterialNotes,
	"2": engine.MaterialFlashcards,
	"3": engine.MaterialFormulaSheet,
	"4": engine.MaterialQuestionBank,
}

func (s *Session) pdfFlow(ctx context.Context) error {
	path, err := s.ask(ctx, "Enter the full path to your PDF file: ")
	if err != nil {
		return err
	}
	doc, err := s.deps.PDF.Extract(ctx, path)
	if err != nil {
		return err
	}
	if doc.Empty() {
		s.io.Notice(console.LevelError, "No content extracted. Try again.")
		return nil
	}
	return s.generate(ctx, doc, toolutil.PDFStem(path))
}

func (s *Session) videoFlow(ctx context.Context) error {
	ref, err := s.ask(ctx, "Enter the YouTube video URL: ")
	if err != nil {
		return err
	}
	return s.processVideo(ctx, ref)
}

func (s *Session) processVideo(ctx context.Context, ref string) error {
	doc, err := s.deps.Video.Extract(ctx, ref)
	if err != nil {
		return err
	}
	if doc.Empty() {
		s.io.Notice(console.LevelError, "No content extracted. Try again.")
		return nil
	}
	return s.generate(ctx, doc, doc.Origin.Identifier)
}

// generate asks for a material kind, shows the result and offers to save it.
func (s *Session) generate(ctx context.Context, doc engine.SourceDocument, id string) error {
	kind, err := s.chooseKind(ctx)
	if err != nil {
		return err
	}
	s.io.Notice(console.LevelInfo, "Generating AI-powered study material. Please wait...")
	text, err := s.deps.Generator.Generate(ctx, doc.Text, kind)
	if err != nil {
		s.io.Notice(console.LevelError, "AI generation failed. Try again.")
		return nil
	}

	s.io.Println("")
	s.io.Header("[RESULT — " + strings.ToUpper(kind.Label()) + "]")
	s.io.Println("", engine.TruncateRunes(text, s.opts.DisplayChars, ""))

	answer, err := s.ask(ctx, "Do you want to save this to a text file? (y/n): ")
	if err != nil {
		return err
	}
	if !yes(answer) {
		return nil
	}
	stem, err := s.ask(ctx, "Enter a file name (without extension): ")
	if err != nil {
		return err
	}
	if stem == "" {
		stem = toolutil.DefaultStem(kind, id)
	}
	res := engine.MaterialResult{Text: text, Kind: kind, SourceIdentifier: doc.Origin.Identifier}
	if _, err := s.save(stem, res); err != nil {
		s.io.Notice(console.LevelError, "Could not save file: "+err.Error())
	}
	return nil
}

func (s *Session) playlistFlow(ctx context.Context) error {
	ref, err := s.ask(ctx, "Enter the YouTube playlist URL: ")
	if err != nil {
		return err
	}
	pl, err := s.deps.Playlist.Resolve(ctx, ref)
	if err != nil {
		return err
	}
	if len(pl.Videos) == 0 {
		s.io.Notice(console.LevelWarning, "No videos found in playlist.")
		return nil
	}
	title := pl.Title
	if title == "" {
		title = pl.ID
	}
	s.io.Println(fmt.Sprintf("Found %d videos in playlist: %s", len(pl.Videos), title))

	answer, err := s.ask(ctx, "Process all videos with the same material type? (y/n): ")
	if err != nil {
		return err
	}
	if yes(answer) {
		return s.batch(ctx, pl)
	}
	return s.oneByOne(ctx, pl)
}

// batch generates one material kind for every video and saves each result under its default name.
func (s *Session) batch(ctx context.Context, pl engine.Playlist) error {
	kind, err := s.chooseKind(ctx)
	if err != nil {
		return err
	}
	total := len(pl.Videos)
	saved, skipped := 0, 0
	for i, url := range pl.Videos {
		if err := s.pace(ctx); err != nil {
			return err
		}
		s.io.Notice(console.LevelInfo, fmt.Sprintf("Processing video %d/%d: %s", i+1, total, url))

		doc, err := s.deps.Video.Extract(ctx, url)
		if err == nil && doc.Empty() {
			err = errors.New("empty transcript")
		}
		if isInterrupt(err) {
			return err
		}
		if err != nil {
			s.io.Notice(console.LevelWarning, fmt.Sprintf("Skipping video %d/%d: %s", i+1, total, describe(err)))
			skipped++
			continue
		}

		text, err := s.deps.Generator.Generate(ctx, doc.Text, kind)
		if isInterrupt(err) {
			return err
		}
		if err != nil {
			s.io.Notice(console.LevelWarning, fmt.Sprintf("Skipping video %d/%d: AI generation failed", i+1, total))
			skipped++
			continue
		}
		res := engine.MaterialResult{Text: text, Kind: kind, SourceIdentifier: doc.Origin.Identifier}
		if _, err := s.save(toolutil.DefaultStem(kind, res.SourceIdentifier), res); err != nil {
			s.io.Notice(console.LevelWarning, fmt.Sprintf("Skipping video %d/%d: %v", i+1, total, err))
			skipped++
			continue
		}
		saved++
	}
	s.log.Info("playlist batch finished", slog.String("playlist", pl.ID),
		slog.Int("saved", saved), slog.Int("skipped", skipped))
	s.io.Println(fmt.Sprintf("Batch complete: %d saved, %d skipped", saved, skipped))
	return nil
}

// oneByOne asks before each video and runs the single-video flow for the accepted ones.
func (s *Session) oneByOne(ctx context.Context, pl engine.Playlist) error {
	total := len(pl.Videos)
	for i, url := range pl.Videos {
		answer, err := s.ask(ctx, fmt.Sprintf("Process video %d/%d? (y/n): ", i+1, total))
		if err != nil {
			return err
		}
		if !yes(answer) {
			continue
		}
		if err := s.pace(ctx); err != nil {
			return err
		}
		if err := s.processVideo(ctx, url); err != nil {
			if isInterrupt(err) {
				return err
			}
			s.report(err)
		}
	}
	return nil
}

func (s *Session) chooseKind(ctx context.Context) (engine.MaterialKind, error) {
	s.io.Println(kindMenu...)
	answer, err := s.ask(ctx, "Select (1-4): ")
	if err != nil {
		return "", err
	}
	if kind, ok := kindChoices[answer]; ok {
		return kind, nil
	}
	return engine.ParseMaterialKind(answer), nil
}

func (s *Session) save(stem string, res engine.MaterialResult) (string, error) {
	path, err := toolutil.SaveText(s.opts.OutputDir, toolutil.FileName(stem), res.Text)
	if err != nil {
		s.log.Error("save failed", slog.String("stem", stem), slog.Any("error", err))
		return "", err
	}
	s.deps.Metrics.Incr(engine.MetricFilesSaved)
	s.log.Info("material saved", slog.String("path", path),
		slog.String("kind", string(res.Kind)), slog.String("source", res.SourceIdentifier))
	s.io.Notice(console.LevelInfo, "Content saved to "+path)
	return path, nil
}

// ask reads one trimmed answer.
func (s *Session) ask(ctx context.Context, prompt string) (string, error) {
	line, err := s.io.ReadLine(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func yes(answer string) bool {
	a := strings.ToLower(strings.TrimSpace(answer))
	return a == "y" || a == "yes"
}
