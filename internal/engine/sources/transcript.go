package sources

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anatolykoptev/go_study/internal/engine"
)

// TranscriptService lists the caption tracks of a video and fetches one track's segments.
// *YouTube implements it.
type TranscriptService interface {
	CaptionTracks(ctx context.Context, videoID string) ([]CaptionTrack, error)
	Segments(ctx context.Context, track CaptionTrack) ([]Segment, error)
}

// TranscriptExtractor turns a video URL into its transcript text.
type TranscriptExtractor struct {
	svc     TranscriptService
	langs   []string
	log     *slog.Logger
	metrics *engine.Metrics
}

// NewTranscriptExtractor returns an extractor preferring langs in order (default "en").
func NewTranscriptExtractor(svc TranscriptService, langs []string, log *slog.Logger, m *engine.Metrics) *TranscriptExtractor {
	if len(langs) == 0 {
		langs = []string{"en"}
	}
	if log == nil {
		log = slog.Default()
	}
	return &TranscriptExtractor{svc: svc, langs: langs, log: log, metrics: m}
}

type transcriptAttempt struct {
	lang string
	kind TrackKind
}

// attempts lists every manual track first, then every generated one.
func (e *TranscriptExtractor) attempts() []transcriptAttempt {
	out := make([]transcriptAttempt, 0, 2*len(e.langs))
	for _, kind := range []TrackKind{TrackManual, TrackGenerated} {
		for _, lang := range e.langs {
			out = append(out, transcriptAttempt{lang: lang, kind: kind})
		}
	}
	return out
}

// Extract returns the transcript of the video at ref, one segment per line.
func (e *TranscriptExtractor) Extract(ctx context.Context, ref string) (engine.SourceDocument, error) {
	videoID, err := ExtractVideoID(ref)
	if err != nil {
		return engine.SourceDocument{}, err
	}
	e.metrics.Incr(engine.MetricTranscriptRequests)

	segments, err := e.firstAvailable(ctx, videoID)
	if err != nil {
		e.metrics.Incr(engine.MetricTranscriptFailures)
		e.log.Error("transcript unavailable", slog.String("video", videoID), slog.Any("error", err))
		return engine.SourceDocument{}, engine.Wrap(engine.KindExtraction, "transcript", videoID, err)
	}

	lines := make([]string, 0, len(segments))
	for _, s := range segments {
		lines = append(lines, strings.TrimSpace(s.Text))
	}
	return engine.SourceDocument{
		Text:   strings.Join(lines, "\n"),
		Origin: engine.Origin{Kind: engine.OriginVideo, Identifier: videoID},
	}, nil
}

// firstAvailable reads the track list once, then walks the attempt list over it and
// returns the first non-empty segment list. A track list failure (captions disabled,
// unplayable video, transport) applies to every attempt and ends the chain.
func (e *TranscriptExtractor) firstAvailable(ctx context.Context, videoID string) ([]Segment, error) {
	tracks, err := e.svc.CaptionTracks(ctx, videoID)
	if err != nil {
		return nil, err
	}
	var lastErr error
	for _, a := range e.attempts() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		track, ok := pickTrack(tracks, a.lang, a.kind)
		if !ok {
			e.log.Debug("no caption track",
				slog.String("video", videoID), slog.String("lang", a.lang), slog.String("kind", a.kind.String()))
			continue
		}
		segments, err := e.svc.Segments(ctx, track)
		if err == nil && len(segments) > 0 {
			e.log.Debug("transcript found",
				slog.String("video", videoID), slog.String("lang", a.lang), slog.String("kind", a.kind.String()))
			return segments, nil
		}
		if err != nil {
			lastErr = err
		}
		e.log.Debug("transcript attempt failed",
			slog.String("video", videoID), slog.String("lang", a.lang),
			slog.String("kind", a.kind.String()), slog.Any("error", err))
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("%w: %s", ErrTranscriptNotFound, strings.Join(e.langs, ","))
}
