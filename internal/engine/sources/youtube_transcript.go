package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_study/internal/engine"
)

// YouTube transcript fetching.
// Primary:  watch page ytInitialPlayerResponse → captionTracks (works from any IP)
// Fallback: ANDROID Innertube /player → captionTracks (when the page has no player response)

var (
	// ErrTranscriptsDisabled means the video has no caption tracks at all.
	ErrTranscriptsDisabled = errors.New("transcripts are disabled for this video")
	// ErrTranscriptNotFound means no usable track exists for the requested language and kind.
	ErrTranscriptNotFound = errors.New("no transcript found for the requested language")
)

// TrackKind distinguishes uploaded captions from auto-generated (ASR) ones.
type TrackKind int

const (
	TrackManual TrackKind = iota
	TrackGenerated
)

func (k TrackKind) String() string {
	if k == TrackGenerated {
		return "generated"
	}
	return "manual"
}

// Segment is one caption line.
type Segment struct {
	Start    float64
	Duration float64
	Text     string
}

// ytInitialPlayerResponseMarker marks the start of the player response JSON in watch page HTML.
const ytInitialPlayerResponseMarker = "ytInitialPlayerResponse = "

// Segments fetches and parses the timedtext of one caption track.
func (yt *YouTube) Segments(ctx context.Context, track CaptionTrack) ([]Segment, error) {
	return yt.fetchTimedText(ctx, track.BaseURL)
}

// CaptionTracks lists the caption tracks of a video from the watch page,
// falling back to the ANDROID player when the page cannot be read.
func (yt *YouTube) CaptionTracks(ctx context.Context, videoID string) ([]CaptionTrack, error) {
	player, err := yt.playerFromWatchPage(ctx, videoID)
	if err != nil {
		player, err = yt.playerFromAndroid(ctx, videoID)
		if err != nil {
			return nil, err
		}
	}
	return tracksFromPlayer(player)
}

func (yt *YouTube) playerFromWatchPage(ctx context.Context, videoID string) (*innertubePlayerResp, error) {
	body, err := yt.getPage(ctx, strings.TrimRight(yt.BaseURL, "/")+"/watch?v="+videoID)
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}
	idx := bytes.Index(body, []byte(ytInitialPlayerResponseMarker))
	if idx < 0 {
		return nil, errors.New("ytInitialPlayerResponse not found in watch page")
	}
	jsonData := extractJSON(body[idx+len(ytInitialPlayerResponseMarker):])
	if jsonData == nil {
		return nil, errors.New("failed to extract ytInitialPlayerResponse JSON")
	}
	var player innertubePlayerResp
	if err := json.Unmarshal(jsonData, &player); err != nil {
		return nil, fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	return &player, nil
}

func (yt *YouTube) playerFromAndroid(ctx context.Context, videoID string) (*innertubePlayerResp, error) {
	data, err := yt.postInnerTube(ctx, "player", innertubeReq{
		VideoID: videoID,
		Context: innertubeCtx{
			Client: innertubeClient{
				ClientName:        "ANDROID",
				ClientVersion:     ytAndroidVersion,
				AndroidSdkVersion: 30,
				Hl:                "en",
				Gl:                "US",
			},
		},
		RacyCheckOk:    true,
		ContentCheckOk: true,
	}, map[string]string{
		"User-Agent":               ytAndroidUA,
		"X-Youtube-Client-Name":    "3",
		"X-Youtube-Client-Version": ytAndroidVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("android player: %w", err)
	}
	var player innertubePlayerResp
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, fmt.Errorf("decode player: %w", err)
	}
	return &player, nil
}

// tracksFromPlayer separates "captions disabled" from "video unplayable".
func tracksFromPlayer(player *innertubePlayerResp) ([]CaptionTrack, error) {
	if player.PlayabilityStatus != nil {
		status := player.PlayabilityStatus.Status
		if status != "" && status != "OK" {
			return nil, fmt.Errorf("video unavailable: %s %s", status, player.PlayabilityStatus.Reason)
		}
	}
	if player.Captions == nil {
		return nil, ErrTranscriptsDisabled
	}
	tracks := player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return nil, ErrTranscriptsDisabled
	}
	return tracks, nil
}

// needsPoToken reports whether a caption track URL requires a PoToken (browser-only).
// Tracks with &exp=xpe cannot be fetched server-side.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// pickTrack selects the track for lang of the given kind, skipping PoToken tracks.
func pickTrack(tracks []CaptionTrack, lang string, kind TrackKind) (CaptionTrack, bool) {
	for _, t := range tracks {
		if needsPoToken(t.BaseURL) || !strings.EqualFold(t.LanguageCode, lang) {
			continue
		}
		if (t.Kind == "asr") == (kind == TrackGenerated) {
			return t, true
		}
	}
	return CaptionTrack{}, false
}

// fetchTimedText fetches and parses a YouTube timedtext XML caption URL.
func (yt *YouTube) fetchTimedText(ctx context.Context, baseURL string) ([]Segment, error) {
	body, err := yt.getJSON(ctx, baseURL)
	if err != nil {
		return nil, fmt.Errorf("fetch timedtext: %w", err)
	}
	return parseTimedText(body)
}

func parseTimedText(body []byte) ([]Segment, error) {
	var tt ytTimedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("parse timedtext XML: %w", err)
	}
	segments := make([]Segment, 0, len(tt.Lines))
	for _, line := range tt.Lines {
		text := engine.CleanCaption(line.Text)
		if text == "" {
			continue
		}
		start, _ := strconv.ParseFloat(line.Start, 64)
		dur, _ := strconv.ParseFloat(line.Dur, 64)
		segments = append(segments, Segment{Start: start, Duration: dur, Text: text})
	}
	slices.SortStableFunc(segments, func(a, b Segment) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		}
		return 0
	})
	return segments, nil
}
