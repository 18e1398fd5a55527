package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/anatolykoptev/go_study/internal/engine"
)

// Playlist resolution.
// Primary:  YouTube Data API v3 playlistItems (when an API key is configured)
// Fallback: playlist page ytInitialData + innertube /browse continuations

const (
	ytInitialDataMarker      = "var ytInitialData = "
	ytInitialDataAltMarker   = `window["ytInitialData"] = `
	ytMaxContinuationPages   = 50
	ytMaxDataAPIPages        = 200
	ytDataAPIPlaylistPerPage = 50
)

// PlaylistResolver expands a playlist URL into its ordered video URLs.
type PlaylistResolver struct {
	yt      *YouTube
	log     *slog.Logger
	metrics *engine.Metrics
}

// NewPlaylistResolver returns a resolver backed by yt.
func NewPlaylistResolver(yt *YouTube, log *slog.Logger, m *engine.Metrics) *PlaylistResolver {
	if log == nil {
		log = slog.Default()
	}
	return &PlaylistResolver{yt: yt, log: log, metrics: m}
}

// Resolve returns the playlist at ref with its videos in playlist order.
// An empty playlist is not an error.
func (r *PlaylistResolver) Resolve(ctx context.Context, ref string) (pl engine.Playlist, err error) {
	id, err := ExtractPlaylistID(ref)
	if err != nil {
		return engine.Playlist{}, err
	}
	r.metrics.Incr(engine.MetricPlaylistResolutions)

	defer func() {
		if p := recover(); p != nil {
			pl = engine.Playlist{}
			err = engine.Errorf(engine.KindResolution, "playlist", id, "malformed playlist data: %v", p)
		}
	}()

	var ids []string
	var title string
	if r.yt.APIKey != "" {
		ids, title, err = r.fromDataAPI(ctx, id)
		if err != nil {
			r.log.Warn("playlist data API failed, scraping page instead",
				slog.String("playlist", id), slog.Any("error", err))
		}
	}
	if r.yt.APIKey == "" || err != nil {
		ids, title, err = r.fromPage(ctx, id)
	}
	if err != nil {
		r.log.Error("playlist resolution failed", slog.String("playlist", id), slog.Any("error", err))
		return engine.Playlist{}, engine.Wrap(engine.KindResolution, "playlist", id, err)
	}

	videos := make([]string, 0, len(ids))
	for _, v := range ids {
		videos = append(videos, WatchURL(v))
	}
	r.log.Info("playlist resolved", slog.String("playlist", id), slog.Int("videos", len(videos)))
	return engine.Playlist{ID: id, Title: title, Videos: videos}, nil
}

// --- Data API v3 ---

type ytPlaylistItemsResp struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		ContentDetails struct {
			VideoID string `json:"videoId"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type ytPlaylistsResp struct {
	Items []struct {
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
	} `json:"items"`
}

func (r *PlaylistResolver) fromDataAPI(ctx context.Context, id string) ([]string, string, error) {
	var ids []string
	pageToken := ""
	for page := 0; page < ytMaxDataAPIPages; page++ {
		params := url.Values{}
		params.Set("part", "contentDetails")
		params.Set("playlistId", id)
		params.Set("maxResults", fmt.Sprintf("%d", ytDataAPIPlaylistPerPage))
		params.Set("key", r.yt.APIKey)
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}
		body, err := r.yt.getJSON(ctx, strings.TrimRight(r.yt.DataAPIBase, "/")+"/playlistItems?"+params.Encode())
		if err != nil {
			return nil, "", fmt.Errorf("playlistItems: %w", err)
		}
		var resp ytPlaylistItemsResp
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, "", fmt.Errorf("decode playlistItems: %w", err)
		}
		for _, it := range resp.Items {
			if it.ContentDetails.VideoID != "" {
				ids = append(ids, it.ContentDetails.VideoID)
			}
		}
		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}
	return ids, r.dataAPITitle(ctx, id), nil
}

// dataAPITitle looks up the playlist title; a failed lookup leaves it empty.
func (r *PlaylistResolver) dataAPITitle(ctx context.Context, id string) string {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("id", id)
	params.Set("key", r.yt.APIKey)
	body, err := r.yt.getJSON(ctx, strings.TrimRight(r.yt.DataAPIBase, "/")+"/playlists?"+params.Encode())
	if err != nil {
		r.log.Debug("playlist title lookup failed", slog.String("playlist", id), slog.Any("error", err))
		return ""
	}
	var resp ytPlaylistsResp
	if err := json.Unmarshal(body, &resp); err != nil || len(resp.Items) == 0 {
		return ""
	}
	return resp.Items[0].Snippet.Title
}

// --- Page scraping ---

func (r *PlaylistResolver) fromPage(ctx context.Context, id string) ([]string, string, error) {
	body, err := r.yt.getPage(ctx, strings.TrimRight(r.yt.BaseURL, "/")+"/playlist?list="+url.QueryEscape(id))
	if err != nil {
		return nil, "", fmt.Errorf("playlist page: %w", err)
	}
	data, err := initialDataFromPage(body)
	if err != nil {
		return nil, "", err
	}
	found, err := scanPlaylistJSON(data)
	if err != nil {
		return nil, "", fmt.Errorf("decode ytInitialData: %w", err)
	}
	ids, title := found.videoIDs, found.title

	seen := map[string]bool{}
	token := found.continuation
	for page := 0; token != "" && !seen[token] && page < ytMaxContinuationPages; page++ {
		seen[token] = true
		next, err := r.browseContinuation(ctx, token)
		if err != nil {
			return nil, "", err
		}
		ids = append(ids, next.videoIDs...)
		token = next.continuation
	}
	return ids, title, nil
}

func (r *PlaylistResolver) browseContinuation(ctx context.Context, token string) (playlistScan, error) {
	data, err := r.yt.postInnerTube(ctx, "browse", map[string]any{
		"context":      ytWebContext(),
		"continuation": token,
	}, map[string]string{"User-Agent": engine.UserAgentChrome})
	if err != nil {
		return playlistScan{}, fmt.Errorf("playlist continuation: %w", err)
	}
	found, err := scanPlaylistJSON(data)
	if err != nil {
		return playlistScan{}, fmt.Errorf("decode continuation: %w", err)
	}
	return found, nil
}

// initialDataFromPage finds the <script> carrying ytInitialData and returns its JSON object.
func initialDataFromPage(page []byte) ([]byte, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse playlist page: %w", err)
	}
	var found []byte
	doc.Find("script").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := sel.Text()
		for _, marker := range []string{ytInitialDataMarker, ytInitialDataAltMarker} {
			if idx := strings.Index(text, marker); idx >= 0 {
				found = extractJSON([]byte(strings.TrimSpace(text[idx+len(marker):])))
				if found != nil {
					return false
				}
			}
		}
		return true
	})
	if found == nil {
		return nil, errors.New("ytInitialData not found in playlist page")
	}
	return found, nil
}

// playlistScan is what a ytInitialData or /browse payload contributes to a playlist.
type playlistScan struct {
	videoIDs     []string
	title        string
	continuation string
}

// scanPlaylistJSON streams tokens so videos come out in document order.
func scanPlaylistJSON(data []byte) (playlistScan, error) {
	var out playlistScan
	err := scanJSONStrings(data, func(owner, key, value string) {
		switch {
		case owner == "playlistVideoRenderer" && key == "videoId":
			out.videoIDs = append(out.videoIDs, value)
		case owner == "continuationCommand" && key == "token":
			if out.continuation == "" {
				out.continuation = value
			}
		case owner == "playlistMetadataRenderer" && key == "title":
			if out.title == "" {
				out.title = value
			}
		}
	})
	return out, err
}

type jsonFrame struct {
	object  bool
	owner   string // key the container was opened under (arrays pass theirs to elements)
	key     string
	wantKey bool
}

func (f jsonFrame) current() string {
	if f.object {
		return f.key
	}
	return f.owner
}

// scanJSONStrings calls visit for every string value held directly by an object,
// with the key of that object's parent and the value's own key.
func scanJSONStrings(data []byte, visit func(owner, key, value string)) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	var stack []jsonFrame
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		n := len(stack)
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				owner := ""
				if n > 0 {
					owner = stack[n-1].current()
				}
				stack = append(stack, jsonFrame{object: d == '{', owner: owner, wantKey: d == '{'})
			case '}', ']':
				stack = stack[:n-1]
				if m := len(stack); m > 0 && stack[m-1].object {
					stack[m-1].wantKey = true
				}
			}
			continue
		}
		if n == 0 || !stack[n-1].object {
			continue
		}
		top := &stack[n-1]
		if top.wantKey {
			top.key, _ = tok.(string)
			top.wantKey = false
			continue
		}
		if s, ok := tok.(string); ok {
			visit(top.owner, top.key, s)
		}
		top.wantKey = true
	}
}
