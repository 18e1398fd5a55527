package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/anatolykoptev/go_study/internal/engine"
)

const testPlaylistURL = "https://www.youtube.com/playlist?list=PLtest123"

func playlistPage(initialData string) string {
	return `<!DOCTYPE html><html><head><title>x</title></head><body>` +
		`<script nonce="n">window.ytcfg = {};</script>` +
		`<script nonce="n">var ytInitialData = ` + initialData + `;</script>` +
		`</body></html>`
}

const testInitialData = `{
  "metadata": {"playlistMetadataRenderer": {"title": "Linear Algebra"}},
  "contents": {"twoColumnBrowseResultsRenderer": {"tabs": [{"tabRenderer": {"content": {
    "playlistVideoListRenderer": {"contents": [
      {"playlistVideoRenderer": {"videoId": "aaaaaaaaaaa", "navigationEndpoint": {"watchEndpoint": {"videoId": "aaaaaaaaaaa"}}}},
      {"playlistVideoRenderer": {"title": {"runs": [{"text": "b"}]}, "videoId": "bbbbbbbbbbb"}},
      {"continuationItemRenderer": {"continuationEndpoint": {"continuationCommand": {"token": "TOKEN1"}}}}
    ]}
  }}}]}}
}`

const testContinuation = `{
  "onResponseReceivedActions": [{"appendContinuationItemsAction": {"continuationItems": [
    {"playlistVideoRenderer": {"videoId": "ccccccccccc"}}
  ]}}]
}`

func TestResolveScrapesPage(t *testing.T) {
	var browseCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/playlist", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("list"); got != "PLtest123" {
			t.Errorf("list = %q", got)
		}
		fmt.Fprint(w, playlistPage(testInitialData))
	})
	mux.HandleFunc("/youtubei/v1/browse", func(w http.ResponseWriter, r *http.Request) {
		browseCalls.Add(1)
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode browse body: %v", err)
		}
		if body["continuation"] != "TOKEN1" {
			t.Errorf("continuation = %v, want TOKEN1", body["continuation"])
		}
		fmt.Fprint(w, testContinuation)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	yt := NewYouTube(srv.Client(), "")
	yt.BaseURL = srv.URL
	m := engine.NewMetrics()

	pl, err := NewPlaylistResolver(yt, nil, m).Resolve(context.Background(), testPlaylistURL)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := []string{WatchURL("aaaaaaaaaaa"), WatchURL("bbbbbbbbbbb"), WatchURL("ccccccccccc")}
	if strings.Join(pl.Videos, ",") != strings.Join(want, ",") {
		t.Errorf("Videos = %v, want %v", pl.Videos, want)
	}
	if pl.Title != "Linear Algebra" || pl.ID != "PLtest123" {
		t.Errorf("playlist = %q / %q", pl.ID, pl.Title)
	}
	if browseCalls.Load() != 1 {
		t.Errorf("browse calls = %d, want 1", browseCalls.Load())
	}
	if m.Get(engine.MetricPlaylistResolutions) != 1 {
		t.Errorf("playlist_resolutions = %d", m.Get(engine.MetricPlaylistResolutions))
	}
}

func TestResolveEmptyPlaylist(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, playlistPage(`{"metadata":{"playlistMetadataRenderer":{"title":"Empty"}}}`))
	}))
	defer srv.Close()
	yt := NewYouTube(srv.Client(), "")
	yt.BaseURL = srv.URL

	pl, err := NewPlaylistResolver(yt, nil, nil).Resolve(context.Background(), testPlaylistURL)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(pl.Videos) != 0 {
		t.Errorf("Videos = %v, want none", pl.Videos)
	}
}

func TestResolveDataAPI(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/playlistItems", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("key") != "k" || q.Get("playlistId") != "PLtest123" || q.Get("maxResults") != "50" {
			t.Errorf("query = %v", q)
		}
		switch q.Get("pageToken") {
		case "":
			fmt.Fprint(w, `{"nextPageToken":"P2","items":[{"contentDetails":{"videoId":"aaaaaaaaaaa"}},{"contentDetails":{"videoId":"bbbbbbbbbbb"}}]}`)
		case "P2":
			fmt.Fprint(w, `{"items":[{"contentDetails":{"videoId":"ccccccccccc"}}]}`)
		default:
			t.Errorf("unexpected pageToken %q", q.Get("pageToken"))
		}
	})
	mux.HandleFunc("/playlists", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items":[{"snippet":{"title":"Calculus"}}]}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	yt := NewYouTube(srv.Client(), "k")
	yt.DataAPIBase = srv.URL
	yt.BaseURL = srv.URL + "/no-scrape"

	pl, err := NewPlaylistResolver(yt, nil, nil).Resolve(context.Background(), testPlaylistURL)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(pl.Videos) != 3 || pl.Videos[2] != WatchURL("ccccccccccc") {
		t.Errorf("Videos = %v", pl.Videos)
	}
	if pl.Title != "Calculus" {
		t.Errorf("Title = %q", pl.Title)
	}
}

func TestResolveDataAPIFallsBackToScrape(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v3/playlistItems", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quotaExceeded"}`, http.StatusForbidden)
	})
	mux.HandleFunc("/playlist", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, playlistPage(`{"contents":[{"playlistVideoRenderer":{"videoId":"aaaaaaaaaaa"}}]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	yt := NewYouTube(srv.Client(), "k")
	yt.BaseURL = srv.URL
	yt.DataAPIBase = srv.URL + "/v3"

	pl, err := NewPlaylistResolver(yt, nil, nil).Resolve(context.Background(), testPlaylistURL)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(pl.Videos) != 1 {
		t.Errorf("Videos = %v, want 1 scraped video", pl.Videos)
	}
}

func TestResolveFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"http error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "gone", http.StatusInternalServerError)
		}},
		{"no initial data", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "<html><body>nothing here</body></html>")
		}},
		{"broken json", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, playlistPage(`{"contents":[{"playlistVideoRenderer":{"videoId":1}]}`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			yt := NewYouTube(srv.Client(), "")
			yt.BaseURL = srv.URL

			_, err := NewPlaylistResolver(yt, nil, nil).Resolve(context.Background(), testPlaylistURL)
			if !errors.Is(err, engine.ErrResolution) {
				t.Errorf("err = %v, want ResolutionError", err)
			}
		})
	}
}

func TestResolveInvalidReferenceMakesNoRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()
	yt := NewYouTube(srv.Client(), "")
	yt.BaseURL = srv.URL

	_, err := NewPlaylistResolver(yt, nil, nil).Resolve(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	if !errors.Is(err, engine.ErrInvalidReference) {
		t.Errorf("err = %v, want InvalidReferenceError", err)
	}
	if hits.Load() != 0 {
		t.Errorf("server hit %d times", hits.Load())
	}
}

func TestScanPlaylistJSONOrder(t *testing.T) {
	found, err := scanPlaylistJSON([]byte(testInitialData))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if strings.Join(found.videoIDs, ",") != "aaaaaaaaaaa,bbbbbbbbbbb" {
		t.Errorf("videoIDs = %v", found.videoIDs)
	}
	if found.continuation != "TOKEN1" || found.title != "Linear Algebra" {
		t.Errorf("continuation = %q, title = %q", found.continuation, found.title)
	}
}
