package sources

import (
	"regexp"
	"strings"

	"github.com/anatolykoptev/go_study/internal/engine"
)

// Accepted video URL shapes, tried in order. Each captures the 11-char ID.
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(?:https?://)?(?:www\.|m\.)?youtube\.com/watch\?(?:[^#]*&)?v=([A-Za-z0-9_-]{11})(?:[&#]|$)`),
	regexp.MustCompile(`^(?:https?://)?youtu\.be/([A-Za-z0-9_-]{11})(?:[?&#/]|$)`),
	regexp.MustCompile(`^(?:https?://)?(?:www\.|m\.)?youtube(?:-nocookie)?\.com/embed/([A-Za-z0-9_-]{11})(?:[?&#/]|$)`),
	regexp.MustCompile(`^(?:https?://)?(?:www\.|m\.)?youtube\.com/shorts/([A-Za-z0-9_-]{11})(?:[?&#/]|$)`),
}

var playlistIDRE = regexp.MustCompile(`^https?://(?:www\.|m\.)?youtube\.com/playlist\?(?:[^#]*&)?list=([A-Za-z0-9_-]+)(?:[&#]|$)`)

// ExtractVideoID pulls the 11-char video ID out of a watch, short, embed or shorts URL.
func ExtractVideoID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	for _, re := range videoIDPatterns {
		if m := re.FindStringSubmatch(ref); len(m) == 2 {
			return m[1], nil
		}
	}
	return "", engine.Errorf(engine.KindInvalidReference, "video reference", ref, "not a recognised YouTube video URL")
}

// ExtractPlaylistID validates a canonical playlist URL and returns its list ID.
func ExtractPlaylistID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if m := playlistIDRE.FindStringSubmatch(ref); len(m) == 2 {
		return m[1], nil
	}
	return "", engine.Errorf(engine.KindInvalidReference, "playlist reference", ref,
		"expected https://www.youtube.com/playlist?list=...")
}

// WatchURL returns the canonical watch URL for a video ID.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}
