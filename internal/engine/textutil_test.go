package engine

import (
	"strings"
	"testing"
)

func TestCleanCaption(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"hello", "hello"},
		{"  spaced\n  out  ", "spaced out"},
		{"rock &amp; roll", "rock & roll"},
		{"double &amp;amp; escaped", "double & escaped"},
		{"it&#39;s", "it's"},
		{"<font color=\"#fff\">styled</font> text", "styled text"},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := CleanCaption(tt.in); got != tt.want {
			t.Errorf("CleanCaption(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := TruncateRunes("short", 100, "..."); got != "short" {
		t.Errorf("TruncateRunes short = %q", got)
	}
	if got := TruncateRunes("anything", 0, "..."); got != "anything" {
		t.Errorf("TruncateRunes limit 0 = %q", got)
	}
	long := strings.Repeat("ж", 50)
	got := TruncateRunes(long, 10, "")
	if n := len([]rune(got)); n > 10 {
		t.Errorf("TruncateRunes kept %d runes, want <= 10", n)
	}
	if !strings.HasPrefix(long, got) {
		t.Errorf("TruncateRunes broke UTF-8: %q", got)
	}
}
