// Package toolutil provides shared helpers for the session flows: language lists,
// output file naming and saving.
package toolutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/anatolykoptev/go_study/internal/engine"
)

// NormLangs lowercases and trims language codes, dropping blanks and duplicates.
// An empty result becomes ["en"].
func NormLangs(langs []string) []string {
	seen := make(map[string]bool, len(langs))
	out := make([]string, 0, len(langs))
	for _, l := range langs {
		l = strings.ToLower(strings.TrimSpace(l))
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	if len(out) == 0 {
		return []string{"en"}
	}
	return out
}

// DefaultStem is the file name used when the user does not pick one: "{kind}_{id}".
func DefaultStem(kind engine.MaterialKind, id string) string {
	return string(kind) + "_" + sanitize(id)
}

// PDFStem returns the base name of a PDF path without its extension.
func PDFStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// FileName appends the .txt extension to stem.
func FileName(stem string) string {
	return strings.TrimSpace(stem) + ".txt"
}

// SaveText writes text to dir/name, replacing any existing file.
func SaveText(dir, name, text string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, s)
}
