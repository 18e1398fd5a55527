package engine

import (
	"strings"
	"unicode/utf8"
)

// --- Source documents ---

// OriginKind tells where a SourceDocument's text came from.
type OriginKind string

const (
	OriginPDF   OriginKind = "pdf"
	OriginVideo OriginKind = "video"
)

// Origin identifies the source of extracted text.
type Origin struct {
	Kind       OriginKind
	Identifier string // PDF path or 11-char video ID
}

// SourceDocument is the text contract every extractor produces.
type SourceDocument struct {
	Text   string
	Origin Origin
	Pages  int // page count reported by the PDF reader; 0 for videos
}

// Empty reports whether the document carries no usable text.
func (d SourceDocument) Empty() bool {
	return strings.TrimSpace(d.Text) == ""
}

// --- Material ---

// MaterialKind selects the generation template.
type MaterialKind string

const (
	MaterialNotes        MaterialKind = "notes"
	MaterialFlashcards   MaterialKind = "flashcards"
	MaterialFormulaSheet MaterialKind = "formula_sheet"
	MaterialQuestionBank MaterialKind = "question_bank"
)

// MaterialKinds lists the kinds in menu order.
var MaterialKinds = []MaterialKind{MaterialNotes, MaterialFlashcards, MaterialFormulaSheet, MaterialQuestionBank}

// Label returns the human form of the kind ("formula sheet").
func (k MaterialKind) Label() string {
	return strings.ReplaceAll(string(k), "_", " ")
}

// Known reports whether k is one of MaterialKinds.
func (k MaterialKind) Known() bool {
	for _, m := range MaterialKinds {
		if k == m {
			return true
		}
	}
	return false
}

// ParseMaterialKind accepts "formula sheet", "formula_sheet", "Formula Sheet"...
// Unrecognized input yields MaterialNotes.
func ParseMaterialKind(s string) MaterialKind {
	k := MaterialKind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_"))
	if k.Known() {
		return k
	}
	return MaterialNotes
}

// MinContentChars is the shortest content the generator will send to the LLM.
const MinContentChars = 20

// MaterialRequest is the input to a single generation call.
type MaterialRequest struct {
	Content string
	Kind    MaterialKind
}

// Valid reports whether the request meets the minimum content length in characters.
func (r MaterialRequest) Valid() bool {
	return utf8.RuneCountInString(strings.TrimSpace(r.Content)) >= MinContentChars
}

// MaterialResult is generated study content for one source.
type MaterialResult struct {
	Text             string
	Kind             MaterialKind
	SourceIdentifier string
}

// --- Playlists ---

// Playlist is a resolved YouTube playlist. Videos are watch URLs in playlist order.
type Playlist struct {
	ID     string
	Title  string
	Videos []string
}
