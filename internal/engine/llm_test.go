package engine

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

// fakeCompleter records requests and replies with a fixed answer.
type fakeCompleter struct {
	reply string
	err   error
	reqs  []CompletionRequest
}

func (f *fakeCompleter) Complete(_ context.Context, req CompletionRequest) (string, error) {
	f.reqs = append(f.reqs, req)
	return f.reply, f.err
}

func testConfig() Config {
	return Config{LLMTemperature: 0.5, LLMMaxTokens: 2000}
}

const longContent = "Newton's second law states that force equals mass times acceleration."

func TestGenerateShortContentSkipsRequest(t *testing.T) {
	for _, content := range []string{"", "too short", "   padded short   ", strings.Repeat("x", MinContentChars-1), strings.Repeat("é", 15)} {
		fc := &fakeCompleter{reply: "unused"}
		got, err := NewGenerator(fc, testConfig(), nil, nil).Generate(context.Background(), content, MaterialNotes)
		if err != nil {
			t.Fatalf("Generate(%q) error: %v", content, err)
		}
		if got != InsufficientContent {
			t.Errorf("Generate(%q) = %q, want InsufficientContent", content, got)
		}
		if len(fc.reqs) != 0 {
			t.Errorf("Generate(%q) made %d requests, want 0", content, len(fc.reqs))
		}
	}
}

func TestGenerateMinimumLengthIsSent(t *testing.T) {
	fc := &fakeCompleter{reply: "ok"}
	_, err := NewGenerator(fc, testConfig(), nil, nil).Generate(context.Background(), strings.Repeat("x", MinContentChars), MaterialNotes)
	if err != nil {
		t.Fatal(err)
	}
	if len(fc.reqs) != 1 {
		t.Errorf("requests = %d, want 1", len(fc.reqs))
	}
}

func TestGenerateRequest(t *testing.T) {
	tests := []struct {
		kind MaterialKind
		want []string
	}{
		{MaterialNotes, []string{"well-organized, concise study notes"}},
		{MaterialFlashcards, []string{"at least 10 flashcards", "'Question: ... Answer: ...' format"}},
		{MaterialFormulaSheet, []string{"important formulas", "under appropriate headings"}},
		{MaterialQuestionBank, []string{"at least 10 multiple-choice and short-answer questions", "Provide answers too"}},
		{MaterialKind("mind_map"), []string{"well-organized, concise study notes"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			fc := &fakeCompleter{reply: "  material  \n"}
			m := NewMetrics()
			got, err := NewGenerator(fc, testConfig(), nil, m).Generate(context.Background(), longContent, tt.kind)
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if got != "material" {
				t.Errorf("Generate = %q, want trimmed reply", got)
			}
			if len(fc.reqs) != 1 {
				t.Fatalf("requests = %d, want 1", len(fc.reqs))
			}
			req := fc.reqs[0]
			if req.System != "You are an expert academic content generator." {
				t.Errorf("System = %q", req.System)
			}
			if req.Temperature != 0.5 || req.MaxTokens != 2000 {
				t.Errorf("Temperature/MaxTokens = %v/%d", req.Temperature, req.MaxTokens)
			}
			if !strings.HasSuffix(req.Prompt, longContent) {
				t.Errorf("prompt does not end with content: %q", req.Prompt)
			}
			for _, w := range tt.want {
				if !strings.Contains(req.Prompt, w) {
					t.Errorf("prompt missing %q: %q", w, req.Prompt)
				}
			}
			if m.Get(MetricLLMCalls) != 1 {
				t.Errorf("llm_calls = %d, want 1", m.Get(MetricLLMCalls))
			}
		})
	}
}

func TestGenerateFailure(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		err   error
	}{
		{"service error", "", errors.New("429 rate limited")},
		{"blank completion", "  \n ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := slog.New(slog.NewTextHandler(&buf, nil))
			fc := &fakeCompleter{reply: tt.reply, err: tt.err}
			m := NewMetrics()

			got, err := NewGenerator(fc, testConfig(), log, m).Generate(context.Background(), longContent, MaterialFlashcards)
			if !errors.Is(err, ErrGeneration) {
				t.Fatalf("err = %v, want GenerationError", err)
			}
			if tt.err != nil && !errors.Is(err, tt.err) {
				t.Errorf("err = %v, want cause %v", err, tt.err)
			}
			if got != "" {
				t.Errorf("result = %q, want empty", got)
			}
			if len(fc.reqs) != 1 {
				t.Errorf("requests = %d, want exactly 1 (no retry)", len(fc.reqs))
			}
			if !strings.Contains(buf.String(), "level=ERROR") {
				t.Errorf("log = %q, want an ERROR record", buf.String())
			}
			if m.Get(MetricLLMErrors) != 1 {
				t.Errorf("llm_errors = %d, want 1", m.Get(MetricLLMErrors))
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	got := BuildPrompt("CONTENT", MaterialFormulaSheet)
	if !strings.HasPrefix(got, "Extract all important formulas") || !strings.HasSuffix(got, "\n\nCONTENT") {
		t.Errorf("BuildPrompt = %q", got)
	}
	if BuildPrompt("C", "unknown") != BuildPrompt("C", MaterialNotes) {
		t.Error("unknown kind should use the notes template")
	}
}
