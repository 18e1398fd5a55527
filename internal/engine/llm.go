package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anatolykoptev/go-kit/llm"
)

// CompletionRequest is one chat completion: a system and a user message plus sampling limits.
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Completer sends a single completion request and returns the raw text.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// LLMCompleter adapts a go-kit llm client to Completer.
type LLMCompleter struct {
	Client *llm.Client
}

// NewLLMCompleter builds the completion client from config.
// No fallback keys are configured: a failed request is final.
func NewLLMCompleter(c Config) LLMCompleter {
	return LLMCompleter{
		Client: llm.NewClient(c.LLMAPIBase, c.LLMAPIKey, c.LLMModel,
			llm.WithMaxTokens(c.LLMMaxTokens),
			llm.WithTemperature(c.LLMTemperature),
			llm.WithHTTPClient(httpClientWithTimeout(c.LLMTimeout)),
		),
	}
}

func (c LLMCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	return c.Client.Complete(ctx, req.System, req.Prompt,
		llm.WithChatTemperature(req.Temperature),
		llm.WithChatMaxTokens(req.MaxTokens),
	)
}

// Generator turns extracted text into study material with one LLM request per call.
type Generator struct {
	completer   Completer
	temperature float64
	maxTokens   int
	log         *slog.Logger
	metrics     *Metrics
}

// NewGenerator returns a Generator using the sampling limits from c.
func NewGenerator(completer Completer, c Config, log *slog.Logger, m *Metrics) *Generator {
	if log == nil {
		log = slog.Default()
	}
	return &Generator{
		completer:   completer,
		temperature: c.LLMTemperature,
		maxTokens:   c.LLMMaxTokens,
		log:         log,
		metrics:     m,
	}
}

// BuildPrompt fills the template for kind; unknown kinds use the notes template.
func BuildPrompt(content string, kind MaterialKind) string {
	tmpl, ok := promptTemplates[kind]
	if !ok {
		tmpl = promptTemplates[MaterialNotes]
	}
	return fmt.Sprintf(tmpl, content)
}

// Generate returns study material for content. Content shorter than MinContentChars
// yields InsufficientContent without a request. Failures are logged and returned as
// a GenerationError.
func (g *Generator) Generate(ctx context.Context, content string, kind MaterialKind) (string, error) {
	req := MaterialRequest{Content: content, Kind: kind}
	if !req.Valid() {
		return InsufficientContent, nil
	}

	g.metrics.Incr(MetricLLMCalls)
	raw, err := g.completer.Complete(ctx, CompletionRequest{
		System:      systemPrompt,
		Prompt:      BuildPrompt(content, kind),
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	})
	if err == nil && strings.TrimSpace(raw) == "" {
		err = errors.New("empty completion")
	}
	if err != nil {
		g.metrics.Incr(MetricLLMErrors)
		g.log.Error("completion request failed",
			slog.String("kind", string(kind)), slog.Any("error", err))
		return "", Wrap(KindGeneration, "generate", kind.Label(), err)
	}
	return strings.TrimSpace(raw), nil
}
