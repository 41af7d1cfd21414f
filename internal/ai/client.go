// Package ai defines the completion interface used for AI-assisted partner
// scoring, the concrete OpenAI-compatible and Anthropic clients, and the
// Augmenter that blends a model verdict into the rule-based result.
package ai

import (
	"context"
	"errors"
	"strings"
)

// CompletionOpts are the generation parameters forwarded to the provider.
type CompletionOpts struct {
	Temperature float64
	MaxTokens   int
}

// Completer sends one prompt and returns the raw text completion.
//
// Implementations must be safe to call concurrently. A non-nil error means no
// usable completion was produced; the Augmenter falls back to the rule-based
// result.
type Completer interface {
	Complete(ctx context.Context, prompt string, opts CompletionOpts) (string, error)
}

// ErrEmptyCompletion is returned when the provider answered 2xx but with no
// text content.
var ErrEmptyCompletion = errors.New("ai: empty completion")

// maxResponseBytes caps how much of a provider response body is read.
const maxResponseBytes = 1 << 20

// stripFences removes a markdown code fence the model may wrap JSON in.
func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	return strings.TrimSpace(raw)
}
