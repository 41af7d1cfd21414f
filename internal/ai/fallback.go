package ai

import (
	"context"
	"fmt"
	"log/slog"
)

// fallbackCompleter wraps two Completers. It calls the primary first; if that
// returns an error it logs the failure and tries the secondary.
type fallbackCompleter struct {
	primary   Completer
	secondary Completer
	logger    *slog.Logger
}

// NewFallbackCompleter returns a Completer that calls primary and, on failure,
// falls back to secondary. If both are nil it returns nil so callers can treat
// "no provider configured" uniformly. If only one is non-nil it is returned
// unwrapped.
func NewFallbackCompleter(primary, secondary Completer, logger *slog.Logger) Completer {
	switch {
	case primary == nil && secondary == nil:
		return nil
	case primary == nil:
		return secondary
	case secondary == nil:
		return primary
	}
	return &fallbackCompleter{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
	}
}

// Complete tries the primary Completer, then the secondary. When both fail
// the secondary's error is returned with the primary's attached.
func (f *fallbackCompleter) Complete(ctx context.Context, prompt string, opts CompletionOpts) (string, error) {
	out, err := f.primary.Complete(ctx, prompt, opts)
	if err == nil {
		return out, nil
	}
	f.logger.Warn("ai: primary completer failed, trying secondary", "error", err)

	if ctx.Err() != nil {
		return "", fmt.Errorf("ai: primary failed: %w", err)
	}

	out, err2 := f.secondary.Complete(ctx, prompt, opts)
	if err2 != nil {
		return "", fmt.Errorf("ai: secondary failed: %w (primary: %v)", err2, err)
	}
	return out, nil
}
