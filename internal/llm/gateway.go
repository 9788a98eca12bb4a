// Package llm sends charts or market summaries to a language model and hands
// back its free-text reply. Providers live in subpackages; Gateway adds the
// prompts, timeouts and retries, and turns failures into marked text.
package llm

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"chart-advisor/internal/interfaces"
	"chart-advisor/internal/logger"
)

// FailureMarker prefixes every reply that is an error rather than model output.
const FailureMarker = "ERROR_IA:"

type Client = interfaces.LLMClient

// Failure renders err as a marked reply.
func Failure(err error) string {
	return FailureMarker + " " + err.Error()
}

// IsFailure reports whether text is a marked failure.
func IsFailure(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), FailureMarker)
}

type Gateway struct {
	client     Client
	timeout    time.Duration
	retries    int
	retryDelay time.Duration
}

var _ interfaces.Gateway = (*Gateway)(nil)

type Option func(*Gateway)

// WithTimeout bounds each model call.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		g.timeout = d
	}
}

// WithRetries sets how many times a failed call is repeated.
func WithRetries(n int, delay time.Duration) Option {
	return func(g *Gateway) {
		g.retries = n
		g.retryDelay = delay
	}
}

func NewGateway(client Client, opts ...Option) *Gateway {
	g := &Gateway{
		client:     client,
		timeout:    60 * time.Second,
		retryDelay: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gateway) AnalyzeImage(ctx context.Context, data []byte, mimeType string) string {
	if len(data) == 0 {
		return Failure(errors.New("empty image"))
	}
	return g.complete(ctx, "image", func(ctx context.Context) (string, error) {
		return g.client.CompleteImage(ctx, ImagePrompt, data, mimeType)
	})
}

func (g *Gateway) AnalyzeData(ctx context.Context, summary string) string {
	return g.complete(ctx, "data", func(ctx context.Context) (string, error) {
		return g.client.CompleteText(ctx, DataPrompt, summary)
	})
}

func (g *Gateway) complete(ctx context.Context, mode string, call func(context.Context) (string, error)) string {
	op := logger.StartOperation(ctx, "llm.complete", "mode", mode, "retries", g.retries)
	ctx = op.GetContext()

	var lastErr error
	for attempt := 0; attempt <= g.retries; attempt++ {
		if attempt > 0 {
			logger.Warn(ctx, "Retrying LLM call", "mode", mode, "attempt", attempt, "error", lastErr)
			select {
			case <-ctx.Done():
				op.EndWithError(ctx.Err(), "attempts", attempt)
				return Failure(ctx.Err())
			case <-time.After(g.retryDelay):
			}
		}

		cctx, cancel := context.WithTimeout(ctx, g.timeout)
		text, err := call(cctx)
		cancel()

		if err == nil && strings.TrimSpace(text) == "" {
			err = errors.New("empty response from model")
		}
		if err == nil {
			op.End("attempts", attempt+1, "chars", len(text))
			return text
		}
		lastErr = err
	}

	if g.retries > 0 {
		lastErr = errors.Wrapf(lastErr, "failed after %d retries", g.retries)
	}
	op.EndWithError(lastErr, "attempts", g.retries+1)
	return Failure(lastErr)
}
