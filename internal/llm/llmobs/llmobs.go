package llmobs

import (
	"context"
	"time"

	"chart-advisor/internal/interfaces"
	"chart-advisor/internal/logger"
	"chart-advisor/internal/trace"
)

// observableClient wraps an LLMClient with observability (logging & tracing)
type observableClient struct {
	client   interfaces.LLMClient
	provider string
}

// Compile-time interface check
var _ interfaces.LLMClient = (*observableClient)(nil)

// Wrap wraps a client with observability middleware
func Wrap(provider string, client interfaces.LLMClient) interfaces.LLMClient {
	return &observableClient{client: client, provider: provider}
}

func (oc *observableClient) CompleteImage(ctx context.Context, prompt string, data []byte, mimeType string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "llm.CompleteImage")
	defer span.End()

	// Skip one frame so the source is the caller, not this wrapper
	logger.DebugSkip(ctx, 1, "Requesting chart analysis",
		"provider", oc.provider,
		"mime_type", mimeType,
		"bytes", len(data),
	)

	start := time.Now()
	text, err := oc.client.CompleteImage(ctx, prompt, data, mimeType)
	return oc.finish(ctx, "image", start, text, err)
}

func (oc *observableClient) CompleteText(ctx context.Context, prompt, text string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "llm.CompleteText")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Requesting market data analysis",
		"provider", oc.provider,
		"chars", len(text),
	)

	start := time.Now()
	reply, err := oc.client.CompleteText(ctx, prompt, text)
	return oc.finish(ctx, "data", start, reply, err)
}

func (oc *observableClient) finish(ctx context.Context, mode string, start time.Time, text string, err error) (string, error) {
	latency := time.Since(start).Milliseconds()
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 2, "LLM call failed", err,
			"provider", oc.provider,
			"mode", mode,
			"latency_ms", latency,
		)
		return "", err
	}

	logger.InfoSkip(ctx, 2, "LLM reply received",
		"provider", oc.provider,
		"mode", mode,
		"latency_ms", latency,
		"chars", len(text),
	)
	return text, nil
}
