package interfaces

import "context"

// LLMClient is a multimodal completion backend.
type LLMClient interface {
	CompleteImage(ctx context.Context, prompt string, data []byte, mimeType string) (string, error)
	CompleteText(ctx context.Context, prompt, text string) (string, error)
}

// Gateway never fails: errors come back as text starting with the failure
// marker. Callers check llm.IsFailure and report the error instead of
// parsing the reply.
type Gateway interface {
	AnalyzeImage(ctx context.Context, data []byte, mimeType string) string
	AnalyzeData(ctx context.Context, summary string) string
}
