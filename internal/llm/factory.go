package llm

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"chart-advisor/internal/llm/claude"
	"chart-advisor/internal/llm/gemini"
	"chart-advisor/internal/llm/llmobs"
	"chart-advisor/internal/llm/noop"
	"chart-advisor/internal/llm/openai"
)

// ProviderConfig selects and configures a backend.
type ProviderConfig struct {
	Provider    string // GEMINI, OPENAI, CLAUDE or NOOP
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

// NewClient builds the configured provider wrapped with observability.
func NewClient(ctx context.Context, pc ProviderConfig) (Client, error) {
	var (
		client Client
		err    error
	)

	switch pc.Provider {
	case "GEMINI":
		client, err = gemini.New(ctx, gemini.Config{
			APIKey:      pc.APIKey,
			Model:       pc.Model,
			MaxTokens:   pc.MaxTokens,
			Temperature: pc.Temperature,
			BaseURL:     pc.BaseURL,
			Timeout:     pc.Timeout,
		})
	case "OPENAI":
		client, err = openai.New(ctx, openai.Config{
			APIKey:      pc.APIKey,
			Model:       pc.Model,
			BaseURL:     pc.BaseURL,
			MaxTokens:   pc.MaxTokens,
			Temperature: pc.Temperature,
			Timeout:     pc.Timeout,
		})
	case "CLAUDE":
		if pc.APIKey == "" {
			return nil, errors.New("anthropic API key missing")
		}
		client = claude.New(claude.Config{
			APIKey:      pc.APIKey,
			Model:       pc.Model,
			MaxTokens:   pc.MaxTokens,
			Temperature: pc.Temperature,
			BaseURL:     pc.BaseURL,
			Timeout:     pc.Timeout,
		})
	case "NOOP", "":
		client = noop.New()
	default:
		return nil, errors.Errorf("unknown llm provider %q", pc.Provider)
	}
	if err != nil {
		return nil, err
	}

	return llmobs.Wrap(pc.Provider, client), nil
}
