package claude

import (
	"context"
	"encoding/base64"
	"strings"
	"time"

	"github.com/pkg/errors"

	"chart-advisor/internal/api"
	"chart-advisor/internal/interfaces"
	"chart-advisor/internal/trace"
)

const (
	defaultBaseURL   = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"
)

type Config struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	// BaseURL points at the public API unless a proxy is configured.
	BaseURL string
	Timeout time.Duration
}

// Client implements interfaces.LLMClient on the Anthropic Messages API.
type Client struct {
	cfg  Config
	http *api.Client
}

var _ interfaces.LLMClient = (*Client)(nil)

func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		cfg: cfg,
		http: api.NewClient(
			api.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")),
			api.WithTimeout(cfg.Timeout),
			api.WithHeader("x-api-key", cfg.APIKey),
			api.WithHeader("anthropic-version", anthropicVersion),
			api.WithLogging(true),
		),
	}
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float32   `json:"temperature"`
	Messages    []message `json:"messages"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
	Error   *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *Client) CompleteImage(ctx context.Context, prompt string, data []byte, mimeType string) (string, error) {
	return c.send(ctx, []contentBlock{
		{
			Type: "image",
			Source: &imageSource{
				Type:      "base64",
				MediaType: mimeType,
				Data:      base64.StdEncoding.EncodeToString(data),
			},
		},
		{Type: "text", Text: prompt},
	})
}

func (c *Client) CompleteText(ctx context.Context, prompt, text string) (string, error) {
	return c.send(ctx, []contentBlock{{Type: "text", Text: prompt + "\n" + text}})
}

func (c *Client) send(ctx context.Context, content []contentBlock) (string, error) {
	ctx, span := trace.StartSpan(ctx, "claude-api-call")
	defer span.End()

	if c.cfg.APIKey == "" {
		return "", errors.New("anthropic API key missing")
	}

	req := messagesRequest{
		Model:       c.cfg.Model,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		Messages:    []message{{Role: "user", Content: content}},
	}

	resp, err := c.http.POST(ctx, "/v1/messages", req)
	if err != nil {
		return "", errors.Wrap(err, "claude request failed")
	}

	var out messagesResponse
	if err := resp.ParseJSON(&out); err != nil {
		return "", errors.Wrap(err, "claude response")
	}
	if out.Error != nil {
		return "", errors.Errorf("claude error %s: %s", out.Error.Type, out.Error.Message)
	}

	var b strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", errors.New("claude returned no text content")
	}
	return b.String(), nil
}
