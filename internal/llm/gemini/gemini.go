package gemini

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"google.golang.org/genai"

	"chart-advisor/internal/interfaces"
	"chart-advisor/internal/trace"
)

type Config struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	// BaseURL overrides the Gemini API endpoint; empty uses the SDK default.
	BaseURL string
	Timeout time.Duration
}

// Client implements interfaces.LLMClient on the Gemini API.
type Client struct {
	cfg    Config
	models *genai.Models
}

var _ interfaces.LLMClient = (*Client)(nil)

func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini API key missing")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, errors.Wrap(err, "create gemini client")
	}
	return &Client{cfg: cfg, models: client.Models}, nil
}

func (c *Client) CompleteImage(ctx context.Context, prompt string, data []byte, mimeType string) (string, error) {
	return c.generate(ctx, []*genai.Part{
		genai.NewPartFromBytes(data, mimeType),
		genai.NewPartFromText(prompt),
	})
}

func (c *Client) CompleteText(ctx context.Context, prompt, text string) (string, error) {
	return c.generate(ctx, []*genai.Part{genai.NewPartFromText(prompt + "\n" + text)})
}

func (c *Client) generate(ctx context.Context, parts []*genai.Part) (string, error) {
	ctx, span := trace.StartSpan(ctx, "gemini-api-call")
	defer span.End()

	gcfg := &genai.GenerateContentConfig{Temperature: genai.Ptr(c.cfg.Temperature)}
	if c.cfg.MaxTokens > 0 {
		gcfg.MaxOutputTokens = int32(c.cfg.MaxTokens)
	}

	resp, err := c.models.GenerateContent(ctx, c.cfg.Model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, gcfg)
	if err != nil {
		return "", errors.Wrap(err, "gemini generate")
	}
	return resp.Text(), nil
}
