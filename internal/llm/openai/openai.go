package openai

import (
	"context"
	"encoding/base64"
	"time"

	einoopenai "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/pkg/errors"

	"chart-advisor/internal/interfaces"
	"chart-advisor/internal/trace"
)

type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

// Client implements interfaces.LLMClient on an OpenAI-compatible chat model.
type Client struct {
	chat model.BaseChatModel
}

var _ interfaces.LLMClient = (*Client)(nil)

func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai API key missing")
	}
	maxTokens := cfg.MaxTokens
	temperature := cfg.Temperature

	mcfg := &einoopenai.ChatModelConfig{
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
		Timeout:     cfg.Timeout,
	}
	if cfg.BaseURL != "" {
		mcfg.BaseURL = cfg.BaseURL
	}

	chat, err := einoopenai.NewChatModel(ctx, mcfg)
	if err != nil {
		return nil, errors.Wrap(err, "create openai chat model")
	}
	return NewWithModel(chat), nil
}

// NewWithModel wraps any eino chat model.
func NewWithModel(chat model.BaseChatModel) *Client {
	return &Client{chat: chat}
}

func (c *Client) CompleteImage(ctx context.Context, prompt string, data []byte, mimeType string) (string, error) {
	uri := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
	msg := &schema.Message{
		Role: schema.User,
		MultiContent: []schema.ChatMessagePart{
			{Type: schema.ChatMessagePartTypeText, Text: prompt},
			{
				Type: schema.ChatMessagePartTypeImageURL,
				ImageURL: &schema.ChatMessageImageURL{
					URL:    uri,
					Detail: schema.ImageURLDetailHigh,
				},
			},
		},
	}
	return c.generate(ctx, msg)
}

func (c *Client) CompleteText(ctx context.Context, prompt, text string) (string, error) {
	return c.generate(ctx, schema.UserMessage(prompt+"\n"+text))
}

func (c *Client) generate(ctx context.Context, msg *schema.Message) (string, error) {
	ctx, span := trace.StartSpan(ctx, "openai-api-call")
	defer span.End()

	out, err := c.chat.Generate(ctx, []*schema.Message{msg})
	if err != nil {
		return "", errors.Wrap(err, "openai generate")
	}
	if out == nil {
		return "", errors.New("openai returned no message")
	}
	return out.Content, nil
}
