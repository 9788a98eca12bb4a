package noop

import (
	"context"

	"chart-advisor/internal/interfaces"
	"chart-advisor/internal/logger"
)

// Reply is returned for every request: wait, no position, high risk.
const Reply = `ANALISIS: Analisis no disponible (sin proveedor de IA configurado)
DECISION: ESPERAR
TIPO: N/A
RIESGO: ALTO
MOTIVO: Modo de prueba, no se consulto ningun modelo`

// Client is the fallback used when no LLM provider is configured.
type Client struct{}

var _ interfaces.LLMClient = (*Client)(nil)

func New() *Client {
	return &Client{}
}

func (c *Client) CompleteImage(ctx context.Context, prompt string, data []byte, mimeType string) (string, error) {
	logger.Debug(ctx, "Noop LLM called - always returns WAIT", "mode", "image", "bytes", len(data))
	return Reply, nil
}

func (c *Client) CompleteText(ctx context.Context, prompt, text string) (string, error) {
	logger.Debug(ctx, "Noop LLM called - always returns WAIT", "mode", "data")
	return Reply, nil
}
