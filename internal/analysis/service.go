// Package analysis runs one user request end to end: it picks the mode,
// calls the market data provider and the LLM gateway, and parses the reply.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chart-advisor/internal/interfaces"
	"chart-advisor/internal/llm"
	"chart-advisor/internal/logger"
	"chart-advisor/internal/parser"
	"chart-advisor/internal/types"
)

var (
	ErrLLMFailure            = errors.New("llm analysis failed")
	ErrMarketDataUnavailable = errors.New("market data unavailable")
	ErrInvalidRequest        = errors.New("invalid request")
)

const (
	msgLLMFailure  = "No se pudo completar el analisis de IA. Intenta de nuevo en unos minutos."
	msgMarketData  = "No se pudieron obtener datos de mercado. Revisa la conexion e intenta de nuevo."
	msgInvalidMode = "Selecciona un modo de analisis valido."
)

// RequestError carries the message shown for a rejected request.
type RequestError struct {
	Msg string
}

func (e *RequestError) Error() string { return "invalid request: " + e.Msg }

func (e *RequestError) Unwrap() error { return ErrInvalidRequest }

func invalid(msg string) error {
	return &RequestError{Msg: msg}
}

type Service struct {
	gateway interfaces.Gateway
	market  interfaces.MarketDataProvider
	parser  *parser.Parser
	symbols []string
	allowed map[string]bool
}

var _ interfaces.Analyzer = (*Service)(nil)

func New(gateway interfaces.Gateway, market interfaces.MarketDataProvider, p *parser.Parser, symbols []string) *Service {
	if p == nil {
		p = parser.New(nil)
	}
	allowed := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		allowed[strings.ToUpper(s)] = true
	}
	return &Service{
		gateway: gateway,
		market:  market,
		parser:  p,
		symbols: append([]string(nil), symbols...),
		allowed: allowed,
	}
}

// Symbols returns the configured symbol keys in order.
func (s *Service) Symbols() []string {
	return append([]string(nil), s.symbols...)
}

func (s *Service) Analyze(ctx context.Context, req types.AnalysisRequest) types.AnalysisOutcome {
	var (
		res types.AnalysisResult
		err error
	)

	switch req.Mode {
	case types.ModeImage:
		res, err = s.AnalyzeChart(ctx, req.Filename, req.Image, req.MimeType)
	case types.ModeAPI:
		res, err = s.AnalyzeSymbol(ctx, req.Symbol)
	default:
		err = invalid(msgInvalidMode)
	}

	if err != nil {
		return types.AnalysisOutcome{Error: UserMessage(err)}
	}
	return types.AnalysisOutcome{Result: &res}
}

func (s *Service) AnalyzeChart(ctx context.Context, filename string, data []byte, mimeType string) (types.AnalysisResult, error) {
	if len(data) == 0 {
		return types.AnalysisResult{}, invalid("Sube una imagen del grafico.")
	}

	raw := s.gateway.AnalyzeImage(ctx, data, mimeType)
	logger.Debug(ctx, "Raw LLM reply", "mode", types.ModeImage, "filename", filename, "reply", raw)
	if llm.IsFailure(raw) {
		logger.Error(ctx, "Chart analysis failed", "filename", filename, "detail", raw)
		return types.AnalysisResult{}, fmt.Errorf("%w: %s", ErrLLMFailure, raw)
	}

	res := s.parser.Parse(raw)
	res.Filename = filename
	logger.Recommendation(ctx, string(types.ModeImage), string(res.Decision), string(res.PositionType), string(res.Risk),
		"filename", filename)
	return res, nil
}

func (s *Service) AnalyzeSymbol(ctx context.Context, symbol string) (types.AnalysisResult, error) {
	key := strings.ToUpper(strings.TrimSpace(symbol))
	if !s.allowed[key] {
		return types.AnalysisResult{}, invalid(fmt.Sprintf("Simbolo no soportado: %q.", symbol))
	}

	summary, err := s.market.Fetch(ctx, key)
	if err != nil {
		return types.AnalysisResult{}, fmt.Errorf("%w: %v", ErrMarketDataUnavailable, err)
	}

	raw := s.gateway.AnalyzeData(ctx, summary.Text())
	logger.Debug(ctx, "Raw LLM reply", "mode", types.ModeAPI, "symbol", key, "reply", raw)
	if llm.IsFailure(raw) {
		logger.Error(ctx, "Market data analysis failed", "symbol", key, "detail", raw)
		return types.AnalysisResult{}, fmt.Errorf("%w: %s", ErrLLMFailure, raw)
	}

	res := s.parser.Parse(raw)
	res.MarketData = &summary
	logger.Recommendation(ctx, string(types.ModeAPI), string(res.Decision), string(res.PositionType), string(res.Risk),
		"symbol", key, "price", summary.Price)
	return res, nil
}

// UserMessage maps an analysis error to the message shown to users. Upstream
// details never leak into it.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrLLMFailure):
		return msgLLMFailure
	case errors.Is(err, ErrMarketDataUnavailable):
		return msgMarketData
	case errors.Is(err, ErrInvalidRequest):
		var re *RequestError
		if errors.As(err, &re) {
			return re.Msg
		}
		return msgInvalidMode
	default:
		return msgLLMFailure
	}
}
