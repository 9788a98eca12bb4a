package types

import (
	"fmt"
	"strings"
)

// NotDetected stands in for a text field the parser could not extract.
const NotDetected = "No detectado"

// Decision is the canonical trading decision.
type Decision string

const (
	DecisionOperate      Decision = "OPERATE"
	DecisionWait         Decision = "WAIT"
	DecisionDoNotOperate Decision = "DO_NOT_OPERATE"
)

// Label returns the wording used in prompts and rendered pages.
func (d Decision) Label() string {
	switch d {
	case DecisionOperate:
		return "OPERAR"
	case DecisionDoNotOperate:
		return "NO OPERAR"
	default:
		return "ESPERAR"
	}
}

type PositionType string

const (
	PositionBuy  PositionType = "BUY"
	PositionSell PositionType = "SELL"
	PositionNone PositionType = "NONE"
)

func (p PositionType) Label() string {
	switch p {
	case PositionBuy:
		return "COMPRA"
	case PositionSell:
		return "VENTA"
	default:
		return "N/A"
	}
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

func (r RiskLevel) Label() string {
	switch r {
	case RiskLow:
		return "BAJO"
	case RiskMedium:
		return "MEDIO"
	default:
		return "ALTO"
	}
}

type Trend string

const (
	TrendBullish Trend = "BULLISH"
	TrendBearish Trend = "BEARISH"
)

// MarketSummary is the fixed-shape numeric snapshot sent to the LLM in data mode.
type MarketSummary struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	RSI           float64 `json:"rsi"`
	EMA20         float64 `json:"ema20"`
	EMA50         float64 `json:"ema50"`
	Trend         Trend   `json:"trend"`
	PercentChange float64 `json:"percent_change"`
}

// Text renders the summary as the plain-text block handed to the LLM.
func (m MarketSummary) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Simbolo: %s\n", m.Symbol)
	fmt.Fprintf(&b, "Precio actual: %.5f\n", m.Price)
	fmt.Fprintf(&b, "RSI(14): %.2f\n", m.RSI)
	fmt.Fprintf(&b, "EMA(20): %.5f\n", m.EMA20)
	fmt.Fprintf(&b, "EMA(50): %.5f\n", m.EMA50)
	fmt.Fprintf(&b, "Tendencia: %s\n", m.Trend)
	fmt.Fprintf(&b, "Cambio porcentual: %.3f%%\n", m.PercentChange)
	return b.String()
}

// AnalysisResult is the structured recommendation built from one LLM reply.
// Every field is always populated; see parser.Parse for the defaults.
type AnalysisResult struct {
	TechnicalSummary string       `json:"technical_summary"`
	Decision         Decision     `json:"decision"`
	PositionType     PositionType `json:"position_type"`
	Risk             RiskLevel    `json:"risk"`
	Rationale        string       `json:"rationale"`

	// Raw text the model wrote for the enumerated fields.
	DecisionText string `json:"decision_text,omitempty"`
	PositionText string `json:"position_text,omitempty"`
	RiskText     string `json:"risk_text,omitempty"`

	Filename   string         `json:"filename,omitempty"`
	MarketData *MarketSummary `json:"market_data,omitempty"`
}

// DefaultAnalysisResult returns the fail-safe record: WAIT, no position, HIGH risk.
func DefaultAnalysisResult() AnalysisResult {
	return AnalysisResult{
		TechnicalSummary: NotDetected,
		Decision:         DecisionWait,
		PositionType:     PositionNone,
		Risk:             RiskHigh,
		Rationale:        NotDetected,
	}
}

// Text renders the record in the labeled-section format the prompts ask for.
// The rendering is lossy (raw texts become canonical labels), so parsing it
// back does not necessarily reproduce the same record.
func (r AnalysisResult) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ANALISIS: %s\n", r.TechnicalSummary)
	fmt.Fprintf(&b, "DECISION: %s\n", r.Decision.Label())
	fmt.Fprintf(&b, "TIPO: %s\n", r.PositionType.Label())
	fmt.Fprintf(&b, "RIESGO: %s\n", r.Risk.Label())
	fmt.Fprintf(&b, "MOTIVO: %s\n", r.Rationale)
	return b.String()
}

// Mode selects how a request is analyzed.
type Mode string

const (
	ModeImage Mode = "image"
	ModeAPI   Mode = "api"
)

// AnalysisRequest carries one user request. Image mode uses Filename, Image
// and MimeType; api mode uses Symbol.
type AnalysisRequest struct {
	Mode     Mode
	Filename string
	Image    []byte
	MimeType string
	Symbol   string
}

// AnalysisOutcome holds either a result or a user-facing error message.
type AnalysisOutcome struct {
	Result *AnalysisResult `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}
