package analysis

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chart-advisor/internal/analysis/analysisobs"
	"chart-advisor/internal/llm"
	"chart-advisor/internal/marketdata"
	"chart-advisor/internal/parser"
	"chart-advisor/internal/types"
)

type fakeGateway struct {
	imageReply string
	dataReply  string
	gotSummary string
	gotMime    string
}

func (f *fakeGateway) AnalyzeImage(ctx context.Context, data []byte, mimeType string) string {
	f.gotMime = mimeType
	return f.imageReply
}

func (f *fakeGateway) AnalyzeData(ctx context.Context, summary string) string {
	f.gotSummary = summary
	return f.dataReply
}

type fakeMarket struct {
	summary types.MarketSummary
	err     error
	calls   int
}

func (f *fakeMarket) Fetch(ctx context.Context, symbol string) (types.MarketSummary, error) {
	f.calls++
	if f.err != nil {
		return types.MarketSummary{}, f.err
	}
	s := f.summary
	s.Symbol = symbol
	return s, nil
}

const reply = `ANALISIS: Doble suelo en soporte
DECISION: OPERAR
TIPO: COMPRA
RIESGO: MEDIO
MOTIVO: Rebote con volumen`

var symbols = []string{"EURUSD", "BTCUSD"}

func newService(gw *fakeGateway, m *fakeMarket) *Service {
	return New(gw, m, parser.New(nil), symbols)
}

func TestAnalyzeImage(t *testing.T) {
	gw := &fakeGateway{imageReply: reply}
	svc := newService(gw, &fakeMarket{})

	out := svc.Analyze(context.Background(), types.AnalysisRequest{
		Mode: types.ModeImage, Filename: "abc_chart.png", Image: []byte("png"), MimeType: "image/png",
	})
	require.Empty(t, out.Error)
	require.NotNil(t, out.Result)

	assert.Equal(t, types.DecisionOperate, out.Result.Decision)
	assert.Equal(t, types.PositionBuy, out.Result.PositionType)
	assert.Equal(t, types.RiskMedium, out.Result.Risk)
	assert.Equal(t, "abc_chart.png", out.Result.Filename)
	assert.Nil(t, out.Result.MarketData)
	assert.Equal(t, "image/png", gw.gotMime)
}

func TestAnalyzeSymbol(t *testing.T) {
	gw := &fakeGateway{dataReply: reply}
	m := &fakeMarket{summary: types.MarketSummary{Price: 1.0851, RSI: 55.2, EMA20: 1.085, EMA50: 1.083, Trend: types.TrendBullish}}
	svc := newService(gw, m)

	res, err := svc.AnalyzeSymbol(context.Background(), " eurusd ")
	require.NoError(t, err)

	require.NotNil(t, res.MarketData)
	assert.Equal(t, "EURUSD", res.MarketData.Symbol)
	assert.Empty(t, res.Filename)
	assert.Contains(t, gw.gotSummary, "Simbolo: EURUSD")
	assert.Contains(t, gw.gotSummary, "RSI(14): 55.20")
	assert.Equal(t, types.DecisionOperate, res.Decision)
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name    string
		gw      *fakeGateway
		market  *fakeMarket
		req     types.AnalysisRequest
		wantErr error
		wantMsg string
	}{
		{
			name:    "llm failure in image mode",
			gw:      &fakeGateway{imageReply: llm.FailureMarker + " quota exceeded"},
			req:     types.AnalysisRequest{Mode: types.ModeImage, Image: []byte("png")},
			wantErr: ErrLLMFailure,
			wantMsg: msgLLMFailure,
		},
		{
			name:    "llm failure in data mode",
			gw:      &fakeGateway{dataReply: llm.FailureMarker + " timeout"},
			req:     types.AnalysisRequest{Mode: types.ModeAPI, Symbol: "BTCUSD"},
			wantErr: ErrLLMFailure,
			wantMsg: msgLLMFailure,
		},
		{
			name:    "market data unavailable",
			gw:      &fakeGateway{dataReply: reply},
			market:  &fakeMarket{err: fmt.Errorf("wrapped: %w", marketdata.ErrUnavailable)},
			req:     types.AnalysisRequest{Mode: types.ModeAPI, Symbol: "EURUSD"},
			wantErr: ErrMarketDataUnavailable,
			wantMsg: msgMarketData,
		},
		{
			name:    "unknown symbol",
			gw:      &fakeGateway{},
			req:     types.AnalysisRequest{Mode: types.ModeAPI, Symbol: "XAUUSD"},
			wantErr: ErrInvalidRequest,
			wantMsg: `Simbolo no soportado: "XAUUSD".`,
		},
		{
			name:    "missing image",
			gw:      &fakeGateway{},
			req:     types.AnalysisRequest{Mode: types.ModeImage},
			wantErr: ErrInvalidRequest,
			wantMsg: "Sube una imagen del grafico.",
		},
		{
			name:    "unknown mode",
			gw:      &fakeGateway{},
			req:     types.AnalysisRequest{Mode: "video"},
			wantErr: ErrInvalidRequest,
			wantMsg: msgInvalidMode,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.market
			if m == nil {
				m = &fakeMarket{}
			}
			svc := newService(tt.gw, m)

			out := svc.Analyze(context.Background(), tt.req)
			assert.Nil(t, out.Result)
			assert.Equal(t, tt.wantMsg, out.Error)
			assert.NotContains(t, out.Error, llm.FailureMarker)

			var err error
			switch tt.req.Mode {
			case types.ModeImage:
				_, err = svc.AnalyzeChart(context.Background(), "", tt.req.Image, "image/png")
			case types.ModeAPI:
				_, err = svc.AnalyzeSymbol(context.Background(), tt.req.Symbol)
			default:
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestUnknownSymbolDoesNotFetch(t *testing.T) {
	m := &fakeMarket{}
	_, err := newService(&fakeGateway{}, m).AnalyzeSymbol(context.Background(), "NOPE")
	require.Error(t, err)
	assert.Zero(t, m.calls)
}

func TestGarbageReplyFallsBackToDefaults(t *testing.T) {
	svc := newService(&fakeGateway{imageReply: "Lo siento, no puedo ver la imagen."}, &fakeMarket{})

	res, err := svc.AnalyzeChart(context.Background(), "x.png", []byte("png"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, types.DecisionWait, res.Decision)
	assert.Equal(t, types.PositionNone, res.PositionType)
	assert.Equal(t, types.RiskHigh, res.Risk)
	assert.Equal(t, types.NotDetected, res.Rationale)
}

func TestSymbolsAndWrap(t *testing.T) {
	svc := newService(&fakeGateway{imageReply: reply}, &fakeMarket{})
	a := analysisobs.Wrap(svc)

	assert.Equal(t, symbols, a.Symbols())
	out := a.Analyze(context.Background(), types.AnalysisRequest{Mode: types.ModeImage, Image: []byte("png")})
	require.NotNil(t, out.Result)
	assert.Equal(t, types.DecisionOperate, out.Result.Decision)

	out = a.Analyze(context.Background(), types.AnalysisRequest{Mode: "video"})
	assert.Equal(t, msgInvalidMode, out.Error)
}
