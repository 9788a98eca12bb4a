// Package marketdata turns a symbol key such as "EURUSD" or "BTCUSD" into the
// numeric MarketSummary used by data-mode analysis.
package marketdata

import (
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"chart-advisor/internal/interfaces"
	"chart-advisor/internal/ta"
	"chart-advisor/internal/types"
)

// ErrUnavailable is wrapped by every fetch failure.
var ErrUnavailable = errors.New("market data unavailable")

type Provider = interfaces.MarketDataProvider

// Bar is one OHLC bar of an intraday series.
type Bar struct {
	Time  time.Time
	Open  float64
	High  float64
	Low   float64
	Close float64
}

type Params struct {
	Source     string // STATIC or LIVE
	BaseURL    string
	APIKey     string
	Interval   string
	OutputSize string
	Timeout    time.Duration
	Retries    int
}

// New returns the provider selected by p.Source.
func New(p Params) Provider {
	if p.Source == "STATIC" {
		return NewStatic()
	}
	return NewAlphaVantage(p)
}

// Summarize sorts bars by time and computes the summary over their closes.
// Indicators that cannot be computed are reported as 0.
func Summarize(symbol string, bars []Bar) (types.MarketSummary, error) {
	if len(bars) == 0 {
		return types.MarketSummary{}, errors.Wrapf(ErrUnavailable, "%s: empty series", symbol)
	}

	sorted := append([]Bar(nil), bars...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	closes := make([]float64, len(sorted))
	for i, b := range sorted {
		closes[i] = b.Close
	}

	ema20 := ta.Finite(ta.EMA(closes, 20))
	ema50 := ta.Finite(ta.EMA(closes, 50))

	trend := types.TrendBearish
	if ema20 > ema50 {
		trend = types.TrendBullish
	}

	return types.MarketSummary{
		Symbol:        symbol,
		Price:         round(closes[len(closes)-1], 5),
		RSI:           round(ta.Finite(ta.RSI(closes, 14)), 2),
		EMA20:         round(ema20, 5),
		EMA50:         round(ema50, 5),
		Trend:         trend,
		PercentChange: round(ta.Finite(ta.PercentChange(closes)), 3),
	}, nil
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
