package marketobs

import (
	"context"
	"time"

	"chart-advisor/internal/interfaces"
	"chart-advisor/internal/logger"
	"chart-advisor/internal/trace"
	"chart-advisor/internal/types"
)

// observableProvider wraps a MarketDataProvider with observability (logging & tracing)
type observableProvider struct {
	provider interfaces.MarketDataProvider
}

var _ interfaces.MarketDataProvider = (*observableProvider)(nil)

// Wrap wraps a provider with observability middleware
func Wrap(provider interfaces.MarketDataProvider) interfaces.MarketDataProvider {
	return &observableProvider{provider: provider}
}

func (op *observableProvider) Fetch(ctx context.Context, symbol string) (types.MarketSummary, error) {
	ctx, span := trace.StartSpan(ctx, "marketdata.Fetch")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching market data", "symbol", symbol)

	start := time.Now()
	summary, err := op.provider.Fetch(ctx, symbol)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch market data", err,
			"symbol", symbol,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return types.MarketSummary{}, err
	}

	logger.InfoSkip(ctx, 1, "Market data fetched",
		"symbol", summary.Symbol,
		"price", summary.Price,
		"rsi", summary.RSI,
		"trend", summary.Trend,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return summary, nil
}
