package interfaces

import (
	"context"

	"chart-advisor/internal/types"
)

type MarketDataProvider interface {
	Fetch(ctx context.Context, symbol string) (types.MarketSummary, error)
}
