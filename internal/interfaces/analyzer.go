package interfaces

import (
	"context"

	"chart-advisor/internal/types"
)

type Analyzer interface {
	Analyze(ctx context.Context, req types.AnalysisRequest) types.AnalysisOutcome
	Symbols() []string
}
