package analysisobs

import (
	"context"
	"time"

	"chart-advisor/internal/interfaces"
	"chart-advisor/internal/logger"
	"chart-advisor/internal/trace"
	"chart-advisor/internal/types"
)

type observableAnalyzer struct {
	analyzer interfaces.Analyzer
}

var _ interfaces.Analyzer = (*observableAnalyzer)(nil)

func Wrap(a interfaces.Analyzer) interfaces.Analyzer {
	return &observableAnalyzer{analyzer: a}
}

func (oa *observableAnalyzer) Symbols() []string {
	return oa.analyzer.Symbols()
}

func (oa *observableAnalyzer) Analyze(ctx context.Context, req types.AnalysisRequest) types.AnalysisOutcome {
	ctx, span := trace.StartSpan(ctx, "analysis.Analyze")
	defer span.End()

	start := time.Now()
	logger.InfoSkip(ctx, 1, "Starting analysis",
		"mode", req.Mode,
		"symbol", req.Symbol,
		"filename", req.Filename,
	)

	out := oa.analyzer.Analyze(ctx, req)
	if out.Error != "" {
		logger.WarnSkip(ctx, 1, "Analysis returned an error",
			"mode", req.Mode,
			"message", out.Error,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return out
	}

	logger.InfoSkip(ctx, 1, "Analysis completed",
		"mode", req.Mode,
		"decision", out.Result.Decision,
		"position_type", out.Result.PositionType,
		"risk", out.Result.Risk,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return out
}
