// Package ta computes the technical indicators fed to the data-mode prompt.
// Every function returns the indicator value at the last close, or NaN when
// the series is too short.
package ta

import (
	"math"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/momentum"
	"github.com/cinar/indicator/v2/trend"
)

func last(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	return vals[len(vals)-1]
}

func EMA(closes []float64, period int) float64 {
	if len(closes) < period || period <= 0 {
		return math.NaN()
	}
	ema := trend.NewEmaWithPeriod[float64](period)
	return last(helper.ChanToSlice(ema.Compute(helper.SliceToChan(closes))))
}

func RSI(closes []float64, period int) float64 {
	if len(closes) < period+1 || period <= 0 {
		return math.NaN()
	}
	rsi := momentum.NewRsiWithPeriod[float64](period)
	return last(helper.ChanToSlice(rsi.Compute(helper.SliceToChan(closes))))
}

// PercentChange is (last - first) / first * 100 over the whole series.
func PercentChange(closes []float64) float64 {
	if len(closes) < 2 || closes[0] == 0 {
		return math.NaN()
	}
	return (closes[len(closes)-1] - closes[0]) / closes[0] * 100
}

// Finite maps NaN and infinities to 0.
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
