package calculator

import (
	"math"
	"sort"

	"MiningPulse/internal/model"

	"github.com/guregu/null/v5"
)

// DailyReturns returns the fractional change between consecutive closes.
// The result is one shorter than the input.
func DailyReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return []float64{}
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		out = append(out, closes[i]/closes[i-1]-1)
	}
	return out
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sampleStd is the standard deviation with n-1 in the denominator.
func sampleStd(xs []float64) float64 {
	m := mean(xs)
	ss := 0.0
	for _, x := range xs {
		ss += (x - m) * (x - m)
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

// AnnualizedReturn is mean(returns) * 252, absent with no returns.
func AnnualizedReturn(returns []float64) null.Float {
	if len(returns) == 0 {
		return null.Float{}
	}
	return null.FloatFrom(mean(returns) * tradingDaysPerYear)
}

// AnnualizedVolatility is std(returns) * sqrt(252), absent with fewer than two returns.
func AnnualizedVolatility(returns []float64) null.Float {
	if len(returns) < 2 {
		return null.Float{}
	}
	return null.FloatFrom(sampleStd(returns) * math.Sqrt(tradingDaysPerYear))
}

// SharpeRatio is annualized return over annualized volatility with a zero risk-free rate.
// Absent when volatility is zero or undefined.
func SharpeRatio(returns []float64) null.Float {
	ret := AnnualizedReturn(returns)
	vol := AnnualizedVolatility(returns)
	if !ret.Valid || !vol.Valid || vol.Float64 == 0 {
		return null.Float{}
	}
	return null.FloatFrom(ret.Float64 / vol.Float64)
}

// MaxDrawdown is the deepest fall from a running peak, as a negative percent.
func MaxDrawdown(closes []float64) null.Float {
	if len(closes) == 0 {
		return null.Float{}
	}
	peak := closes[0]
	worst := 0.0
	for _, c := range closes {
		peak = math.Max(peak, c)
		if peak == 0 {
			continue
		}
		worst = math.Min(worst, c/peak-1)
	}
	return null.FloatFrom(worst * 100)
}

// Risk computes the annualized risk table for a filtered price table.
func Risk(bars []model.PriceBar) model.RiskMetrics {
	closes := model.Closes(bars)
	returns := DailyReturns(closes)
	return model.RiskMetrics{
		Observations:        len(returns),
		AnnualReturnPct:     scale(AnnualizedReturn(returns), 100),
		AnnualVolatilityPct: scale(AnnualizedVolatility(returns), 100),
		SharpeRatio:         SharpeRatio(returns),
		MaxDrawdownPct:      MaxDrawdown(closes),
	}
}

func scale(v null.Float, k float64) null.Float {
	if !v.Valid {
		return v
	}
	return null.FloatFrom(v.Float64 * k)
}

// Describe summarizes the present values of a series.
func Describe(values []null.Float) model.Describe {
	xs := make([]float64, 0, len(values))
	for _, v := range values {
		if v.Valid {
			xs = append(xs, v.Float64)
		}
	}
	d := model.Describe{Count: len(xs)}
	if len(xs) == 0 {
		return d
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	d.Mean = null.FloatFrom(mean(xs))
	d.Min = null.FloatFrom(sorted[0])
	d.Max = null.FloatFrom(sorted[len(sorted)-1])
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		d.Median = null.FloatFrom(sorted[mid])
	} else {
		d.Median = null.FloatFrom((sorted[mid-1] + sorted[mid]) / 2)
	}
	if len(xs) > 1 {
		d.Std = null.FloatFrom(sampleStd(xs))
	}
	return d
}

// Summarize condenses a filtered price table. Every field is absent for an empty table.
func Summarize(bars []model.PriceBar) model.PriceSummary {
	s := model.PriceSummary{Bars: len(bars)}
	if len(bars) == 0 {
		return s
	}
	last := bars[len(bars)-1]
	high, low := math.Inf(-1), math.Inf(1)
	var volume float64
	for _, b := range bars {
		high = math.Max(high, b.High)
		low = math.Min(low, b.Low)
		volume += float64(b.Volume)
	}
	s.LastClose = null.FloatFrom(last.Close)
	s.Highest = null.FloatFrom(high)
	s.Lowest = null.FloatFrom(low)
	s.MeanVolume = null.FloatFrom(volume / float64(len(bars)))
	s.LastVolume = last.Volume

	if h, l, err := Calculate52WeekRange(bars); err == nil {
		s.High52w = null.FloatFrom(h)
		s.Low52w = null.FloatFrom(l)
		if pos, err := Calculate52WeekPosition(last.Close, h, l); err == nil {
			s.Position52w = null.FloatFrom(pos)
		}
	}
	return s
}
