package strategy

import (
	"fmt"
	"math"

	"MiningPulse/internal/model"
)

const (
	weightMA       = 0.35
	weightRSI      = 0.30
	weightPosition = 0.15
	weightTrend    = 0.20
)

func factor(name string, score, weight float64, commentary string) model.FactorScore {
	return model.FactorScore{
		Name:       name,
		RawScore:   score,
		Weight:     weight,
		Weighted:   score * weight,
		Commentary: commentary,
	}
}

// scoreMADeviation scores how far the price sits from the long moving average.
func scoreMADeviation(snap *model.Snapshot) model.FactorScore {
	if !snap.MALong.Valid || snap.MALong.Float64 == 0 {
		return factor("MA deviation", 0, weightMA, "long MA unavailable")
	}
	deviation := (snap.CurrentPrice - snap.MALong.Float64) / snap.MALong.Float64 * 100

	var score float64
	switch {
	case deviation <= -20:
		score = 2.0
	case deviation <= -10:
		score = 1.5
	case deviation <= -5:
		score = 1.0
	case deviation <= 0:
		score = 0.5
	case deviation <= 5:
		score = 0
	case deviation <= 10:
		score = -0.5
	case deviation <= 15:
		score = -1.0
	case deviation <= 20:
		score = -1.5
	default:
		score = -2.0
	}
	return factor("MA deviation", score, weightMA, fmt.Sprintf("%+.1f%%", deviation))
}

// scoreRSI scores the latest RSI; an absent reading is neutral.
func scoreRSI(snap *model.Snapshot) model.FactorScore {
	if !snap.RSI.Valid {
		return factor("RSI", 0, weightRSI, "RSI unavailable")
	}
	rsi := snap.RSI.Float64
	var score float64
	switch {
	case rsi <= 25:
		score = 2.0
	case rsi <= 30:
		score = 1.5
	case rsi <= 40:
		score = 1.0
	case rsi <= 45:
		score = 0.5
	case rsi <= 55:
		score = 0
	case rsi <= 60:
		score = -0.5
	case rsi <= 70:
		score = -1.0
	case rsi <= 80:
		score = -1.5
	default:
		score = -2.0
	}
	return factor("RSI", score, weightRSI, fmt.Sprintf("RSI=%.0f", rsi))
}

// score52WeekPosition scores where the price sits in the 52-week range.
// Above 95% it only reaches -2 when the other factors already average below -1.
func score52WeekPosition(snap *model.Snapshot, otherFactorsAvg float64) model.FactorScore {
	if !snap.Position52w.Valid {
		return factor("52w position", 0, weightPosition, "range unavailable")
	}
	pos := snap.Position52w.Float64 * 100

	var score float64
	switch {
	case pos <= 10:
		score = 2.0
	case pos <= 20:
		score = 1.5
	case pos <= 30:
		score = 1.0
	case pos <= 40:
		score = 0.5
	case pos <= 60:
		score = 0
	case pos <= 70:
		score = -0.5
	case pos <= 80:
		score = -1.0
	case pos <= 95:
		score = -1.5
	default:
		if otherFactorsAvg < -1 {
			score = -2.0
		} else {
			score = -1.0
		}
	}
	return factor("52w position", score, weightPosition, fmt.Sprintf("position=%.0f%%", pos))
}

// scoreTrend scores MA alignment and proximity to 30-day extremes.
func scoreTrend(snap *model.Snapshot) model.FactorScore {
	trend := ClassifyTrend(snap.CurrentPrice, snap.MAShort, snap.MALong)
	near := func(level float64) bool {
		return level > 0 && math.Abs(snap.CurrentPrice-level)/level < 0.01
	}

	switch {
	case trend == model.TrendBullish && near(snap.High30d):
		return factor("Trend", 1.5, weightTrend, "bullish alignment at 30-day high")
	case trend == model.TrendBullish:
		return factor("Trend", 1.0, weightTrend, "bullish alignment")
	case trend == model.TrendBearish && near(snap.Low30d):
		return factor("Trend", -1.0, weightTrend, "bearish alignment at 30-day low")
	case trend == model.TrendBearish:
		return factor("Trend", -0.5, weightTrend, "bearish alignment")
	case trend == model.TrendUnknown:
		return factor("Trend", 0, weightTrend, "not enough history")
	}
	return factor("Trend", 0, weightTrend, "sideways")
}
