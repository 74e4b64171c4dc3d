package strategy

import (
	"MiningPulse/internal/model"

	"github.com/guregu/null/v5"
)

const (
	OversoldLevel   = 30.0
	OverboughtLevel = 70.0
	extremeRSI      = 85.0
)

// Tiers maps a total score to a descriptive label, highest first.
var Tiers = []struct {
	MinScore float64
	Label    string
}{
	{1.2, "Deep discount"},
	{0.5, "Discount"},
	{-0.5, "Fair value"},
	{-1.2, "Stretched"},
}

// DefaultLabel applies to scores below every tier.
const DefaultLabel = "Overextended"

func mapTier(totalScore float64) string {
	for _, t := range Tiers {
		if totalScore >= t.MinScore {
			return t.Label
		}
	}
	return DefaultLabel
}

// ClassifyRSI places an RSI reading in its zone.
func ClassifyRSI(rsi null.Float) model.RSIZone {
	switch {
	case !rsi.Valid:
		return model.ZoneUnknown
	case rsi.Float64 < OversoldLevel:
		return model.ZoneOversold
	case rsi.Float64 > OverboughtLevel:
		return model.ZoneOverbought
	}
	return model.ZoneNeutral
}

// ClassifyTrend compares price with a short and a long moving average.
// Bullish: price > short > long. Bearish: price < short < long.
func ClassifyTrend(price float64, short, long null.Float) model.Trend {
	if !short.Valid || !long.Valid {
		return model.TrendUnknown
	}
	switch {
	case price > short.Float64 && short.Float64 > long.Float64:
		return model.TrendBullish
	case price < short.Float64 && short.Float64 < long.Float64:
		return model.TrendBearish
	}
	return model.TrendSideways
}

// Evaluate scores the latest indicator readings of one instrument.
func Evaluate(snap *model.Snapshot) *model.Signal {
	f1 := scoreMADeviation(snap)
	f2 := scoreRSI(snap)
	f4 := scoreTrend(snap)

	otherFactorsAvg := (f1.RawScore + f2.RawScore + f4.RawScore) / 3.0
	f3 := score52WeekPosition(snap, otherFactorsAvg)

	factors := []model.FactorScore{f1, f2, f3, f4}
	total := 0.0
	for _, f := range factors {
		total += f.Weighted
	}

	signal := &model.Signal{
		Factors:    factors,
		TotalScore: total,
		Label:      mapTier(total),
		Zone:       ClassifyRSI(snap.RSI),
		Trend:      ClassifyTrend(snap.CurrentPrice, snap.MAShort, snap.MALong),
	}
	if snap.RSI.Valid && snap.RSI.Float64 > extremeRSI {
		signal.WarningMsg = "RSI above 85: extremely overbought"
	} else if snap.RSI.Valid && snap.RSI.Float64 < 100-extremeRSI {
		signal.WarningMsg = "RSI below 15: extremely oversold"
	}
	return signal
}
