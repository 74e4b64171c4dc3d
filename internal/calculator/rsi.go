package calculator

import (
	"MiningPulse/internal/model"

	"github.com/guregu/null/v5"
)

// DefaultRSIPeriod is the conventional RSI look-back.
const DefaultRSIPeriod = 14

// RSI computes the relative strength index at every position.
//
// Gains and losses are smoothed with an adjusted exponential mean
// (alpha = 1/period, weights normalized by their sum). Index 0 has no
// price change, so the first defined value is at index period.
func RSI(prices []float64, period int) ([]null.Float, error) {
	if period <= 0 {
		return nil, ErrNonPositivePeriod
	}
	out := make([]null.Float, len(prices))
	decay := 1 - 1/float64(period)

	var upSum, downSum, weight float64
	for i := 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		upSum = gain + decay*upSum
		downSum = loss + decay*downSum
		weight = 1 + decay*weight

		if i < period {
			continue
		}
		out[i] = null.FloatFrom(rsiFromAverages(upSum/weight, downSum/weight))
	}
	return out, nil
}

func rsiFromAverages(avgUp, avgDown float64) float64 {
	switch {
	case avgDown == 0 && avgUp == 0:
		return 50
	case avgDown == 0:
		return 100
	}
	rs := avgUp / avgDown
	return 100 - 100/(1+rs)
}

// RSISeries wraps RSI over the bars' closes.
func RSISeries(bars []model.PriceBar, period int) (model.DerivedSeries, error) {
	values, err := RSI(model.Closes(bars), period)
	if err != nil {
		return model.DerivedSeries{}, err
	}
	return model.NewSeries("RSI", model.Dates(bars), values), nil
}

// LatestRSI returns the most recent RSI, absent when history is too short.
func LatestRSI(prices []float64, period int) null.Float {
	values, err := RSI(prices, period)
	if err != nil || len(values) == 0 {
		return null.Float{}
	}
	return values[len(values)-1]
}
