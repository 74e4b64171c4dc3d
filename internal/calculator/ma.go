package calculator

import (
	"errors"
	"fmt"

	"MiningPulse/internal/model"

	"github.com/guregu/null/v5"
)

var (
	ErrNonPositivePeriod = errors.New("period must be positive")
	ErrNotEnoughData     = errors.New("not enough data")
)

// CalculateSMA computes the simple moving average of the last period prices.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, ErrNonPositivePeriod
	}
	if len(prices) < period {
		return 0, fmt.Errorf("%w for SMA(%d): have %d", ErrNotEnoughData, period, len(prices))
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// MovingAverage returns the trailing simple moving average at every position.
// The first window-1 positions are absent.
func MovingAverage(prices []float64, window int) ([]null.Float, error) {
	if window <= 0 {
		return nil, ErrNonPositivePeriod
	}
	out := make([]null.Float, len(prices))
	for i := window - 1; i < len(prices); i++ {
		// Summing each window directly keeps window=1 exact.
		sma, err := CalculateSMA(prices[:i+1], window)
		if err != nil {
			return nil, err
		}
		out[i] = null.FloatFrom(sma)
	}
	return out, nil
}

// MovingAverages computes one independent series per window, all sharing the bars' date axis.
func MovingAverages(bars []model.PriceBar, windows []int) (map[int]model.DerivedSeries, error) {
	closes := model.Closes(bars)
	dates := model.Dates(bars)
	out := make(map[int]model.DerivedSeries, len(windows))
	for _, w := range windows {
		values, err := MovingAverage(closes, w)
		if err != nil {
			return nil, fmt.Errorf("MA%d: %w", w, err)
		}
		out[w] = model.NewSeries(fmt.Sprintf("MA%d", w), dates, values)
	}
	return out, nil
}

// LatestSMA is the last value of MovingAverage, absent when history is shorter than period.
func LatestSMA(prices []float64, period int) null.Float {
	v, err := CalculateSMA(prices, period)
	if err != nil {
		return null.Float{}
	}
	return null.FloatFrom(v)
}
