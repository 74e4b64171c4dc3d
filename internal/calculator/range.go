package calculator

import (
	"errors"
	"math"

	"MiningPulse/internal/model"
)

const (
	tradingDaysPerYear  = 252
	tradingDaysPerMonth = 22
)

// Calculate52WeekRange scans the most recent 252 trading days and returns the high and low.
func Calculate52WeekRange(bars []model.PriceBar) (high, low float64, err error) {
	return trailingRange(bars, tradingDaysPerYear)
}

// Calculate30DayRange scans the most recent 22 trading days and returns the high and low.
func Calculate30DayRange(bars []model.PriceBar) (high, low float64, err error) {
	return trailingRange(bars, tradingDaysPerMonth)
}

func trailingRange(bars []model.PriceBar, n int) (high, low float64, err error) {
	if len(bars) == 0 {
		return 0, 0, errors.New("no daily bars provided")
	}
	start := max(len(bars)-n, 0)
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, b := range bars[start:] {
		high = math.Max(high, b.High)
		low = math.Min(low, b.Low)
	}
	return high, low, nil
}

// Calculate52WeekPosition returns where the current price sits within the 52-week range (0.0~1.0).
func Calculate52WeekPosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	return math.Min(math.Max(pos, 0), 1), nil
}
