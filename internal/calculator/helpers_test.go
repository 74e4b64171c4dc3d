package calculator

import (
	"time"

	"MiningPulse/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// dailyBars builds one bar per calendar day starting at start.
func dailyBars(start time.Time, closes ...float64) []model.PriceBar {
	bars := make([]model.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = model.PriceBar{
			Date:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c * 1.01,
			Low:    c * 0.99,
			Close:  c,
			Volume: int64(1000 * (i + 1)),
		}
	}
	return bars
}

func barsOn(dates []time.Time, closes []float64) []model.PriceBar {
	bars := make([]model.PriceBar, len(dates))
	for i := range dates {
		bars[i] = model.PriceBar{Date: dates[i], Open: closes[i], High: closes[i], Low: closes[i], Close: closes[i], Volume: 100}
	}
	return bars
}
