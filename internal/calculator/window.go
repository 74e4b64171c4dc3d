package calculator

import (
	"sort"
	"time"

	"MiningPulse/internal/model"
)

// FilterWindow keeps the bars inside window, resolved against now.
// Bars must be ascending by date; the result is a contiguous copy of the input.
// An invalid window is rejected before any filtering.
func FilterWindow(bars []model.PriceBar, window model.AnalysisWindow, now time.Time) ([]model.PriceBar, error) {
	start, end, err := window.Bounds(now)
	if err != nil {
		return nil, err
	}

	lo := 0
	if !start.IsZero() {
		lo = sort.Search(len(bars), func(i int) bool {
			return !model.CalendarDate(bars[i].Date).Before(start)
		})
	}
	hi := len(bars)
	if !end.IsZero() {
		hi = sort.Search(len(bars), func(i int) bool {
			return model.CalendarDate(bars[i].Date).After(end)
		})
	}
	if lo >= hi {
		return []model.PriceBar{}, nil
	}

	out := make([]model.PriceBar, hi-lo)
	copy(out, bars[lo:hi])
	return out, nil
}
