package calculator

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"MiningPulse/internal/model"

	"github.com/guregu/null/v5"
)

var ErrMisaligned = errors.New("series have different lengths")

// Pearson returns the correlation of x and y, absent when either has zero
// variance or there are fewer than two observations.
func Pearson(x, y []float64) null.Float {
	n := len(x)
	if n != len(y) || n < 2 {
		return null.Float{}
	}
	mx, my := mean(x), mean(y)
	var sxy, sxx, syy float64
	for i := 0; i < n; i++ {
		dx, dy := x[i]-mx, y[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return null.Float{}
	}
	r := sxy / math.Sqrt(sxx*syy)
	return null.FloatFrom(math.Max(-1, math.Min(1, r)))
}

// CorrelationMatrix computes pairwise Pearson correlations. Labels are sorted.
// Every series must have the same length. The diagonal is 1 unless the series
// is degenerate (constant or too short), in which case its row and column are absent.
func CorrelationMatrix(series map[string][]float64) (model.Matrix, error) {
	labels := make([]string, 0, len(series))
	for name := range series {
		labels = append(labels, name)
	}
	sort.Strings(labels)

	n := -1
	for _, name := range labels {
		if n >= 0 && len(series[name]) != n {
			return model.Matrix{}, fmt.Errorf("%w: %s has %d values, want %d", ErrMisaligned, name, len(series[name]), n)
		}
		n = len(series[name])
	}

	values := make([][]null.Float, len(labels))
	for i := range labels {
		values[i] = make([]null.Float, len(labels))
	}
	for i, a := range labels {
		for j := i; j < len(labels); j++ {
			r := Pearson(series[a], series[labels[j]])
			if i == j && r.Valid {
				r = null.FloatFrom(1)
			}
			values[i][j] = r
			values[j][i] = r
		}
	}
	return model.Matrix{Labels: labels, Values: values}, nil
}

// AlignCloses inner-joins several price tables on date and returns the shared
// dates plus each instrument's closes on those dates.
func AlignCloses(tables map[string][]model.PriceBar) ([]time.Time, map[string][]float64) {
	counts := make(map[time.Time]int)
	closes := make(map[string]map[time.Time]float64, len(tables))
	for name, bars := range tables {
		byDate := make(map[time.Time]float64, len(bars))
		for _, b := range bars {
			d := model.CalendarDate(b.Date)
			if _, dup := byDate[d]; !dup {
				counts[d]++
			}
			byDate[d] = b.Close
		}
		closes[name] = byDate
	}

	var dates []time.Time
	for d, c := range counts {
		if c == len(tables) {
			dates = append(dates, d)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	out := make(map[string][]float64, len(tables))
	for name, byDate := range closes {
		col := make([]float64, len(dates))
		for i, d := range dates {
			col[i] = byDate[d]
		}
		out[name] = col
	}
	return dates, out
}

// OHLCVCorrelation correlates the five columns of one price table.
func OHLCVCorrelation(bars []model.PriceBar) model.Matrix {
	cols := map[string][]float64{
		"Open":   make([]float64, len(bars)),
		"High":   make([]float64, len(bars)),
		"Low":    make([]float64, len(bars)),
		"Close":  make([]float64, len(bars)),
		"Volume": make([]float64, len(bars)),
	}
	for i, b := range bars {
		cols["Open"][i] = b.Open
		cols["High"][i] = b.High
		cols["Low"][i] = b.Low
		cols["Close"][i] = b.Close
		cols["Volume"][i] = float64(b.Volume)
	}
	// Columns of one table always share a length.
	m, _ := CorrelationMatrix(cols)
	return m
}
