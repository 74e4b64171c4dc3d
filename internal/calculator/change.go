package calculator

import (
	"time"

	"MiningPulse/internal/model"

	"github.com/guregu/null/v5"
)

// PercentChange returns the period-over-period change of closes, in percent.
//
// Daily compares consecutive trading days. Weekly, monthly and yearly first
// reduce the bars to the last close of each calendar bucket (weeks end on
// Sunday); each point is dated with the bucket's last trading date. The first
// point is always absent.
func PercentChange(bars []model.PriceBar, period model.Period) (model.DerivedSeries, error) {
	sampled, err := Resample(bars, period)
	if err != nil {
		return model.DerivedSeries{}, err
	}
	values := percentChanges(model.Closes(sampled))
	return model.NewSeries("Change "+period.Label(), model.Dates(sampled), values), nil
}

func percentChanges(closes []float64) []null.Float {
	out := make([]null.Float, len(closes))
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		out[i] = null.FloatFrom((closes[i]/closes[i-1] - 1) * 100)
	}
	return out
}

// LastPercentChange is the change between the final two closes, absent with fewer than two.
func LastPercentChange(closes []float64) null.Float {
	n := len(closes)
	if n < 2 || closes[n-2] == 0 {
		return null.Float{}
	}
	return null.FloatFrom((closes[n-1]/closes[n-2] - 1) * 100)
}

// PercentChangeWithZeroFallback behaves like LastPercentChange but reports
// exactly zero when only one observation exists. Live quotes use it so a
// fresh listing or a one-row history shows 0% rather than nothing.
func PercentChangeWithZeroFallback(closes []float64) null.Float {
	if len(closes) == 1 {
		return null.FloatFrom(0)
	}
	return LastPercentChange(closes)
}

// Resample reduces daily bars to one bar per calendar bucket: first open,
// highest high, lowest low, last close, summed volume, dated by the last
// trading day in the bucket. Daily returns a copy of the input.
func Resample(bars []model.PriceBar, period model.Period) ([]model.PriceBar, error) {
	key, err := bucketKey(period)
	if err != nil {
		return nil, err
	}
	if period == model.Daily {
		out := make([]model.PriceBar, len(bars))
		copy(out, bars)
		return out, nil
	}
	if len(bars) == 0 {
		return []model.PriceBar{}, nil
	}

	var out []model.PriceBar
	cur := bars[0]
	curKey := key(bars[0].Date)
	for _, b := range bars[1:] {
		k := key(b.Date)
		if k != curKey {
			out = append(out, cur)
			cur = b
			curKey = k
			continue
		}
		cur.High = max(cur.High, b.High)
		cur.Low = min(cur.Low, b.Low)
		cur.Close = b.Close
		cur.Volume += b.Volume
		cur.Date = b.Date
	}
	return append(out, cur), nil
}

func bucketKey(period model.Period) (func(time.Time) int, error) {
	switch period {
	case model.Daily:
		return func(t time.Time) int {
			y, m, d := t.Date()
			return y*10000 + int(m)*100 + d
		}, nil
	case model.Weekly:
		return func(t time.Time) int {
			// Key each Monday-to-Sunday week by its Sunday.
			end := t.AddDate(0, 0, (7-int(t.Weekday()))%7)
			y, m, d := end.Date()
			return y*10000 + int(m)*100 + d
		}, nil
	case model.Monthly:
		return func(t time.Time) int { return t.Year()*100 + int(t.Month()) }, nil
	case model.Yearly:
		return func(t time.Time) int { return t.Year() }, nil
	}
	return nil, model.ErrUnknownPeriod
}
