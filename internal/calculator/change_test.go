package calculator

import (
	"testing"
	"time"

	"MiningPulse/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentChange_Daily(t *testing.T) {
	bars := dailyBars(day(2024, 1, 1), 100, 102, 101, 105)
	got, err := PercentChange(bars, model.Daily)
	require.NoError(t, err)
	require.Len(t, got.Points, 4)

	assert.False(t, got.Points[0].Value.Valid)
	assert.InDelta(t, 2.0, got.Points[1].Value.Float64, 1e-9)
	assert.InDelta(t, -0.98039, got.Points[2].Value.Float64, 1e-4)
	assert.InDelta(t, 3.96039, got.Points[3].Value.Float64, 1e-4)
}

func TestPercentChange_RoundTrip(t *testing.T) {
	closes := []float64{50, 52.5, 49.1, 49.1, 60.3, 58}
	bars := dailyBars(day(2024, 1, 1), closes...)
	got, err := PercentChange(bars, model.Daily)
	require.NoError(t, err)

	for i := 1; i < len(closes); i++ {
		pct := got.Points[i].Value.Float64
		assert.InDelta(t, closes[i], closes[i-1]*(1+pct/100), 1e-9)
	}
}

func TestPercentChange_SingleRowIsAbsent(t *testing.T) {
	got, err := PercentChange(dailyBars(day(2024, 1, 1), 100), model.Daily)
	require.NoError(t, err)
	require.Len(t, got.Points, 1)
	assert.False(t, got.Points[0].Value.Valid)
}

func TestPercentChange_Weekly(t *testing.T) {
	// Three Monday-to-Friday weeks starting Monday 2024-01-01.
	var dates []time.Time
	var closes []float64
	for w := 0; w < 3; w++ {
		for d := 0; d < 5; d++ {
			dates = append(dates, day(2024, 1, 1+7*w+d))
			closes = append(closes, float64(100+10*w+d))
		}
	}
	got, err := PercentChange(barsOn(dates, closes), model.Weekly)
	require.NoError(t, err)

	require.Len(t, got.Points, 3)
	assert.Equal(t, 2, got.Defined())
	assert.Equal(t, day(2024, 1, 5), got.Points[0].Date)
	assert.Equal(t, day(2024, 1, 12), got.Points[1].Date)
	assert.InDelta(t, (114.0/104-1)*100, got.Points[1].Value.Float64, 1e-9)
}

func TestPercentChange_WeekEndsOnSunday(t *testing.T) {
	dates := []time.Time{day(2024, 1, 6), day(2024, 1, 7), day(2024, 1, 8)} // Sat, Sun, Mon
	got, err := PercentChange(barsOn(dates, []float64{10, 11, 12}), model.Weekly)
	require.NoError(t, err)
	require.Len(t, got.Points, 2)
	assert.Equal(t, day(2024, 1, 7), got.Points[0].Date)
}

func TestPercentChange_MonthlyAndYearlyBucketCount(t *testing.T) {
	bars := dailyBars(day(2022, 11, 20), make([]float64, 500)...)
	for i := range bars {
		bars[i].Close = 100 + float64(i)
	}

	monthly, err := PercentChange(bars, model.Monthly)
	require.NoError(t, err)
	monthBuckets := map[int]bool{}
	for _, b := range bars {
		monthBuckets[b.Date.Year()*100+int(b.Date.Month())] = true
	}
	assert.Len(t, monthly.Points, len(monthBuckets))
	assert.Equal(t, len(monthBuckets)-1, monthly.Defined())

	yearly, err := PercentChange(bars, model.Yearly)
	require.NoError(t, err)
	assert.Len(t, yearly.Points, 3)
	assert.Equal(t, 2, yearly.Defined())
	assert.Equal(t, day(2022, 12, 31), yearly.Points[0].Date)
}

func TestPercentChange_UnknownPeriod(t *testing.T) {
	_, err := PercentChange(dailyBars(day(2024, 1, 1), 1, 2), model.Period("H"))
	assert.ErrorIs(t, err, model.ErrUnknownPeriod)
}

func TestPercentChangeWithZeroFallback(t *testing.T) {
	assert.False(t, PercentChangeWithZeroFallback(nil).Valid)

	single := PercentChangeWithZeroFallback([]float64{4200})
	require.True(t, single.Valid)
	assert.Equal(t, 0.0, single.Float64)

	two := PercentChangeWithZeroFallback([]float64{100, 110})
	assert.InDelta(t, 10.0, two.Float64, 1e-9)

	assert.False(t, LastPercentChange([]float64{4200}).Valid)
}

func TestResample_AggregatesOHLCV(t *testing.T) {
	bars := []model.PriceBar{
		{Date: day(2024, 1, 30), Open: 10, High: 12, Low: 9, Close: 11, Volume: 5},
		{Date: day(2024, 1, 31), Open: 11, High: 15, Low: 10, Close: 14, Volume: 7},
		{Date: day(2024, 2, 1), Open: 14, High: 14, Low: 8, Close: 9, Volume: 1},
	}
	got, err := Resample(bars, model.Monthly)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, model.PriceBar{Date: day(2024, 1, 31), Open: 10, High: 15, Low: 9, Close: 14, Volume: 12}, got[0])
	assert.Equal(t, bars[2], got[1])
}
