package calculator

import (
	"testing"
	"time"

	"MiningPulse/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterWindow_Preset(t *testing.T) {
	bars := dailyBars(day(2024, 1, 1), make([]float64, 200)...)
	now := time.Date(2024, 7, 18, 15, 0, 0, 0, time.UTC)

	got, err := FilterWindow(bars, model.PresetWindow(model.Preset1M), now)
	require.NoError(t, err)
	require.NotEmpty(t, got)

	assert.Equal(t, day(2024, 6, 18), got[0].Date)
	assert.Equal(t, bars[len(bars)-1], got[len(got)-1])
	// contiguous suffix of the input
	assert.Equal(t, bars[len(bars)-len(got):], got)
}

func TestFilterWindow_MaxIsNoOp(t *testing.T) {
	bars := dailyBars(day(2010, 3, 1), 10, 11, 12, 13)
	got, err := FilterWindow(bars, model.PresetWindow(model.PresetAll), time.Now())
	require.NoError(t, err)
	assert.Equal(t, bars, got)

	got[0].Close = 99
	assert.Equal(t, 10.0, bars[0].Close, "result must not alias the input")
}

func TestFilterWindow_CustomInclusive(t *testing.T) {
	bars := dailyBars(day(2024, 1, 1), 1, 2, 3, 4, 5, 6, 7)
	w := model.CustomWindow(day(2024, 1, 2), day(2024, 1, 4))

	got, err := FilterWindow(bars, w, time.Now())
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []float64{2, 3, 4}, model.Closes(got))
}

func TestFilterWindow_CustomIgnoresClock(t *testing.T) {
	bars := dailyBars(day(2024, 1, 1), 1, 2, 3)
	bars[2].Date = bars[2].Date.Add(17 * time.Hour)
	w := model.CustomWindow(day(2024, 1, 3), day(2024, 1, 3))

	got, err := FilterWindow(bars, w, time.Now())
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestFilterWindow_EmptyResult(t *testing.T) {
	bars := dailyBars(day(2024, 1, 1), 1, 2, 3)
	got, err := FilterWindow(bars, model.CustomWindow(day(2023, 1, 1), day(2023, 2, 1)), time.Now())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFilterWindow_RejectsReversedRange(t *testing.T) {
	bars := dailyBars(day(2024, 1, 1), 1, 2, 3)
	got, err := FilterWindow(bars, model.CustomWindow(day(2024, 6, 1), day(2024, 1, 1)), time.Now())
	assert.ErrorIs(t, err, model.ErrInvalidWindow)
	assert.Nil(t, got)
}
