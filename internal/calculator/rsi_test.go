package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRSI_KnownValues(t *testing.T) {
	// period 2: alpha = 0.5, adjusted weights 1, 0.5, 0.25, ...
	got, err := RSI([]float64{1, 2, 3, 2, 3}, 2)
	require.NoError(t, err)
	require.Len(t, got, 5)

	assert.False(t, got[0].Valid)
	assert.False(t, got[1].Valid)
	assert.InDelta(t, 100.0, got[2].Float64, 1e-9)
	assert.InDelta(t, 300.0/7, got[3].Float64, 1e-9)
	assert.InDelta(t, 220.0/3, got[4].Float64, 1e-9)
}

func TestRSI_AbsentPrefixAndBounds(t *testing.T) {
	prices := make([]float64, 120)
	for i := range prices {
		prices[i] = 100 + 10*math.Sin(float64(i)/5) + float64(i%7)
	}
	got, err := RSI(prices, DefaultRSIPeriod)
	require.NoError(t, err)

	for i, v := range got {
		if i < DefaultRSIPeriod {
			assert.False(t, v.Valid, "index %d should be absent", i)
			continue
		}
		require.True(t, v.Valid, "index %d should be defined", i)
		assert.GreaterOrEqual(t, v.Float64, 0.0)
		assert.LessOrEqual(t, v.Float64, 100.0)
	}
}

func TestRSI_OnlyGainsIsHundred(t *testing.T) {
	got, err := RSI([]float64{1, 2, 3, 4, 5, 6}, 3)
	require.NoError(t, err)
	assert.Equal(t, 100.0, got[5].Float64)
}

func TestRSI_OnlyLossesIsZero(t *testing.T) {
	got, err := RSI([]float64{6, 5, 4, 3, 2, 1}, 3)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got[5].Float64)
}

func TestRSI_FlatIsNeutral(t *testing.T) {
	got, err := RSI([]float64{5, 5, 5, 5}, 2)
	require.NoError(t, err)
	assert.Equal(t, 50.0, got[3].Float64)
}

func TestRSI_ShortHistory(t *testing.T) {
	got, err := RSI([]float64{100}, DefaultRSIPeriod)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].Valid)

	got, err = RSI(nil, DefaultRSIPeriod)
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.False(t, LatestRSI([]float64{1, 2, 3}, DefaultRSIPeriod).Valid)
}

func TestRSI_RejectsNonPositivePeriod(t *testing.T) {
	_, err := RSI([]float64{1, 2}, 0)
	assert.ErrorIs(t, err, ErrNonPositivePeriod)
}
