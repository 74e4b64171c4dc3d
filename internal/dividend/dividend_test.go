package dividend

import (
	"testing"

	"MiningPulse/internal/model"

	"github.com/guregu/null/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(year int, amount string, yield, avgClose float64) model.DividendRecord {
	return model.DividendRecord{Year: year, Amount: decimal.RequireFromString(amount), YieldPercentage: yield, AverageClose: null.FloatFrom(avgClose)}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]model.DividendRecord{
		rec(2021, "100.10", 5.0, 2000),
		rec(2022, "250.20", 12.5, 2000),
		rec(2023, "149.70", 8.0, 2600),
	})

	assert.Equal(t, 3, s.Years)
	assert.Equal(t, 2021, s.FirstYear)
	assert.Equal(t, 2023, s.LastYear)
	assert.True(t, decimal.RequireFromString("500").Equal(s.TotalAmount), s.TotalAmount.String())
	assert.True(t, decimal.RequireFromString("166.6667").Equal(s.MeanAmount), s.MeanAmount.String())
	assert.True(t, decimal.RequireFromString("250.2").Equal(s.MaxAmount))
	assert.InDelta(t, 8.5, s.MeanYield, 1e-12)
	assert.Equal(t, 12.5, s.MaxYield)
	assert.Equal(t, 2022, s.BestYieldYear)
	require.True(t, s.MeanClose.Valid)
	assert.InDelta(t, 2200.0, s.MeanClose.Float64, 1e-9)
}

func TestSummarize_SkipsUnreadableClose(t *testing.T) {
	missing := rec(2022, "250", 12.5, 0)
	missing.AverageClose = null.Float{}
	s := Summarize([]model.DividendRecord{rec(2021, "100", 5, 2000), missing, rec(2023, "150", 8, 2600)})
	assert.Equal(t, 3, s.Years)
	require.True(t, s.MeanClose.Valid)
	assert.InDelta(t, 2300.0, s.MeanClose.Float64, 1e-9)

	none := Summarize([]model.DividendRecord{missing})
	assert.False(t, none.MeanClose.Valid)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.Years)
	assert.True(t, s.TotalAmount.IsZero())
}

func TestCombine(t *testing.T) {
	rows := Combine(map[string][]model.DividendRecord{
		"PTBA": {rec(2022, "1", 1, 1), rec(2021, "2", 2, 2)},
		"ADRO": {rec(2022, "3", 3, 3)},
	})
	require.Len(t, rows, 3)
	assert.Equal(t, 2021, rows[0].Year)
	assert.Equal(t, "ADRO", rows[1].Symbol)
	assert.Equal(t, "PTBA", rows[2].Symbol)
}

func TestSince(t *testing.T) {
	got := Since([]model.DividendRecord{rec(2019, "1", 1, 1), rec(2020, "1", 1, 1), rec(2021, "1", 1, 1)}, 2020)
	assert.Len(t, got, 2)
}
