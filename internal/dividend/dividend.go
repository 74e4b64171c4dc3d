package dividend

import (
	"sort"

	"MiningPulse/internal/model"

	"github.com/guregu/null/v5"
	"github.com/shopspring/decimal"
)

// Summarize aggregates one instrument's dividend history. An empty history
// yields a zero summary with Years == 0. MeanClose averages the readable
// closes only and is absent when there are none.
func Summarize(records []model.DividendRecord) model.DividendSummary {
	var s model.DividendSummary
	if len(records) == 0 {
		return s
	}

	s.Years = len(records)
	s.FirstYear, s.LastYear = records[0].Year, records[0].Year
	s.MaxAmount = records[0].Amount
	s.MaxYield = records[0].YieldPercentage
	s.BestYieldYear = records[0].Year

	var yieldSum, closeSum float64
	var closes int
	for _, r := range records {
		s.TotalAmount = s.TotalAmount.Add(r.Amount)
		if r.Amount.GreaterThan(s.MaxAmount) {
			s.MaxAmount = r.Amount
		}
		if r.YieldPercentage > s.MaxYield {
			s.MaxYield = r.YieldPercentage
			s.BestYieldYear = r.Year
		}
		s.FirstYear = min(s.FirstYear, r.Year)
		s.LastYear = max(s.LastYear, r.Year)
		yieldSum += r.YieldPercentage
		if r.AverageClose.Valid {
			closeSum += r.AverageClose.Float64
			closes++
		}
	}

	n := decimal.NewFromInt(int64(len(records)))
	s.MeanAmount = s.TotalAmount.DivRound(n, 4)
	s.MeanYield = yieldSum / float64(len(records))
	if closes > 0 {
		s.MeanClose = null.FloatFrom(closeSum / float64(closes))
	}
	return s
}

// Row is one instrument-year of a cross-instrument dividend table.
type Row struct {
	Year            int             `json:"year"`
	Symbol          string          `json:"symbol"`
	Amount          decimal.Decimal `json:"amount"`
	YieldPercentage float64         `json:"yield_percentage"`
	AverageClose    null.Float      `json:"average_close"`
}

// Combine flattens several instruments' histories into one table sorted by year, then symbol.
func Combine(histories map[string][]model.DividendRecord) []Row {
	var rows []Row
	for symbol, recs := range histories {
		for _, r := range recs {
			rows = append(rows, Row{
				Year:            r.Year,
				Symbol:          symbol,
				Amount:          r.Amount,
				YieldPercentage: r.YieldPercentage,
				AverageClose:    r.AverageClose,
			})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year < rows[j].Year
		}
		return rows[i].Symbol < rows[j].Symbol
	})
	return rows
}

// Since keeps records from the given year onward.
func Since(records []model.DividendRecord, year int) []model.DividendRecord {
	out := make([]model.DividendRecord, 0, len(records))
	for _, r := range records {
		if r.Year >= year {
			out = append(out, r)
		}
	}
	return out
}
