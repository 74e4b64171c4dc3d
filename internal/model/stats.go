package model

import "github.com/guregu/null/v5"

// RiskMetrics are annualized figures over a window's daily returns.
// Percent fields are already multiplied by 100.
type RiskMetrics struct {
	Observations        int        `json:"observations"`
	AnnualReturnPct     null.Float `json:"annual_return_pct"`
	AnnualVolatilityPct null.Float `json:"annual_volatility_pct"`
	SharpeRatio         null.Float `json:"sharpe_ratio"`
	MaxDrawdownPct      null.Float `json:"max_drawdown_pct"`
}

// Describe is a descriptive summary of a sample, absent values skipped.
type Describe struct {
	Count  int        `json:"count"`
	Mean   null.Float `json:"mean"`
	Median null.Float `json:"median"`
	Std    null.Float `json:"std"`
	Min    null.Float `json:"min"`
	Max    null.Float `json:"max"`
}

// PriceSummary condenses a filtered price table.
type PriceSummary struct {
	Bars        int        `json:"bars"`
	LastClose   null.Float `json:"last_close"`
	Highest     null.Float `json:"highest"`
	Lowest      null.Float `json:"lowest"`
	MeanVolume  null.Float `json:"mean_volume"`
	LastVolume  int64      `json:"last_volume"`
	High52w     null.Float `json:"high_52w"`
	Low52w      null.Float `json:"low_52w"`
	Position52w null.Float `json:"position_52w"`
}

// Matrix is a square labelled matrix, such as a correlation table.
type Matrix struct {
	Labels []string       `json:"labels"`
	Values [][]null.Float `json:"values"`
}

// At returns the entry for a pair of labels.
func (m Matrix) At(row, col string) null.Float {
	r, c := -1, -1
	for i, l := range m.Labels {
		if l == row {
			r = i
		}
		if l == col {
			c = i
		}
	}
	if r < 0 || c < 0 {
		return null.Float{}
	}
	return m.Values[r][c]
}
