package model

import (
	"github.com/guregu/null/v5"
	"github.com/shopspring/decimal"
)

// DividendRecord is one year of an instrument's dividend table. AverageClose
// is absent when the cell could not be read.
type DividendRecord struct {
	Year            int             `json:"year"`
	Amount          decimal.Decimal `json:"amount"`
	YieldPercentage float64         `json:"yield_percentage"`
	AverageClose    null.Float      `json:"average_close"`
}

// DividendSummary aggregates an instrument's dividend history.
type DividendSummary struct {
	Years         int             `json:"years"`
	FirstYear     int             `json:"first_year"`
	LastYear      int             `json:"last_year"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	MeanAmount    decimal.Decimal `json:"mean_amount"`
	MaxAmount     decimal.Decimal `json:"max_amount"`
	MeanYield     float64         `json:"mean_yield"`
	MaxYield      float64         `json:"max_yield"`
	BestYieldYear int             `json:"best_yield_year"`
	MeanClose     null.Float      `json:"mean_close"`
}
