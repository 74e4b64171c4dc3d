package analysis

import (
	"time"

	"MiningPulse/internal/dividend"
	"MiningPulse/internal/model"
)

// InstrumentResult is everything derived from one instrument's tables for one request.
type InstrumentResult struct {
	Symbol          string                 `json:"symbol"`
	Name            string                 `json:"name"`
	Window          string                 `json:"window"`
	From            time.Time              `json:"from"`
	To              time.Time              `json:"to"`
	Bars            []model.PriceBar       `json:"bars"`
	MovingAverages  []model.DerivedSeries  `json:"moving_averages"`
	Change          model.DerivedSeries    `json:"change"`
	ChangeStats     model.Describe         `json:"change_stats"`
	RSI             model.DerivedSeries    `json:"rsi"`
	Volume          *model.DerivedSeries   `json:"volume,omitempty"`
	Risk            model.RiskMetrics      `json:"risk"`
	Summary         model.PriceSummary     `json:"summary"`
	CloseStats      model.Describe         `json:"close_stats"`
	OHLCV           model.Matrix           `json:"ohlcv_correlation"`
	Signal          *model.Signal          `json:"signal,omitempty"`
	Dividends       []model.DividendRecord `json:"dividends,omitempty"`
	DividendSummary *model.DividendSummary `json:"dividend_summary,omitempty"`
	Warnings        []string               `json:"warnings,omitempty"`
}

// ComparisonResult lines instruments up against each other over one window.
type ComparisonResult struct {
	Window            string                       `json:"window"`
	Instruments       []*InstrumentResult          `json:"instruments"`
	AlignedDays       int                          `json:"aligned_days"`
	PriceCorrelation  model.Matrix                 `json:"price_correlation"`
	ReturnCorrelation model.Matrix                 `json:"return_correlation"`
	Risk              map[string]model.RiskMetrics `json:"risk"`
	Change            map[string]model.Describe    `json:"change"`
	Dividends         []dividend.Row               `json:"dividends,omitempty"`
	Warnings          []string                     `json:"warnings,omitempty"`
}
