package model

import "time"

// PriceBar is one trading day of an instrument's price table.
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Instrument is a configured equity and where its tables live.
type Instrument struct {
	Code         string `yaml:"code" json:"code" validate:"required"`
	Name         string `yaml:"name" json:"name"`
	Ticker       string `yaml:"ticker" json:"ticker"`
	PriceFile    string `yaml:"price_file" json:"-" validate:"required"`
	DividendFile string `yaml:"dividend_file" json:"-"`
}

// QuoteTicker returns the live-feed ticker, falling back to code+suffix.
func (i Instrument) QuoteTicker(suffix string) string {
	if i.Ticker != "" {
		return i.Ticker
	}
	return i.Code + suffix
}

// PriceSeries holds the loaded tables of one instrument.
type PriceSeries struct {
	Instrument Instrument
	Bars       []PriceBar
	Dividends  []DividendRecord
	Warnings   []string
	LoadedAt   time.Time
}

// Closes extracts the close column.
func Closes(bars []PriceBar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

// Dates extracts the date column.
func Dates(bars []PriceBar) []time.Time {
	dates := make([]time.Time, len(bars))
	for i, b := range bars {
		dates[i] = b.Date
	}
	return dates
}

// CalendarDate drops the clock and zone of t, keeping the date as seen in t's own location.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
