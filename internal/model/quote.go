package model

import "time"

// Quote is a live snapshot of one instrument. When Available is false only
// Symbol, Message and FetchedAt are meaningful.
type Quote struct {
	Symbol         string    `json:"symbol"`
	Ticker         string    `json:"ticker"`
	Price          float64   `json:"price"`
	ChangePct      float64   `json:"change_pct"`
	MonthChangePct float64   `json:"month_change_pct"`
	Volume         int64     `json:"volume"`
	DayHigh        float64   `json:"day_high"`
	DayLow         float64   `json:"day_low"`
	Available      bool      `json:"available"`
	Message        string    `json:"message,omitempty"`
	Source         string    `json:"source,omitempty"`
	FetchedAt      time.Time `json:"fetched_at"`
}
