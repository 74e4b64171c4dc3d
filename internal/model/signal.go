package model

import "github.com/guregu/null/v5"

// RSIZone classifies the latest RSI reading.
type RSIZone string

const (
	ZoneOversold   RSIZone = "OVERSOLD"
	ZoneOverbought RSIZone = "OVERBOUGHT"
	ZoneNeutral    RSIZone = "NEUTRAL"
	ZoneUnknown    RSIZone = "UNKNOWN"
)

// Trend classifies the alignment of price and moving averages.
type Trend string

const (
	TrendBullish  Trend = "BULLISH"
	TrendBearish  Trend = "BEARISH"
	TrendSideways Trend = "SIDEWAYS"
	TrendUnknown  Trend = "UNKNOWN"
)

// Snapshot holds the latest indicator readings the signal engine scores.
type Snapshot struct {
	Symbol       string
	CurrentPrice float64
	MAShort      null.Float
	MALong       null.Float
	RSI          null.Float
	High52w      float64
	Low52w       float64
	Position52w  null.Float // 0.0 ~ 1.0
	High30d      float64
	Low30d       float64
}

// FactorScore represents a single factor's scoring result.
type FactorScore struct {
	Name       string  `json:"name"`
	RawScore   float64 `json:"raw_score"`
	Weight     float64 `json:"weight"`
	Weighted   float64 `json:"weighted"`
	Commentary string  `json:"commentary"`
}

// Signal is the output of the strategy engine. Positive scores lean oversold.
type Signal struct {
	Factors    []FactorScore `json:"factors"`
	TotalScore float64       `json:"total_score"`
	Label      string        `json:"label"`
	Zone       RSIZone       `json:"rsi_zone"`
	Trend      Trend         `json:"trend"`
	WarningMsg string        `json:"warning,omitempty"`
}
