package strategy

import (
	"MiningPulse/internal/calculator"
	"MiningPulse/internal/model"

	"github.com/guregu/null/v5"
)

// BuildSnapshot gathers the latest readings from a price table.
func BuildSnapshot(symbol string, bars []model.PriceBar, shortMA, longMA, rsiPeriod int) *model.Snapshot {
	snap := &model.Snapshot{Symbol: symbol}
	if len(bars) == 0 {
		return snap
	}
	closes := model.Closes(bars)
	snap.CurrentPrice = closes[len(closes)-1]
	snap.MAShort = calculator.LatestSMA(closes, shortMA)
	snap.MALong = calculator.LatestSMA(closes, longMA)
	snap.RSI = calculator.LatestRSI(closes, rsiPeriod)

	if h, l, err := calculator.Calculate52WeekRange(bars); err == nil {
		snap.High52w, snap.Low52w = h, l
		if pos, err := calculator.Calculate52WeekPosition(snap.CurrentPrice, h, l); err == nil {
			snap.Position52w = null.FloatFrom(pos)
		}
	}
	if h, l, err := calculator.Calculate30DayRange(bars); err == nil {
		snap.High30d, snap.Low30d = h, l
	}
	return snap
}
