package collector

import (
	"context"

	"MiningPulse/internal/model"
)

// Fetcher defines the interface for fetching recent market data.
type Fetcher interface {
	// FetchDailyBars returns at most days recent daily bars, ascending by date.
	FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.PriceBar, error)
	Name() string
}
