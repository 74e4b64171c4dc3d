package recorder

import (
	"context"

	"MiningPulse/internal/model"
)

// Run statuses.
const (
	StatusRunning = "RUNNING"
	StatusOK      = "OK"
	StatusFailed  = "FAILED"
)

// Recorder persists job runs and the snapshots they produce.
type Recorder interface {
	// StartRun opens a run log entry and returns its id.
	StartRun(ctx context.Context, job string) (string, error)
	FinishRun(ctx context.Context, runID string, runErr error) error
	RecordQuotes(ctx context.Context, runID string, quotes []model.Quote) error
	RecordRisk(ctx context.Context, runID, window string, risk map[string]model.RiskMetrics) error
	Close() error
}
