package recorder

import (
	"context"

	"MiningPulse/internal/model"

	"github.com/google/uuid"
)

// NoopRecorder is used when SQLite is not configured. Run ids are still unique.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) StartRun(context.Context, string) (string, error) {
	return uuid.NewString(), nil
}

func (n *NoopRecorder) FinishRun(context.Context, string, error) error { return nil }

func (n *NoopRecorder) RecordQuotes(context.Context, string, []model.Quote) error { return nil }

func (n *NoopRecorder) RecordRisk(context.Context, string, string, map[string]model.RiskMetrics) error {
	return nil
}

func (n *NoopRecorder) Close() error { return nil }
