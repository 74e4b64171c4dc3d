package recorder

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"MiningPulse/internal/model"

	"github.com/google/uuid"
	"github.com/guregu/null/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "pulse.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestSQLiteRecorder_RunLifecycle(t *testing.T) {
	r := openTestRecorder(t)
	ctx := context.Background()

	ok, err := r.StartRun(ctx, "quotes")
	require.NoError(t, err)
	_, err = uuid.Parse(ok)
	require.NoError(t, err)
	require.NoError(t, r.FinishRun(ctx, ok, nil))

	failed, err := r.StartRun(ctx, "daily_report")
	require.NoError(t, err)
	require.NoError(t, r.FinishRun(ctx, failed, errors.New("telegram down")))

	var status string
	var msg *string
	require.NoError(t, r.db.QueryRow(`SELECT status, error FROM runs WHERE id = ?`, ok).Scan(&status, &msg))
	assert.Equal(t, StatusOK, status)
	assert.Nil(t, msg)

	require.NoError(t, r.db.QueryRow(`SELECT status, error FROM runs WHERE id = ?`, failed).Scan(&status, &msg))
	assert.Equal(t, StatusFailed, status)
	require.NotNil(t, msg)
	assert.Equal(t, "telegram down", *msg)

	assert.Error(t, r.FinishRun(ctx, uuid.NewString(), nil))
}

func TestSQLiteRecorder_Quotes(t *testing.T) {
	r := openTestRecorder(t)
	ctx := context.Background()
	t0 := time.Date(2024, 6, 28, 9, 0, 0, 0, time.UTC)

	run, err := r.StartRun(ctx, "quotes")
	require.NoError(t, err)
	require.NoError(t, r.RecordQuotes(ctx, run, []model.Quote{
		{Symbol: "ADRO", Price: 2500, ChangePct: 1.2, Volume: 1000, Available: true, Source: "yahoo", FetchedAt: t0},
		{Symbol: "PTBA", Available: false, Message: "data unavailable: timeout", FetchedAt: t0},
	}))
	require.NoError(t, r.RecordQuotes(ctx, run, []model.Quote{
		{Symbol: "ADRO", Price: 2550, Available: true, Source: "yahoo", FetchedAt: t0.Add(5 * time.Minute)},
	}))

	latest, err := r.LatestQuotes(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "ADRO", latest[0].Symbol)
	assert.Equal(t, 2550.0, latest[0].Price)
	assert.True(t, latest[0].Available)
	assert.Equal(t, t0.Add(5*time.Minute).Unix(), latest[0].FetchedAt.Unix())
	assert.Equal(t, "PTBA", latest[1].Symbol)
	assert.False(t, latest[1].Available)
	assert.Equal(t, "data unavailable: timeout", latest[1].Message)

	var nulls int
	require.NoError(t, r.db.QueryRow(`SELECT COUNT(*) FROM quote_snapshots WHERE symbol = 'PTBA' AND price IS NULL`).Scan(&nulls))
	assert.Equal(t, 1, nulls)
}

func TestSQLiteRecorder_RiskKeepsAbsentAsNull(t *testing.T) {
	r := openTestRecorder(t)
	ctx := context.Background()

	run, err := r.StartRun(ctx, "weekly_comparison")
	require.NoError(t, err)
	require.NoError(t, r.RecordRisk(ctx, run, "1 year", map[string]model.RiskMetrics{
		"ITMG": {Observations: 240, AnnualReturnPct: null.FloatFrom(12.5), SharpeRatio: null.FloatFrom(0.41)},
		"ANTM": {},
	}))

	var count int
	require.NoError(t, r.db.QueryRow(`SELECT COUNT(*) FROM risk_snapshots WHERE run_id = ?`, run).Scan(&count))
	assert.Equal(t, 2, count)

	var sharpe *float64
	require.NoError(t, r.db.QueryRow(`SELECT sharpe_ratio FROM risk_snapshots WHERE symbol = 'ANTM'`).Scan(&sharpe))
	assert.Nil(t, sharpe)
	require.NoError(t, r.db.QueryRow(`SELECT sharpe_ratio FROM risk_snapshots WHERE symbol = 'ITMG'`).Scan(&sharpe))
	require.NotNil(t, sharpe)
	assert.InDelta(t, 0.41, *sharpe, 1e-12)
}

func TestNoopRecorder(t *testing.T) {
	var rec Recorder = NewNoopRecorder()
	ctx := context.Background()
	a, err := rec.StartRun(ctx, "x")
	require.NoError(t, err)
	b, _ := rec.StartRun(ctx, "x")
	assert.NotEqual(t, a, b)
	assert.NoError(t, rec.RecordQuotes(ctx, a, nil))
	assert.NoError(t, rec.FinishRun(ctx, a, errors.New("ignored")))
	assert.NoError(t, rec.Close())
}

var _ Recorder = (*SQLiteRecorder)(nil)
