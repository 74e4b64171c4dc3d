package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"MiningPulse/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists run logs and snapshots to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger zerolog.Logger
	now    func() time.Time
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read while jobs write.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger.With().Str("component", "recorder").Logger(), now: time.Now}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.logger.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			job         TEXT NOT NULL,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER,
			status      TEXT NOT NULL,
			error       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS quote_snapshots (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id           TEXT NOT NULL,
			timestamp        INTEGER NOT NULL,
			symbol           TEXT NOT NULL,
			available        INTEGER NOT NULL,
			price            REAL,
			change_pct       REAL,
			month_change_pct REAL,
			volume           INTEGER,
			day_high         REAL,
			day_low          REAL,
			source           TEXT,
			message          TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_quotes_symbol_ts ON quote_snapshots(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS risk_snapshots (
			id                    INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id                TEXT NOT NULL,
			timestamp             INTEGER NOT NULL,
			window_label          TEXT NOT NULL,
			symbol                TEXT NOT NULL,
			observations          INTEGER,
			annual_return_pct     REAL,
			annual_volatility_pct REAL,
			sharpe_ratio          REAL,
			max_drawdown_pct      REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_risk_symbol_ts ON risk_snapshots(symbol, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) StartRun(ctx context.Context, job string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, `INSERT INTO runs (id, job, started_at, status) VALUES (?,?,?,?)`,
		id, job, r.now().Unix(), StatusRunning)
	if err != nil {
		return "", fmt.Errorf("start run %s: %w", job, err)
	}
	return id, nil
}

func (r *SQLiteRecorder) FinishRun(ctx context.Context, runID string, runErr error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	status, msg := StatusOK, sql.NullString{}
	if runErr != nil {
		status = StatusFailed
		msg = sql.NullString{String: runErr.Error(), Valid: true}
	}
	res, err := r.db.ExecContext(ctx, `UPDATE runs SET finished_at = ?, status = ?, error = ? WHERE id = ?`,
		r.now().Unix(), status, msg, runID)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", runID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish run %s: no such run", runID)
	}
	return nil
}

func (r *SQLiteRecorder) RecordQuotes(ctx context.Context, runID string, quotes []model.Quote) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO quote_snapshots
		(run_id, timestamp, symbol, available, price, change_pct, month_change_pct,
		 volume, day_high, day_low, source, message)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, q := range quotes {
		ts := q.FetchedAt
		if ts.IsZero() {
			ts = r.now()
		}
		if !q.Available {
			_, err = stmt.ExecContext(ctx, runID, ts.Unix(), q.Symbol, false,
				nil, nil, nil, nil, nil, nil, q.Source, q.Message)
		} else {
			_, err = stmt.ExecContext(ctx, runID, ts.Unix(), q.Symbol, true,
				q.Price, q.ChangePct, q.MonthChangePct, q.Volume, q.DayHigh, q.DayLow, q.Source, q.Message)
		}
		if err != nil {
			return fmt.Errorf("record quote %s: %w", q.Symbol, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) RecordRisk(ctx context.Context, runID, window string, risk map[string]model.RiskMetrics) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	symbols := make([]string, 0, len(risk))
	for s := range risk {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := r.now().Unix()
	for _, s := range symbols {
		m := risk[s]
		_, err := tx.ExecContext(ctx, `INSERT INTO risk_snapshots
			(run_id, timestamp, window_label, symbol, observations,
			 annual_return_pct, annual_volatility_pct, sharpe_ratio, max_drawdown_pct)
			VALUES (?,?,?,?,?,?,?,?,?)`,
			runID, now, window, s, m.Observations,
			m.AnnualReturnPct, m.AnnualVolatilityPct, m.SharpeRatio, m.MaxDrawdownPct,
		)
		if err != nil {
			return fmt.Errorf("record risk %s: %w", s, err)
		}
	}
	return tx.Commit()
}

// LatestQuotes returns the most recent stored snapshot per symbol, sorted by symbol.
func (r *SQLiteRecorder) LatestQuotes(ctx context.Context) ([]model.Quote, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT q.symbol, q.available, q.price, q.change_pct,
			q.month_change_pct, q.volume, q.day_high, q.day_low, q.source, q.message, q.timestamp
		FROM quote_snapshots q
		WHERE q.id = (SELECT MAX(id) FROM quote_snapshots WHERE symbol = q.symbol)
		ORDER BY q.symbol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Quote
	for rows.Next() {
		var (
			q                           model.Quote
			price, chg, mchg, high, low sql.NullFloat64
			volume                      sql.NullInt64
			source, message             sql.NullString
			ts                          int64
		)
		if err := rows.Scan(&q.Symbol, &q.Available, &price, &chg, &mchg, &volume, &high, &low, &source, &message, &ts); err != nil {
			return nil, err
		}
		q.Price, q.ChangePct, q.MonthChangePct = price.Float64, chg.Float64, mchg.Float64
		q.DayHigh, q.DayLow, q.Volume = high.Float64, low.Float64, volume.Int64
		q.Source, q.Message = source.String, message.String
		q.FetchedAt = time.Unix(ts, 0)
		out = append(out, q)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
