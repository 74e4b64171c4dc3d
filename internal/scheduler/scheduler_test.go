package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"MiningPulse/internal/analysis"
	"MiningPulse/internal/metrics"
	"MiningPulse/internal/model"

	"github.com/guregu/null/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	failing map[string]bool
}

func (f *fakeEngine) Instruments() []model.Instrument {
	return []model.Instrument{{Code: "ADRO"}, {Code: "PTBA"}}
}

func (f *fakeEngine) Analyze(_ context.Context, symbol string, req analysis.Request) (*analysis.InstrumentResult, error) {
	symbol = strings.ToUpper(symbol)
	if f.failing[symbol] {
		return nil, errors.New("price table unavailable")
	}
	d := time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC)
	return &analysis.InstrumentResult{
		Symbol: symbol,
		Window: req.Window.Label(),
		Bars:   []model.PriceBar{{Date: d, Close: 2500}},
		RSI:    model.NewSeries("RSI", []time.Time{d}, []null.Float{null.FloatFrom(45)}),
		Signal: &model.Signal{Label: "Fair value", Zone: model.ZoneNeutral, Trend: model.TrendSideways},
	}, nil
}

func (f *fakeEngine) Compare(_ context.Context, req analysis.Request) (*analysis.ComparisonResult, error) {
	return &analysis.ComparisonResult{
		Window: req.Window.Label(),
		Risk:   map[string]model.RiskMetrics{"ADRO": {Observations: 10}},
	}, nil
}

type fakeQuotes struct{ calls int }

func (f *fakeQuotes) Quotes(_ context.Context, insts []model.Instrument) []model.Quote {
	f.calls++
	out := make([]model.Quote, len(insts))
	for i, inst := range insts {
		out[i] = model.Quote{Symbol: inst.Code, Price: 1000, Available: true}
	}
	return out
}

type fakeSender struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (f *fakeSender) SendWithRetry(_ context.Context, text string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, text)
	return nil
}

type runEntry struct {
	job, id string
	err     error
	quotes  int
	risk    int
}

type fakeRecorder struct {
	mu   sync.Mutex
	runs map[string]*runEntry
	seq  int
}

func (f *fakeRecorder) StartRun(_ context.Context, job string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.runs == nil {
		f.runs = make(map[string]*runEntry)
	}
	f.seq++
	id := job + "-" + string(rune('0'+f.seq))
	f.runs[id] = &runEntry{job: job, id: id}
	return id, nil
}

func (f *fakeRecorder) FinishRun(_ context.Context, id string, err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs[id].err = err
	return nil
}

func (f *fakeRecorder) RecordQuotes(_ context.Context, id string, q []model.Quote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs[id].quotes += len(q)
	return nil
}

func (f *fakeRecorder) RecordRisk(_ context.Context, id, _ string, r map[string]model.RiskMetrics) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs[id].risk += len(r)
	return nil
}

func (f *fakeRecorder) Close() error { return nil }

func newTestScheduler(q QuoteSource, s Sender, rec *fakeRecorder, m *metrics.Metrics) *Scheduler {
	sched := NewScheduler(context.Background(), &fakeEngine{failing: map[string]bool{"PTBA": true}},
		q, s, rec, m, analysis.DefaultRequest(), zerolog.Nop())
	sched.now = func() time.Time { return time.Date(2024, 6, 28, 16, 30, 0, 0, time.UTC) }
	return sched
}

func TestRunNow_Quotes(t *testing.T) {
	rec := &fakeRecorder{}
	quotes := &fakeQuotes{}
	m := metrics.New()
	s := newTestScheduler(quotes, nil, rec, m)

	require.NoError(t, s.RunNow(JobQuotes))
	assert.Equal(t, 1, quotes.calls)
	assert.Len(t, s.LastQuotes(), 2)
	run := rec.runs["quotes-1"]
	require.NotNil(t, run)
	assert.Equal(t, 2, run.quotes)
	assert.NoError(t, run.err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobRuns.WithLabelValues(JobQuotes, "ok")))
}

func TestRunNow_DailyReportSkipsFailingInstrument(t *testing.T) {
	rec := &fakeRecorder{}
	sender := &fakeSender{}
	s := newTestScheduler(&fakeQuotes{}, sender, rec, nil)

	require.NoError(t, s.RunNow(JobDailyReport))
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "daily report</b> | 2024-06-28")
	assert.Contains(t, sender.sent[0], "ADRO: Fair value")
	assert.NotContains(t, sender.sent[0], "PTBA: Fair value")
	assert.Equal(t, 2, rec.runs["daily_report-1"].quotes)
}

func TestRunNow_SendFailureMarksRunFailed(t *testing.T) {
	rec := &fakeRecorder{}
	m := metrics.New()
	s := newTestScheduler(nil, &fakeSender{err: errors.New("telegram down")}, rec, m)

	err := s.RunNow(JobWeeklyComparison)
	require.Error(t, err)
	run := rec.runs["weekly_comparison-1"]
	assert.Equal(t, 1, run.risk)
	assert.ErrorContains(t, run.err, "telegram down")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobRuns.WithLabelValues(JobWeeklyComparison, "error")))
}

func TestRunNow_UnknownJob(t *testing.T) {
	s := newTestScheduler(nil, nil, &fakeRecorder{}, nil)
	assert.Error(t, s.RunNow("monthly"))
}

func TestRegisterAll(t *testing.T) {
	s := newTestScheduler(&fakeQuotes{}, nil, &fakeRecorder{}, nil)
	require.NoError(t, s.RegisterAll("0 */5 9-16 * * 1-5", "0 30 16 * * 1-5", "0 0 8 * * 6"))
	assert.Len(t, s.Cron.Entries(), 3)

	noQuotes := newTestScheduler(nil, nil, &fakeRecorder{}, nil)
	require.NoError(t, noQuotes.RegisterAll("bad", "0 30 16 * * 1-5", "0 0 8 * * 6"))
	assert.Len(t, noQuotes.Cron.Entries(), 2)

	assert.Error(t, newTestScheduler(nil, nil, &fakeRecorder{}, nil).RegisterAll("", "not a cron", "0 0 8 * * 6"))
}

func TestHandleCommand(t *testing.T) {
	s := newTestScheduler(&fakeQuotes{}, nil, &fakeRecorder{}, nil)
	ctx := context.Background()

	assert.Contains(t, s.HandleCommand(ctx, "/summary"), "daily report")
	assert.Contains(t, s.HandleCommand(ctx, "/quotes@MiningPulseBot"), "ADRO: Rp 1,000")
	assert.Contains(t, s.HandleCommand(ctx, "/detail adro"), "<b>ADRO</b>")
	assert.Contains(t, s.HandleCommand(ctx, "/detail PTBA"), "❌ PTBA: price table unavailable")
	assert.Contains(t, s.HandleCommand(ctx, "/detail"), "Usage")
	reply := s.HandleCommand(ctx, "/detail <x>")
	assert.Contains(t, reply, "<b>&lt;X&gt;</b>")
	assert.NotContains(t, reply, "<X>")
	assert.Contains(t, s.HandleCommand(ctx, "/compare"), "Comparison")
	assert.Equal(t, helpText, s.HandleCommand(ctx, "hello"))
	assert.Equal(t, helpText, s.HandleCommand(ctx, "  "))

	disabled := newTestScheduler(nil, nil, &fakeRecorder{}, nil)
	assert.Equal(t, "Live quotes are disabled.", disabled.HandleCommand(ctx, "/quotes"))
}
