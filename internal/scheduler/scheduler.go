package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"MiningPulse/internal/analysis"
	"MiningPulse/internal/metrics"
	"MiningPulse/internal/model"
	"MiningPulse/internal/notifier"
	"MiningPulse/internal/recorder"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const (
	JobQuotes           = "quotes"
	JobDailyReport      = "daily_report"
	JobWeeklyComparison = "weekly_comparison"

	sendRetries = 3
)

// Analyzer is the part of the analysis engine the jobs use.
type Analyzer interface {
	Analyze(ctx context.Context, symbol string, req analysis.Request) (*analysis.InstrumentResult, error)
	Compare(ctx context.Context, req analysis.Request) (*analysis.ComparisonResult, error)
	Instruments() []model.Instrument
}

type QuoteSource interface {
	Quotes(ctx context.Context, instruments []model.Instrument) []model.Quote
}

// Sender delivers formatted reports. A nil Sender only logs them.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler manages all cron tasks and answers chat commands.
type Scheduler struct {
	Cron     *cron.Cron
	Engine   Analyzer
	Quotes   QuoteSource
	Notifier Sender
	Recorder recorder.Recorder
	Metrics  *metrics.Metrics
	Request  analysis.Request

	ctx    context.Context
	logger zerolog.Logger
	now    func() time.Time

	mu         sync.RWMutex
	lastQuotes []model.Quote
}

// NewScheduler wires the jobs. quotes and sender may be nil.
func NewScheduler(ctx context.Context, engine Analyzer, quotes QuoteSource, sender Sender,
	rec recorder.Recorder, m *metrics.Metrics, req analysis.Request, logger zerolog.Logger) *Scheduler {
	logger = logger.With().Str("component", "scheduler").Logger()
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds(), cron.WithLogger(cronLogger{logger})),
		Engine:   engine,
		Quotes:   quotes,
		Notifier: sender,
		Recorder: rec,
		Metrics:  m,
		Request:  req,
		ctx:      ctx,
		logger:   logger,
		now:      time.Now,
	}
}

// RegisterAll registers the quote refresh, daily report and weekly comparison tasks.
// The quote refresh is skipped when no quote source is configured.
func (s *Scheduler) RegisterAll(quotesCron, dailyCron, weeklyCron string) error {
	if s.Quotes != nil {
		if _, err := s.Cron.AddFunc(quotesCron, func() { s.RunNow(JobQuotes) }); err != nil {
			return fmt.Errorf("register quote task: %w", err)
		}
	}
	if _, err := s.Cron.AddFunc(dailyCron, func() { s.RunNow(JobDailyReport) }); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	if _, err := s.Cron.AddFunc(weeklyCron, func() { s.RunNow(JobWeeklyComparison) }); err != nil {
		return fmt.Errorf("register weekly task: %w", err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.Cron.Start()
	s.logger.Info().Int("jobs", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.logger.Info().Msg("scheduler stopped")
}

// RunNow executes a job immediately, logging it as a run.
func (s *Scheduler) RunNow(job string) error {
	var fn func(context.Context, string) error
	switch job {
	case JobQuotes:
		fn = s.refreshQuotes
	case JobDailyReport:
		fn = s.dailyReport
	case JobWeeklyComparison:
		fn = s.weeklyComparison
	default:
		return fmt.Errorf("unknown job %q", job)
	}

	ctx := s.ctx
	runID, err := s.Recorder.StartRun(ctx, job)
	if err != nil {
		s.logger.Error().Err(err).Str("job", job).Msg("record run start")
	}
	log := s.logger.With().Str("job", job).Str("run_id", runID).Logger()
	log.Info().Msg("job started")
	start := time.Now()

	err = fn(ctx, runID)

	s.Metrics.JobRan(job, err)
	if runID != "" {
		if ferr := s.Recorder.FinishRun(ctx, runID, err); ferr != nil {
			log.Error().Err(ferr).Msg("record run finish")
		}
	}
	if err != nil {
		log.Error().Err(err).Dur("took", time.Since(start)).Msg("job failed")
		return err
	}
	log.Info().Dur("took", time.Since(start)).Msg("job finished")
	return nil
}

func (s *Scheduler) fetchQuotes(ctx context.Context) []model.Quote {
	if s.Quotes == nil {
		return nil
	}
	quotes := s.Quotes.Quotes(ctx, s.Engine.Instruments())
	s.mu.Lock()
	s.lastQuotes = quotes
	s.mu.Unlock()
	return quotes
}

// LastQuotes returns the quotes from the most recent refresh.
func (s *Scheduler) LastQuotes() []model.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastQuotes
}

func (s *Scheduler) refreshQuotes(ctx context.Context, runID string) error {
	quotes := s.fetchQuotes(ctx)
	if err := s.Recorder.RecordQuotes(ctx, runID, quotes); err != nil {
		return fmt.Errorf("record quotes: %w", err)
	}
	available := 0
	for _, q := range quotes {
		if q.Available {
			available++
		}
	}
	s.logger.Debug().Int("quotes", len(quotes)).Int("available", available).Msg("quotes refreshed")
	if len(quotes) > 0 && available == 0 {
		return fmt.Errorf("no quotes available from %d instruments", len(quotes))
	}
	return nil
}

func (s *Scheduler) buildDailyReport(ctx context.Context) (string, []model.Quote) {
	quotes := s.fetchQuotes(ctx)
	var results []*analysis.InstrumentResult
	for _, inst := range s.Engine.Instruments() {
		res, err := s.Engine.Analyze(ctx, inst.Code, s.Request)
		if err != nil {
			s.logger.Warn().Err(err).Str("symbol", inst.Code).Msg("instrument left out of report")
			continue
		}
		results = append(results, res)
	}
	return notifier.FormatDailyReport(s.now(), quotes, results), quotes
}

func (s *Scheduler) dailyReport(ctx context.Context, runID string) error {
	report, quotes := s.buildDailyReport(ctx)
	if len(quotes) > 0 {
		if err := s.Recorder.RecordQuotes(ctx, runID, quotes); err != nil {
			s.logger.Error().Err(err).Msg("record quotes")
		}
	}
	return s.send(ctx, report)
}

func (s *Scheduler) weeklyComparison(ctx context.Context, runID string) error {
	cmp, err := s.Engine.Compare(ctx, s.Request)
	if err != nil {
		return fmt.Errorf("compare: %w", err)
	}
	if err := s.Recorder.RecordRisk(ctx, runID, cmp.Window, cmp.Risk); err != nil {
		s.logger.Error().Err(err).Msg("record risk")
	}
	return s.send(ctx, notifier.FormatComparison(cmp))
}

func (s *Scheduler) send(ctx context.Context, text string) error {
	if s.Notifier == nil {
		s.logger.Info().Str("report", text).Msg("no notifier configured, report not sent")
		return nil
	}
	if err := s.Notifier.SendWithRetry(ctx, text, sendRetries); err != nil {
		return fmt.Errorf("send report: %w", err)
	}
	return nil
}

// HandleCommand processes a chat command and returns the reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	// Group chats address commands as /cmd@botname.
	name, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")

	switch name {
	case "/summary":
		report, _ := s.buildDailyReport(ctx)
		return report
	case "/quotes":
		if s.Quotes == nil {
			return "Live quotes are disabled."
		}
		return notifier.FormatQuotes(s.now(), s.fetchQuotes(ctx))
	case "/detail":
		if len(fields) < 2 {
			return "Usage: /detail CODE, e.g. /detail ADRO"
		}
		res, err := s.Engine.Analyze(ctx, fields[1], s.Request)
		if err != nil {
			return fmt.Sprintf("❌ %s: %s", notifier.Escape(strings.ToUpper(fields[1])), notifier.Escape(err.Error()))
		}
		return notifier.FormatInstrument(res)
	case "/compare":
		cmp, err := s.Engine.Compare(ctx, s.Request)
		if err != nil {
			return fmt.Sprintf("❌ comparison failed: %s", notifier.Escape(err.Error()))
		}
		return notifier.FormatComparison(cmp)
	}
	return helpText
}

const helpText = "Available commands:\n" +
	"• /summary, daily report\n" +
	"• /quotes, live quotes\n" +
	"• /detail CODE, one instrument in depth\n" +
	"• /compare, cross-instrument comparison"

// cronLogger adapts zerolog to cron's logger interface.
type cronLogger struct {
	l zerolog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
