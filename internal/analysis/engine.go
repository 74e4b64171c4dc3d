package analysis

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"MiningPulse/internal/cache"
	"MiningPulse/internal/calculator"
	"MiningPulse/internal/dividend"
	"MiningPulse/internal/metrics"
	"MiningPulse/internal/model"
	"MiningPulse/internal/strategy"

	"github.com/guregu/null/v5"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const dateKey = "2006-01-02"

// Source serves instruments' loaded tables.
type Source interface {
	Series(code string) (*model.PriceSeries, error)
	Instruments() []model.Instrument
}

// Engine runs analyses over a Source. Results are memoized for the life of
// the process since the underlying tables never change after loading.
type Engine struct {
	source  Source
	memo    *cache.TTLCache
	metrics *metrics.Metrics
	logger  zerolog.Logger
	now     func() time.Time
}

type Option func(*Engine)

func WithMetrics(m *metrics.Metrics) Option { return func(e *Engine) { e.metrics = m } }

func WithLogger(l zerolog.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithClock fixes the reference time presets are resolved against.
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

func NewEngine(source Source, opts ...Option) *Engine {
	e := &Engine{
		source: source,
		memo:   cache.NewTTLCache(),
		logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With().Str("component", "analysis").Logger()
	return e
}

// Instruments lists the configured instruments.
func (e *Engine) Instruments() []model.Instrument {
	return e.source.Instruments()
}

// Analyze computes the full result for one instrument. An invalid request is
// rejected before the instrument's tables are touched.
func (e *Engine) Analyze(ctx context.Context, symbol string, req Request) (res *InstrumentResult, err error) {
	start := time.Now()
	defer func() { e.metrics.ObserveAnalysis("analyze", start, err) }()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	now := e.now()
	from, to, err := req.Window.Bounds(now)
	if err != nil {
		return nil, err
	}
	key := req.memoKey(symbol, formatBound(from), formatBound(to))
	if v, ok := e.memo.Get(key); ok {
		e.metrics.CacheLookup("analysis", true)
		return v.(*InstrumentResult), nil
	}
	e.metrics.CacheLookup("analysis", false)

	series, err := e.source.Series(symbol)
	if err != nil {
		return nil, err
	}
	res, err = e.compute(series, req, now)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", symbol, err)
	}
	e.memo.Set(key, res, 0)
	e.logger.Debug().Str("symbol", symbol).Str("window", res.Window).Int("bars", len(res.Bars)).
		Dur("took", time.Since(start)).Msg("analysis computed")
	return res, nil
}

func formatBound(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(dateKey)
}

func (e *Engine) compute(series *model.PriceSeries, req Request, now time.Time) (*InstrumentResult, error) {
	inst := series.Instrument
	bars, err := calculator.FilterWindow(series.Bars, req.Window, now)
	if err != nil {
		return nil, err
	}

	res := &InstrumentResult{
		Symbol:   strings.ToUpper(inst.Code),
		Name:     inst.Name,
		Window:   req.Window.Label(),
		Bars:     bars,
		Warnings: slices.Clone(series.Warnings),
	}
	if len(bars) > 0 {
		res.From = bars[0].Date
		res.To = bars[len(bars)-1].Date
	} else {
		res.Warnings = append(res.Warnings, "no trading days in window "+res.Window)
	}

	mas, err := calculator.MovingAverages(bars, req.MAPeriods)
	if err != nil {
		return nil, err
	}
	periods := slices.Clone(req.MAPeriods)
	slices.Sort(periods)
	for _, p := range slices.Compact(periods) {
		res.MovingAverages = append(res.MovingAverages, mas[p])
	}

	if res.Change, err = calculator.PercentChange(bars, req.ChangePeriod); err != nil {
		return nil, err
	}
	res.ChangeStats = calculator.Describe(res.Change.Values())

	if res.RSI, err = calculator.RSISeries(bars, req.RSIPeriod); err != nil {
		return nil, err
	}

	if req.ShowVolume {
		vol := volumeSeries(bars)
		res.Volume = &vol
	}

	res.Risk = calculator.Risk(bars)
	res.Summary = calculator.Summarize(bars)
	res.CloseStats = calculator.Describe(nullable(model.Closes(bars)))
	res.OHLCV = calculator.OHLCVCorrelation(bars)

	// Signals read the latest state of the whole table, not the window.
	short, long := req.signalAverages()
	snap := strategy.BuildSnapshot(res.Symbol, series.Bars, short, long, req.RSIPeriod)
	res.Signal = strategy.Evaluate(snap)

	if len(series.Dividends) > 0 {
		res.Dividends = series.Dividends
		sum := dividend.Summarize(series.Dividends)
		res.DividendSummary = &sum
	}
	return res, nil
}

func volumeSeries(bars []model.PriceBar) model.DerivedSeries {
	values := make([]float64, len(bars))
	for i, b := range bars {
		values[i] = float64(b.Volume)
	}
	return model.NewSeries("Volume", model.Dates(bars), nullable(values))
}

func nullable(xs []float64) []null.Float {
	out := make([]null.Float, len(xs))
	for i, x := range xs {
		out[i] = null.FloatFrom(x)
	}
	return out
}

// Compare analyzes every requested instrument and lines them up. An
// instrument that fails is reported in Warnings; the rest are still compared.
func (e *Engine) Compare(ctx context.Context, req Request) (res *ComparisonResult, err error) {
	start := time.Now()
	defer func() { e.metrics.ObserveAnalysis("compare", start, err) }()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	symbols := req.Symbols
	if len(symbols) == 0 {
		for _, inst := range e.source.Instruments() {
			symbols = append(symbols, inst.Code)
		}
	}

	results := make([]*InstrumentResult, len(symbols))
	errs := make([]error, len(symbols))
	g, gctx := errgroup.WithContext(ctx)
	for i, sym := range symbols {
		i, sym := i, sym
		g.Go(func() error {
			results[i], errs[i] = e.Analyze(gctx, sym, req)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res = &ComparisonResult{
		Window: req.Window.Label(),
		Risk:   make(map[string]model.RiskMetrics),
		Change: make(map[string]model.Describe),
	}
	tables := make(map[string][]model.PriceBar)
	histories := make(map[string][]model.DividendRecord)
	for i, r := range results {
		if errs[i] != nil {
			sym := strings.ToUpper(symbols[i])
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: %v", sym, errs[i]))
			e.logger.Warn().Err(errs[i]).Str("symbol", sym).Msg("instrument skipped in comparison")
			continue
		}
		res.Instruments = append(res.Instruments, r)
		res.Risk[r.Symbol] = r.Risk
		res.Change[r.Symbol] = r.ChangeStats
		tables[r.Symbol] = r.Bars
		if len(r.Dividends) > 0 {
			histories[r.Symbol] = r.Dividends
		} else {
			res.Warnings = append(res.Warnings, r.Symbol+": no dividend history")
		}
	}

	dates, closes := calculator.AlignCloses(tables)
	res.AlignedDays = len(dates)
	if res.PriceCorrelation, err = calculator.CorrelationMatrix(closes); err != nil {
		return nil, err
	}
	returns := make(map[string][]float64, len(closes))
	for sym, c := range closes {
		returns[sym] = calculator.DailyReturns(c)
	}
	if res.ReturnCorrelation, err = calculator.CorrelationMatrix(returns); err != nil {
		return nil, err
	}
	res.Dividends = dividend.Combine(histories)
	return res, nil
}
