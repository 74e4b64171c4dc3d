package collector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"MiningPulse/internal/cache"
	"MiningPulse/internal/calculator"
	"MiningPulse/internal/metrics"
	"MiningPulse/internal/model"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultQuoteTTL = 5 * time.Minute
	// quoteHistoryDays covers the month used for the month-to-date change.
	quoteHistoryDays = 31
)

// QuoteService builds live quotes from recent daily bars and caches them.
type QuoteService struct {
	fetcher     Fetcher
	cache       cache.BytesCache
	ttl         time.Duration
	suffix      string
	concurrency int
	metrics     *metrics.Metrics
	logger      zerolog.Logger
	now         func() time.Time
}

type Option func(*QuoteService)

func WithTTL(ttl time.Duration) Option { return func(s *QuoteService) { s.ttl = ttl } }

// WithSuffix sets the exchange suffix appended to codes without an explicit ticker.
func WithSuffix(suffix string) Option { return func(s *QuoteService) { s.suffix = suffix } }

func WithConcurrency(n int) Option { return func(s *QuoteService) { s.concurrency = n } }

func WithMetrics(m *metrics.Metrics) Option { return func(s *QuoteService) { s.metrics = m } }

func WithLogger(l zerolog.Logger) Option { return func(s *QuoteService) { s.logger = l } }

func WithClock(now func() time.Time) Option { return func(s *QuoteService) { s.now = now } }

// NewQuoteService creates a service. A nil cache gets an in-memory one.
func NewQuoteService(fetcher Fetcher, c cache.BytesCache, opts ...Option) *QuoteService {
	s := &QuoteService{
		fetcher:     fetcher,
		cache:       c,
		ttl:         DefaultQuoteTTL,
		suffix:      ".JK",
		concurrency: 4,
		logger:      zerolog.Nop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = cache.NewTTLCache()
	}
	return s
}

// Source names the upstream feed.
func (s *QuoteService) Source() string { return s.fetcher.Name() }

// Quote returns the live quote for one instrument. Upstream failures never
// surface as errors; they produce a Quote with Available == false.
func (s *QuoteService) Quote(ctx context.Context, inst model.Instrument) model.Quote {
	code := strings.ToUpper(inst.Code)
	ticker := inst.QuoteTicker(s.suffix)
	key := "quote:" + ticker

	cached, ok, err := cache.GetJSON[model.Quote](ctx, s.cache, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", code).Msg("quote cache read failed")
	}
	s.metrics.CacheLookup("quotes", ok)
	if ok {
		return cached
	}

	bars, err := s.fetcher.FetchDailyBars(ctx, ticker, quoteHistoryDays)
	if err == nil && len(bars) == 0 {
		err = ErrNoData
	}
	if err != nil {
		s.metrics.QuoteFetched(s.fetcher.Name(), err, code, 0)
		s.logger.Warn().Err(err).Str("symbol", code).Str("ticker", ticker).Msg("live quote unavailable")
		return model.Quote{
			Symbol:    code,
			Ticker:    ticker,
			Available: false,
			Message:   fmt.Sprintf("data unavailable: %v", err),
			Source:    s.fetcher.Name(),
			FetchedAt: s.now(),
		}
	}

	q := BuildQuote(code, ticker, bars)
	q.Source = s.fetcher.Name()
	q.FetchedAt = s.now()
	s.metrics.QuoteFetched(s.fetcher.Name(), nil, code, q.Price)

	if err := cache.SetJSON(ctx, s.cache, key, q, s.ttl); err != nil {
		s.logger.Warn().Err(err).Str("symbol", code).Msg("quote cache write failed")
	}
	return q
}

// Quotes fetches every instrument concurrently. Results keep the input order
// and one instrument's failure does not affect the others.
func (s *QuoteService) Quotes(ctx context.Context, instruments []model.Instrument) []model.Quote {
	out := make([]model.Quote, len(instruments))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.concurrency, 1))
	for i, inst := range instruments {
		i, inst := i, inst
		g.Go(func() error {
			out[i] = s.Quote(gctx, inst)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// BuildQuote derives a quote from recent ascending daily bars: the last close,
// its change against the previous session (zero when only one session is
// known) and against the first close in the history.
func BuildQuote(symbol, ticker string, bars []model.PriceBar) model.Quote {
	last := bars[len(bars)-1]
	closes := model.Closes(bars)

	q := model.Quote{
		Symbol:    symbol,
		Ticker:    ticker,
		Price:     last.Close,
		Volume:    last.Volume,
		DayHigh:   last.High,
		DayLow:    last.Low,
		Available: true,
	}
	q.ChangePct = calculator.PercentChangeWithZeroFallback(closes[max(len(closes)-2, 0):]).ValueOrZero()
	if first := closes[0]; first != 0 {
		q.MonthChangePct = (last.Close/first - 1) * 100
	}
	return q
}
