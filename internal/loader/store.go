package loader

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"MiningPulse/internal/model"

	"github.com/rs/zerolog"
)

var ErrUnknownInstrument = errors.New("unknown instrument")

// Store holds every configured instrument's tables, loaded once and read-only afterwards.
type Store struct {
	instruments []model.Instrument
	series      map[string]*model.PriceSeries
	failures    map[string]error
	logger      zerolog.Logger
}

// NewStore loads each instrument's price and dividend tables. A missing or
// unreadable table does not fail the store; the error is reported when the
// instrument is requested and the problem is logged here.
func NewStore(instruments []model.Instrument, logger zerolog.Logger) *Store {
	s := &Store{
		instruments: instruments,
		series:      make(map[string]*model.PriceSeries, len(instruments)),
		failures:    make(map[string]error),
		logger:      logger.With().Str("component", "loader").Logger(),
	}
	for _, inst := range instruments {
		s.load(inst)
	}
	return s
}

func (s *Store) load(inst model.Instrument) {
	code := strings.ToUpper(inst.Code)
	bars, rep, err := LoadPrices(inst.PriceFile)
	if err != nil {
		s.failures[code] = fmt.Errorf("load prices for %s: %w", code, err)
		s.logger.Warn().Err(err).Str("symbol", code).Str("file", inst.PriceFile).Msg("price table unavailable")
		return
	}
	ps := &model.PriceSeries{Instrument: inst, Bars: bars, LoadedAt: time.Now()}
	if rep.Skipped > 0 {
		ps.Warnings = append(ps.Warnings, fmt.Sprintf("%d price rows skipped as unreadable", rep.Skipped))
	}

	if inst.DividendFile == "" {
		ps.Warnings = append(ps.Warnings, "no dividend table configured")
	} else if divs, _, err := LoadDividends(inst.DividendFile); err != nil {
		ps.Warnings = append(ps.Warnings, "dividend table unavailable: "+err.Error())
		s.logger.Warn().Err(err).Str("symbol", code).Msg("dividend table unavailable")
	} else {
		ps.Dividends = divs
	}

	s.series[code] = ps
	s.logger.Info().Str("symbol", code).Int("bars", len(bars)).Int("skipped", rep.Skipped).
		Int("dividend_years", len(ps.Dividends)).Msg("tables loaded")
}

// Series returns an instrument's loaded tables.
func (s *Store) Series(code string) (*model.PriceSeries, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if ps, ok := s.series[code]; ok {
		return ps, nil
	}
	if err, ok := s.failures[code]; ok {
		return nil, err
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownInstrument, code)
}

// Instruments lists the configured instruments in configuration order.
func (s *Store) Instruments() []model.Instrument {
	return s.instruments
}

// Codes returns the sorted codes of instruments whose price table loaded.
func (s *Store) Codes() []string {
	codes := make([]string, 0, len(s.series))
	for c := range s.series {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}
