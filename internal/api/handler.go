package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"MiningPulse/internal/analysis"
	"MiningPulse/internal/dividend"
	"MiningPulse/internal/exporter"
	"MiningPulse/internal/model"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Engine is the analysis surface the handlers serve.
type Engine interface {
	Analyze(ctx context.Context, symbol string, req analysis.Request) (*analysis.InstrumentResult, error)
	Compare(ctx context.Context, req analysis.Request) (*analysis.ComparisonResult, error)
	Instruments() []model.Instrument
}

type QuoteProvider interface {
	Quotes(ctx context.Context, instruments []model.Instrument) []model.Quote
	Source() string
}

// Handler serves the dashboard API. quotes may be nil when live quotes are disabled.
type Handler struct {
	engine  Engine
	quotes  QuoteProvider
	logger  zerolog.Logger
	started time.Time
}

func NewHandler(engine Engine, quotes QuoteProvider, logger zerolog.Logger) *Handler {
	return &Handler{
		engine:  engine,
		quotes:  quotes,
		logger:  logger.With().Str("component", "api").Logger(),
		started: time.Now(),
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.health)

	g := e.Group("/api")
	g.GET("/instruments", h.instruments)
	g.GET("/analysis/:symbol", h.analysis)
	g.GET("/comparison", h.comparison)
	g.GET("/dividends", h.dividends)
	g.GET("/quotes", h.liveQuotes)
	g.GET("/export/:symbol", h.export)
}

func (h *Handler) health(c echo.Context) error {
	return SuccessResponse(c, map[string]any{
		"status":      "ok",
		"instruments": len(h.engine.Instruments()),
		"uptime":      time.Since(h.started).Round(time.Second).String(),
	})
}

type instrumentView struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Ticker string `json:"ticker,omitempty"`
}

func (h *Handler) instruments(c echo.Context) error {
	insts := h.engine.Instruments()
	out := make([]instrumentView, len(insts))
	for i, inst := range insts {
		out[i] = instrumentView{Code: strings.ToUpper(inst.Code), Name: inst.Name, Ticker: inst.Ticker}
	}
	return SuccessResponse(c, out)
}

// bindAnalysis binds target, which must embed or be aq, and converts aq. On
// failure the error response has already been written and ok is false.
func bindAnalysis(c echo.Context, target any, aq *AnalysisQuery) (analysis.Request, bool, error) {
	if errs := ReadAndValidateRequest(c, target); errs != nil {
		return analysis.Request{}, false, BadRequestResponse(c, errs)
	}
	req, err := aq.Request()
	if err != nil {
		return analysis.Request{}, false, AppErrorResponse(c, err)
	}
	return req, true, nil
}

func (h *Handler) analysis(c echo.Context) error {
	var q AnalysisQuery
	req, ok, err := bindAnalysis(c, &q, &q)
	if !ok {
		return err
	}
	res, err := h.engine.Analyze(c.Request().Context(), q.Symbol, req)
	if err != nil {
		return AppErrorResponse(c, err)
	}
	return SuccessResponse(c, res)
}

func (h *Handler) comparison(c echo.Context) error {
	var q AnalysisQuery
	req, ok, err := bindAnalysis(c, &q, &q)
	if !ok {
		return err
	}
	res, err := h.engine.Compare(c.Request().Context(), req)
	if err != nil {
		return AppErrorResponse(c, err)
	}
	return SuccessResponse(c, res)
}

type dividendView struct {
	Rows      []dividend.Row                   `json:"rows"`
	Summaries map[string]model.DividendSummary `json:"summaries"`
	Warnings  []string                         `json:"warnings,omitempty"`
}

func (h *Handler) dividends(c echo.Context) error {
	var q DividendQuery
	if errs := ReadAndValidateRequest(c, &q); errs != nil {
		return BadRequestResponse(c, errs)
	}
	symbols := splitSymbols(q.Symbols)
	if len(symbols) == 0 {
		for _, inst := range h.engine.Instruments() {
			symbols = append(symbols, strings.ToUpper(inst.Code))
		}
	}

	ctx := c.Request().Context()
	view := dividendView{Summaries: make(map[string]model.DividendSummary)}
	histories := make(map[string][]model.DividendRecord)
	for _, sym := range symbols {
		res, err := h.engine.Analyze(ctx, sym, analysis.DefaultRequest())
		if err != nil {
			view.Warnings = append(view.Warnings, fmt.Sprintf("%s: %v", sym, err))
			continue
		}
		recs := res.Dividends
		if q.Since > 0 {
			recs = dividend.Since(recs, q.Since)
		}
		if len(recs) == 0 {
			view.Warnings = append(view.Warnings, sym+": no dividend history")
			continue
		}
		histories[res.Symbol] = recs
		view.Summaries[res.Symbol] = dividend.Summarize(recs)
	}
	view.Rows = dividend.Combine(histories)
	if view.Rows == nil {
		view.Rows = []dividend.Row{}
	}
	return SuccessResponse(c, view)
}

func (h *Handler) liveQuotes(c echo.Context) error {
	if h.quotes == nil {
		return AppErrorResponse(c, NewAppError("ERR_QUOTES_DISABLED", "", "live quotes are disabled", http.StatusServiceUnavailable))
	}
	quotes := h.quotes.Quotes(c.Request().Context(), h.engine.Instruments())
	return SuccessResponse(c, map[string]any{
		"source": h.quotes.Source(),
		"quotes": quotes,
	})
}

func (h *Handler) export(c echo.Context) error {
	var q ExportQuery
	req, ok, err := bindAnalysis(c, &q, &q.AnalysisQuery)
	if !ok {
		return err
	}
	saver, err := exporter.NewSaver(q.Format)
	if err != nil {
		return AppErrorResponse(c, BadRequestError("format", err.Error()))
	}
	res, err := h.engine.Analyze(c.Request().Context(), q.Symbol, req)
	if err != nil {
		return AppErrorResponse(c, err)
	}

	var buf bytes.Buffer
	if err := saver.Save(&buf, exporter.Flatten(res)); err != nil {
		return AppErrorResponse(c, InternalError("export failed").WithError(err))
	}
	name := fmt.Sprintf("%s_%s.%s", strings.ToLower(res.Symbol), time.Now().Format("20060102"), saver.Extension())
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, saver.ContentType(), buf.Bytes())
}
