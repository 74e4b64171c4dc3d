package api

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"MiningPulse/internal/analysis"
	"MiningPulse/internal/model"
)

const dateLayout = "2006-01-02"

// AnalysisQuery is the query string shared by the analysis, comparison and export endpoints.
// start and end select a custom window and take precedence over window.
type AnalysisQuery struct {
	Symbol  string   `param:"symbol"`
	Symbols []string `query:"symbols" validate:"max=10"`
	Window  string   `query:"window" default:"max"`
	Start   string   `query:"start" validate:"omitempty,datetime=2006-01-02"`
	End     string   `query:"end" validate:"omitempty,datetime=2006-01-02"`
	MA      []int    `query:"ma" default:"[20,50]" validate:"max=6,dive,gt=0,lte=400"`
	RSI     int      `query:"rsi" default:"14" validate:"gt=0,lte=200"`
	Period  string   `query:"period" default:"D"`
	Volume  string   `query:"volume" default:"true" validate:"boolean"`
}

// Request converts the query into an analysis request. Window and period
// errors wrap the model's sentinel errors.
func (q AnalysisQuery) Request() (analysis.Request, error) {
	req := analysis.Request{
		Symbols:   splitSymbols(q.Symbols),
		MAPeriods: q.MA,
		RSIPeriod: q.RSI,
	}

	if q.Start != "" || q.End != "" {
		var w model.AnalysisWindow
		if q.Start != "" {
			t, _ := time.Parse(dateLayout, q.Start)
			w.Start = t
		}
		if q.End != "" {
			t, _ := time.Parse(dateLayout, q.End)
			w.End = t
		}
		req.Window = w
	} else {
		p, err := model.ParsePreset(q.Window)
		if err != nil {
			return req, err
		}
		req.Window = model.PresetWindow(p)
	}
	if err := req.Window.Validate(); err != nil {
		return req, err
	}

	period, err := model.ParsePeriod(q.Period)
	if err != nil {
		return req, err
	}
	req.ChangePeriod = period

	if req.ShowVolume, err = strconv.ParseBool(q.Volume); err != nil {
		return req, fmt.Errorf("volume: %w", err)
	}
	return req, nil
}

// splitSymbols accepts both repeated and comma-separated symbols.
func splitSymbols(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.ToUpper(strings.TrimSpace(part)); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

type DividendQuery struct {
	Symbols []string `query:"symbols" validate:"max=10"`
	Since   int      `query:"since" validate:"omitempty,gte=1990,lte=2100"`
}

type ExportQuery struct {
	AnalysisQuery
	Format string `query:"format" default:"csv" validate:"oneof=csv json parquet"`
}
