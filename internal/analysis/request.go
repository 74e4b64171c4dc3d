package analysis

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"MiningPulse/internal/calculator"
	"MiningPulse/internal/model"
)

// Request is the full set of inputs for one analysis. It is passed by value;
// nothing is read from shared state.
type Request struct {
	Symbols      []string             `json:"symbols"`
	Window       model.AnalysisWindow `json:"window"`
	MAPeriods    []int                `json:"ma_periods"`
	RSIPeriod    int                  `json:"rsi_period"`
	ChangePeriod model.Period         `json:"change_period"`
	ShowVolume   bool                 `json:"show_volume"`
}

// DefaultRequest covers the whole table with MA20 and MA50, RSI(14) and daily changes.
func DefaultRequest() Request {
	return Request{
		Window:       model.PresetWindow(model.PresetAll),
		MAPeriods:    []int{20, 50},
		RSIPeriod:    calculator.DefaultRSIPeriod,
		ChangePeriod: model.Daily,
		ShowVolume:   true,
	}
}

// Validate checks the request before any table is read.
func (r Request) Validate() error {
	if err := r.Window.Validate(); err != nil {
		return err
	}
	for _, p := range r.MAPeriods {
		if p <= 0 {
			return fmt.Errorf("ma period %d: %w", p, calculator.ErrNonPositivePeriod)
		}
	}
	if r.RSIPeriod <= 0 {
		return fmt.Errorf("rsi period %d: %w", r.RSIPeriod, calculator.ErrNonPositivePeriod)
	}
	p, err := model.ParsePeriod(string(r.ChangePeriod))
	if err != nil {
		return err
	}
	if p != r.ChangePeriod {
		return fmt.Errorf("%w: %q is not canonical, use %q", model.ErrUnknownPeriod, r.ChangePeriod, p)
	}
	return nil
}

// signalAverages picks the short and long averages the signal engine compares.
func (r Request) signalAverages() (short, long int) {
	if len(r.MAPeriods) < 2 {
		return 20, 50
	}
	return slices.Min(r.MAPeriods), slices.Max(r.MAPeriods)
}

// memoKey identifies a result: the symbol, the window resolved to dates, and the parameters.
func (r Request) memoKey(symbol, start, end string) string {
	periods := slices.Clone(r.MAPeriods)
	slices.Sort(periods)
	ps := make([]string, len(periods))
	for i, p := range periods {
		ps[i] = strconv.Itoa(p)
	}
	return strings.Join([]string{
		"analysis", strings.ToUpper(symbol), start, end,
		strings.Join(ps, ","), strconv.Itoa(r.RSIPeriod), string(r.ChangePeriod),
		strconv.FormatBool(r.ShowVolume),
	}, "|")
}
