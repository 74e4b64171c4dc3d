package model

import (
	"fmt"
	"strings"
	"time"
)

// Preset names a relative look-back window.
type Preset string

const (
	PresetAll Preset = "max"
	Preset10Y Preset = "10y"
	Preset5Y  Preset = "5y"
	Preset3Y  Preset = "3y"
	Preset1Y  Preset = "1y"
	Preset6M  Preset = "6mo"
	Preset3M  Preset = "3mo"
	Preset1M  Preset = "1mo"
)

var presetDays = map[Preset]int{
	Preset10Y: 3650,
	Preset5Y:  1825,
	Preset3Y:  1095,
	Preset1Y:  365,
	Preset6M:  180,
	Preset3M:  90,
	Preset1M:  30,
}

var presetLabels = map[Preset]string{
	PresetAll: "All data",
	Preset10Y: "10 years",
	Preset5Y:  "5 years",
	Preset3Y:  "3 years",
	Preset1Y:  "1 year",
	Preset6M:  "6 months",
	Preset3M:  "3 months",
	Preset1M:  "1 month",
}

// Presets lists every preset from widest to narrowest.
var Presets = []Preset{PresetAll, Preset10Y, Preset5Y, Preset3Y, Preset1Y, Preset6M, Preset3M, Preset1M}

// Days returns the look-back length. ok is false for PresetAll and unknown presets.
func (p Preset) Days() (int, bool) {
	d, ok := presetDays[p]
	return d, ok
}

// Valid reports whether p is a known preset.
func (p Preset) Valid() bool {
	_, ok := presetLabels[p]
	return ok
}

// Label is the human-readable preset name.
func (p Preset) Label() string {
	if l, ok := presetLabels[p]; ok {
		return l
	}
	return string(p)
}

// ParsePreset accepts preset codes case-insensitively, plus "all" for PresetAll.
func ParsePreset(s string) (Preset, error) {
	p := Preset(strings.ToLower(strings.TrimSpace(s)))
	if p == "all" || p == "" {
		return PresetAll, nil
	}
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPreset, s)
	}
	return p, nil
}

// AnalysisWindow is either a preset or an inclusive custom date range.
type AnalysisWindow struct {
	Preset Preset    `json:"preset,omitempty"`
	Start  time.Time `json:"start,omitempty"`
	End    time.Time `json:"end,omitempty"`
}

// PresetWindow returns a window for p.
func PresetWindow(p Preset) AnalysisWindow {
	return AnalysisWindow{Preset: p}
}

// CustomWindow returns an inclusive window over calendar dates.
func CustomWindow(start, end time.Time) AnalysisWindow {
	return AnalysisWindow{Start: CalendarDate(start), End: CalendarDate(end)}
}

// IsCustom reports whether the window is a date range rather than a preset.
func (w AnalysisWindow) IsCustom() bool {
	return w.Preset == ""
}

// Validate rejects unknown presets and ranges whose start is after their end.
func (w AnalysisWindow) Validate() error {
	if !w.IsCustom() {
		if !w.Preset.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownPreset, w.Preset)
		}
		return nil
	}
	if w.Start.IsZero() || w.End.IsZero() {
		return fmt.Errorf("%w: both start and end are required", ErrInvalidWindow)
	}
	if CalendarDate(w.Start).After(CalendarDate(w.End)) {
		return fmt.Errorf("%w: %s > %s", ErrInvalidWindow,
			w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"))
	}
	return nil
}

// Bounds resolves the window against now. A zero start or end means unbounded.
func (w AnalysisWindow) Bounds(now time.Time) (start, end time.Time, err error) {
	if err := w.Validate(); err != nil {
		return time.Time{}, time.Time{}, err
	}
	if w.IsCustom() {
		return CalendarDate(w.Start), CalendarDate(w.End), nil
	}
	days, ok := w.Preset.Days()
	if !ok {
		return time.Time{}, time.Time{}, nil
	}
	return CalendarDate(now.AddDate(0, 0, -days)), time.Time{}, nil
}

// Label describes the window for reports.
func (w AnalysisWindow) Label() string {
	if w.IsCustom() {
		return w.Start.Format("2006-01-02") + " to " + w.End.Format("2006-01-02")
	}
	return w.Preset.Label()
}
