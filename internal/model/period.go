package model

import (
	"fmt"
	"strings"
)

// Period is the sampling frequency for percent change.
type Period string

const (
	Daily   Period = "D"
	Weekly  Period = "W"
	Monthly Period = "M"
	Yearly  Period = "Y"
)

// ParsePeriod accepts single-letter codes and full names, case-insensitively.
func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "d", "daily", "day":
		return Daily, nil
	case "w", "weekly", "week":
		return Weekly, nil
	case "m", "monthly", "month":
		return Monthly, nil
	case "y", "yearly", "year", "annual":
		return Yearly, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPeriod, s)
}

// Label is the human-readable period name.
func (p Period) Label() string {
	switch p {
	case Daily:
		return "daily"
	case Weekly:
		return "weekly"
	case Monthly:
		return "monthly"
	case Yearly:
		return "yearly"
	}
	return string(p)
}
