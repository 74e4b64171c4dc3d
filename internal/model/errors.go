package model

import "errors"

var (
	ErrInvalidWindow    = errors.New("invalid analysis window: start is after end")
	ErrUnknownPreset    = errors.New("unknown window preset")
	ErrUnknownPeriod    = errors.New("unknown change period")
	ErrInsufficientData = errors.New("insufficient data")
)
