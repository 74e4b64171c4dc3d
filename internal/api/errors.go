package api

import (
	"errors"
	"fmt"
	"net/http"

	"MiningPulse/internal/calculator"
	"MiningPulse/internal/loader"
	"MiningPulse/internal/model"
)

// AppError represents application-level error with HTTP status.
type AppError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Field   string         `json:"field,omitempty"`
	Params  map[string]any `json:"params,omitempty"`
	Status  int            `json:"-"`
	Err     error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, field, message string, status int) *AppError {
	return &AppError{Code: code, Field: field, Message: message, Status: status}
}

// WithParam sets a single error param.
func (e *AppError) WithParam(key string, value any) *AppError {
	if e.Params == nil {
		e.Params = make(map[string]any)
	}
	e.Params[key] = value
	return e
}

func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

func NotFoundErrorf(format string, a ...any) *AppError {
	return NewAppError("ERR_NOT_FOUND", "", fmt.Sprintf(format, a...), http.StatusNotFound)
}

func BadRequestError(field, message string) *AppError {
	return NewAppError("ERR_BAD_REQUEST", field, message, http.StatusBadRequest)
}

func InvalidWindowError(err error) *AppError {
	return NewAppError("ERR_INVALID_WINDOW", "window", err.Error(), http.StatusBadRequest).WithError(err)
}

func InternalError(message string) *AppError {
	return NewAppError("ERR_INTERNAL", "", message, http.StatusInternalServerError)
}

// fromDomainError maps the analysis stack's sentinel errors to API errors.
func fromDomainError(err error) *AppError {
	var appErr *AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, model.ErrInvalidWindow), errors.Is(err, model.ErrUnknownPreset):
		return InvalidWindowError(err)
	case errors.Is(err, model.ErrUnknownPeriod):
		return BadRequestError("period", err.Error()).WithError(err)
	case errors.Is(err, calculator.ErrNonPositivePeriod):
		return BadRequestError("", err.Error()).WithError(err)
	case errors.Is(err, loader.ErrUnknownInstrument):
		return NewAppError("ERR_NOT_FOUND", "symbol", err.Error(), http.StatusNotFound).WithError(err)
	case errors.Is(err, loader.ErrNotFound):
		return NewAppError("ERR_DATA_UNAVAILABLE", "symbol", err.Error(), http.StatusNotFound).WithError(err)
	}
	return InternalError("Something went wrong").WithError(err)
}
