package api

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"MiningPulse/internal/metrics"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// recoverer turns a handler panic into a 500 envelope.
func recoverer(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					perr, ok := r.(error)
					if !ok {
						perr = fmt.Errorf("%v", r)
					}
					logger.Error().Err(perr).Bytes("stack", debug.Stack()).Msg("panic in handler")
					err = DataResponse(c, http.StatusInternalServerError, []*AppError{InternalError("Internal Server Error")})
				}
			}()
			return next(c)
		}
	}
}

// requestLogging logs each request and records it under its route template.
func requestLogging(logger zerolog.Logger, m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req, res := c.Request(), c.Response()
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.ObserveHTTP(route, req.Method, res.Status, start)

			ev := logger.Info()
			if res.Status >= http.StatusInternalServerError {
				ev = logger.Error()
			}
			ev.Str("method", req.Method).Str("uri", req.RequestURI).Str("remote", c.RealIP()).
				Int("status", res.Status).Dur("latency", time.Since(start)).Msg("http request")
			return nil
		}
	}
}
