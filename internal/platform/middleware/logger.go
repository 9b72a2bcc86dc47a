package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ehr/intake/internal/platform/auth"
	"github.com/ehr/intake/internal/platform/respond"
)

// Logger writes one access line per request. A failed request is logged
// with the status the error handler renders for it, at warn for client
// errors and error for server errors.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			evt := logger.Info()
			if err != nil {
				status, _ = respond.Body(err)
				evt = logger.Warn()
				if status >= 500 {
					evt = logger.Error()
				}
				evt = evt.Err(err)
			}

			req := c.Request()
			rid, _ := c.Get(requestIDKey).(string)
			evt.Str("request_id", rid).
				Str("method", req.Method).
				Str("route", c.Path()).
				Str("path", req.URL.Path).
				Int("status", status).
				Int64("bytes_in", req.ContentLength).
				Int64("bytes_out", c.Response().Size).
				Str("user", auth.UserIDFromContext(req.Context())).
				Dur("latency", time.Since(start)).
				Msg("request")
			return err
		}
	}
}
