package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ehr/intake/internal/platform/apperr"
)

// RequestTimeout puts a deadline on the request context and runs the
// handler on the request goroutine. Stores stop at the deadline and the
// error they return is reported as a timeout. A handler that ignores the
// context is never abandoned mid-flight.
func RequestTimeout(timeout time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
			defer cancel()
			c.SetRequest(c.Request().WithContext(ctx))

			err := next(c)
			if err == nil || c.Response().Committed {
				return err
			}
			if errors.Is(ctx.Err(), context.DeadlineExceeded) && apperr.KindOf(err) != apperr.KindTimeout {
				return apperr.Timeout(err)
			}
			return err
		}
	}
}
