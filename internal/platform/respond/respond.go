// Package respond renders every HTTP response in one envelope:
//
//	{"ok": true, "data": ...}
//	{"ok": false, "error": {"kind": ..., "message": ..., "field": ..., "fields": [...]}}
package respond

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ehr/intake/internal/platform/apperr"
)

// Envelope is the response body shape shared by every endpoint.
type Envelope struct {
	OK    bool       `json:"ok"`
	Data  any        `json:"data,omitempty"`
	Error *ErrorBody `json:"error,omitempty"`
}

// ErrorBody carries enough detail for the client to highlight fields.
type ErrorBody struct {
	Kind    string              `json:"kind"`
	Message string              `json:"message"`
	Field   string              `json:"field,omitempty"`
	Fields  []apperr.FieldError `json:"fields,omitempty"`
}

// KindHTTP is used for errors raised by echo itself (routing, auth).
const KindHTTP = "http"

func OK(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, Envelope{OK: true, Data: data})
}

func Created(c echo.Context, data any) error {
	return c.JSON(http.StatusCreated, Envelope{OK: true, Data: data})
}

// Body builds the error envelope and status for err.
func Body(err error) (int, Envelope) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok {
			msg = s
		}
		return he.Code, Envelope{Error: &ErrorBody{Kind: KindHTTP, Message: msg}}
	}

	status := apperr.HTTPStatus(err)
	if apperr.KindOf(err) == apperr.KindTimeout {
		return status, Envelope{Error: &ErrorBody{
			Kind:    string(apperr.KindTimeout),
			Message: apperr.Timeout(nil).Message,
		}}
	}
	ae, ok := apperr.As(err)
	if !ok {
		return status, Envelope{Error: &ErrorBody{
			Kind:    string(apperr.KindStorage),
			Message: "failed to save",
		}}
	}
	body := &ErrorBody{Kind: string(ae.Kind), Message: ae.Message}
	if ae.Kind == apperr.KindStorage {
		// The cause stays in the logs.
		if body.Message == "" {
			body.Message = "failed to save"
		}
	}
	named := make([]apperr.FieldError, 0, len(ae.Fields))
	for _, f := range ae.Fields {
		if f.Field != "" {
			named = append(named, f)
		}
	}
	if len(named) == 1 {
		body.Field = named[0].Field
	}
	if len(named) > 0 {
		body.Fields = named
	}
	return status, Envelope{Error: body}
}

// ErrorHandler is installed as echo's HTTPErrorHandler. Server-side
// failures are logged with their cause.
func ErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, env := Body(err)
		if status >= http.StatusInternalServerError {
			rid, _ := c.Get("request_id").(string)
			logger.Error().Err(err).
				Str("request_id", rid).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Int("status", status).
				Msg("request failed")
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, env)
	}
}
