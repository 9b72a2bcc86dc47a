package respond

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ehr/intake/internal/platform/apperr"
)

// Bind decodes the JSON request body into dst, rejecting unknown fields
// and trailing data. Decode problems become validation errors that name
// the offending field where possible.
func Bind(c echo.Context, dst any) error {
	raw, err := ReadBody(c)
	if err != nil {
		return err
	}
	return Decode(raw, dst)
}

// ReadBody returns the raw request body for handlers that pick the
// request type after looking at the path.
func ReadBody(c echo.Context) ([]byte, error) {
	body := c.Request().Body
	if body == nil || body == http.NoBody {
		return nil, apperr.Invalid("body", apperr.ConstraintRequired, "request body is required")
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return nil, he
		}
		return nil, apperr.Invalid("body", apperr.ConstraintFormat, "read request body: %v", err)
	}
	return raw, nil
}

// Decode is Bind for an already read payload.
func Decode(raw []byte, dst any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return apperr.Invalid("body", apperr.ConstraintRequired, "request body is required")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return decodeError(err)
	}
	if dec.More() {
		return apperr.Invalid("body", apperr.ConstraintFormat, "unexpected data after JSON body")
	}
	return nil
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return apperr.Invalid(field, apperr.ConstraintFormat, "%s must be %s", field, typeErr.Type.String())
	case errors.As(err, &syntaxErr):
		return apperr.Invalid("body", apperr.ConstraintFormat, "malformed JSON at offset %d", syntaxErr.Offset)
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return apperr.Invalid(field, apperr.ConstraintUnknown, "unknown field %q", field)
	default:
		if ae, ok := apperr.As(err); ok {
			return ae
		}
		return apperr.Invalid("body", apperr.ConstraintFormat, "invalid JSON body: %v", err)
	}
}
