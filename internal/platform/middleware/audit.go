package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ehr/intake/internal/platform/auth"
)

// patientParams are the route parameter names that carry a patient id.
var patientParams = []string{"id", "patientId", "patient_id", "userId"}

// Audit logs who read or changed which patient's record. It runs after
// authentication so the user is known.
func Audit(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)

			req := c.Request()
			ctx := req.Context()
			rid, _ := c.Get(requestIDKey).(string)
			logger.Info().
				Str("type", "phi_audit").
				Str("request_id", rid).
				Str("user_id", auth.UserIDFromContext(ctx)).
				Strs("user_roles", auth.RolesFromContext(ctx)).
				Str("section", sectionOf(c.Path())).
				Str("patient_id", patientIDOf(c)).
				Str("action", actionOf(req.Method)).
				Int("status", c.Response().Status).
				Bool("failed", err != nil).
				Msg("phi_access")

			return err
		}
	}
}

func actionOf(method string) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}

// sectionOf returns the first segment of the route, e.g. "ailments".
func sectionOf(route string) string {
	route = strings.TrimPrefix(route, "/")
	if i := strings.IndexByte(route, '/'); i >= 0 {
		route = route[:i]
	}
	if route == "" {
		return "unknown"
	}
	return route
}

func patientIDOf(c echo.Context) string {
	for _, name := range patientParams {
		if v := c.Param(name); v != "" {
			if _, err := uuid.Parse(v); err == nil {
				return v
			}
		}
	}
	return ""
}
