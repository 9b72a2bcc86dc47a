// Package pagination reads limit/offset query parameters and shapes one
// page of a list endpoint.
package pagination

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ehr/intake/internal/platform/apperr"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type Params struct {
	Limit  int
	Offset int
}

// Parse reads limit and offset, or page (1-based) in place of offset.
// A limit above MaxLimit is capped; anything that is not a non-negative
// integer is a validation error.
func Parse(c echo.Context) (Params, error) {
	p := Params{Limit: DefaultLimit}
	v := apperr.NewValidator()
	if n, ok := intParam(v, c, "limit", 1); ok {
		p.Limit = min(n, MaxLimit)
	}
	if n, ok := intParam(v, c, "offset", 0); ok {
		p.Offset = n
	}
	if n, ok := intParam(v, c, "page", 1); ok && c.QueryParam("offset") == "" {
		p.Offset = (n - 1) * p.Limit
	}
	return p, v.Err()
}

func intParam(v *apperr.Validator, c echo.Context, name string, least int) (int, bool) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < least {
		v.Add(name, apperr.ConstraintRange, "%s must be an integer of at least %d", name, least)
		return 0, false
	}
	return n, true
}

// Page is one page of results.
type Page[T any] struct {
	Items      []T  `json:"items"`
	Total      int  `json:"total"`
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
	HasMore    bool `json:"hasMore"`
	NextOffset *int `json:"nextOffset,omitempty"`
}

func NewPage[T any](items []T, total int, p Params) Page[T] {
	if items == nil {
		items = []T{}
	}
	page := Page[T]{Items: items, Total: total, Limit: p.Limit, Offset: p.Offset}
	if next := p.Offset + len(items); next < total {
		page.HasMore = true
		page.NextOffset = &next
	}
	return page
}
