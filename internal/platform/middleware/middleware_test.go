package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ehr/intake/internal/platform/apperr"
	"github.com/ehr/intake/internal/platform/auth"
	"github.com/ehr/intake/internal/platform/respond"
)

func TestRequestID_GeneratesNew(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		rid := c.Get("request_id").(string)
		if rid == "" {
			t.Error("expected request_id to be generated")
		}
		return c.String(http.StatusOK, "ok")
	}

	if err := RequestID()(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("expected X-Request-ID response header")
	}
}

func TestRequestID_PreservesExisting(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "my-custom-id")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		if rid := c.Get("request_id").(string); rid != "my-custom-id" {
			t.Errorf("expected my-custom-id, got %s", rid)
		}
		return c.String(http.StatusOK, "ok")
	}

	_ = RequestID()(handler)(c)
	if rec.Header().Get(RequestIDHeader) != "my-custom-id" {
		t.Errorf("expected my-custom-id in response header, got %s", rec.Header().Get(RequestIDHeader))
	}
}

func TestLogger_LogsRequest(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/vitals/abc", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.Set("request_id", "req-1")

	err := Logger(zerolog.New(&buf))(func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "nope")
	})(c)
	if err == nil {
		t.Fatal("expected the handler error to pass through")
	}

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line: %v (%s)", err, buf.String())
	}
	if line["level"] != "warn" || line["request_id"] != "req-1" || line["status"] != float64(404) {
		t.Errorf("unexpected access line: %v", line)
	}
}

func TestLogger_StatusFromAppError(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/vitals", nil), httptest.NewRecorder())

	_ = Logger(zerolog.New(&buf))(func(c echo.Context) error {
		return apperr.Storage(errors.New("conn reset"), "save vitals")
	})(c)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if line["level"] != "error" || line["status"] != float64(500) {
		t.Errorf("unexpected access line: %v", line)
	}
}

func TestRecovery_CatchesPanic(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/panic", nil), httptest.NewRecorder())

	err := Recovery(zerolog.New(io.Discard))(func(c echo.Context) error {
		panic("test panic")
	})(c)
	if err == nil || !strings.Contains(err.Error(), "test panic") {
		t.Fatalf("expected error from recovered panic, got %v", err)
	}
}

func TestRecovery_ReraisesAbort(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	defer func() {
		if r := recover(); r != http.ErrAbortHandler {
			t.Errorf("expected ErrAbortHandler to propagate, got %v", r)
		}
	}()
	_ = Recovery(zerolog.New(io.Discard))(func(c echo.Context) error {
		panic(http.ErrAbortHandler)
	})(c)
}

func TestRecovery_PassesThrough(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/ok", nil), httptest.NewRecorder())

	err := Recovery(zerolog.New(io.Discard))(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseLimit(t *testing.T) {
	tests := map[string]int64{
		"":     1 << 20,
		"2M":   2 << 20,
		"512K": 512 << 10,
		"1GB":  1 << 30,
		"100":  100,
		"lots": 1 << 20,
	}
	for in, want := range tests {
		if got := parseLimit(in); got != want {
			t.Errorf("parseLimit(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestBodyLimit(t *testing.T) {
	read := func(contentType string, body string, contentLength int64) error {
		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, contentType)
		req.ContentLength = contentLength
		c := e.NewContext(req, httptest.NewRecorder())
		return BodyLimit("10", "20")(func(c echo.Context) error {
			_, err := io.ReadAll(c.Request().Body)
			return err
		})(c)
	}
	status := func(err error) int {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return he.Code
		}
		return 0
	}

	if err := read(echo.MIMEApplicationJSON, `{"a":1}`, -1); err != nil {
		t.Errorf("small body rejected: %v", err)
	}
	if err := read(echo.MIMEApplicationJSON, strings.Repeat("x", 11), 11); status(err) != http.StatusRequestEntityTooLarge {
		t.Errorf("declared oversize body: %v", err)
	}
	if err := read(echo.MIMEApplicationJSON, strings.Repeat("x", 11), -1); status(err) != http.StatusRequestEntityTooLarge {
		t.Errorf("undeclared oversize body: %v", err)
	}
	if err := read(echo.MIMEMultipartForm+"; boundary=x", strings.Repeat("x", 15), -1); err != nil {
		t.Errorf("upload within its own limit rejected: %v", err)
	}
}

func TestSecurityHeaders(t *testing.T) {
	for _, hsts := range []bool{false, true} {
		e := echo.New()
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		_ = SecurityHeaders(hsts)(func(c echo.Context) error { return nil })(c)

		if rec.Header().Get("Cache-Control") != "no-store" {
			t.Errorf("missing Cache-Control")
		}
		if got := rec.Header().Get("Strict-Transport-Security") != ""; got != hsts {
			t.Errorf("hsts=%v but header present=%v", hsts, got)
		}
	}
}

func TestRequestTimeout(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	err := RequestTimeout(10*time.Millisecond)(func(c echo.Context) error {
		<-c.Request().Context().Done()
		return apperr.Storage(c.Request().Context().Err(), "load patient")
	})(c)
	if apperr.KindOf(err) != apperr.KindTimeout || apperr.HTTPStatus(err) != http.StatusGatewayTimeout {
		t.Errorf("expected a 504 timeout, got %v", err)
	}

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if err := RequestTimeout(time.Second)(func(c echo.Context) error { return nil })(c); err != nil {
		t.Errorf("fast handler: %v", err)
	}

	// Errors unrelated to the deadline keep their kind.
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	err = RequestTimeout(time.Second)(func(c echo.Context) error { return apperr.NotFound("gone") })(c)
	if !apperr.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestRequestTimeout_HandlerFinishesBeforeNextRequest(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = respond.ErrorHandler(zerolog.New(io.Discard))
	e.Use(RequestTimeout(10 * time.Millisecond))
	var finished atomic.Int32
	e.GET("/slow", func(c echo.Context) error {
		time.Sleep(50 * time.Millisecond)
		_ = c.QueryParams()
		finished.Add(1)
		return c.Request().Context().Err()
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/slow?a=1", nil))
	if rec.Code != http.StatusGatewayTimeout {
		t.Errorf("expected 504, got %d", rec.Code)
	}
	if finished.Load() != 1 {
		t.Error("the response was written while the handler was still running")
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/slow?b=2", nil))
	if finished.Load() != 2 {
		t.Errorf("second request: handler runs = %d", finished.Load())
	}
}

func TestAudit_LogsPatientAccess(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	e.Use(auth.DevAuthMiddleware(auth.JWTConfig{}), Audit(zerolog.New(&buf)))
	e.PUT("/ailments/:patient_id/:index", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	pid := "7c9e6679-7425-40de-944b-e07fc1f90ae7"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/ailments/"+pid+"/0", nil))

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode audit line: %v (%s)", err, buf.String())
	}
	want := map[string]any{"section": "ailments", "patient_id": pid, "action": "update", "user_id": "dev-user"}
	for k, v := range want {
		if line[k] != v {
			t.Errorf("%s = %v, want %v", k, line[k], v)
		}
	}
}
