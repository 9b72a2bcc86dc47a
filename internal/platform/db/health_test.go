package db

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func runHealth(t *testing.T, p Pinger, stats func() *PoolStats) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/db", nil), rec)
	if err := HealthHandler(p, stats)(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var env struct {
		OK   bool           `json:"ok"`
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rec, env.Data
}

func TestHealthHandler_Healthy(t *testing.T) {
	rec, data := runHealth(t, fakePinger{}, func() *PoolStats { return &PoolStats{TotalConns: 3, Healthy: true} })
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if data["status"] != "healthy" {
		t.Errorf("expected healthy, got %v", data["status"])
	}
	pool, ok := data["pool"].(map[string]any)
	if !ok || pool["total_conns"] != float64(3) {
		t.Errorf("expected pool stats, got %v", data["pool"])
	}
}

func TestHealthHandler_Unhealthy(t *testing.T) {
	rec, data := runHealth(t, fakePinger{err: errors.New("connection refused")}, nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if data["status"] != "unhealthy" || data["error"] != "connection refused" {
		t.Errorf("unexpected body: %v", data)
	}
	if _, ok := data["pool"]; ok {
		t.Error("expected no pool stats without a stats func")
	}
}
