package vitals

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ehr/intake/internal/platform/respond"
)

func TestHandler_SnapshotScenario(t *testing.T) {
	svc, id := newTestService(t)
	e := echo.New()
	e.HTTPErrorHandler = respond.ErrorHandler(zerolog.New(io.Discard))
	NewHandler(svc).RegisterRoutes(e.Group(""))

	send := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	rec := send(http.MethodPost, "/vitals", `{"patient_id":"`+id.String()+`","date":"2023-12-01","time":"08:00","systolic":150,"diastolic":95,"pulseRate":90}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first save: %d %s", rec.Code, rec.Body.String())
	}
	rec = send(http.MethodPost, "/vitals", `{"patient_id":"`+id.String()+`","date":"2024-01-01","time":"10:00","systolic":120,"diastolic":80}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("second save: %d %s", rec.Code, rec.Body.String())
	}

	rec = send(http.MethodGet, "/vitals/"+id.String(), "")
	body := rec.Body.String()
	if !strings.Contains(body, `"systolic":120,"diastolic":80`) || !strings.Contains(body, `"date":"01-01-2024"`) {
		t.Errorf("unexpected vitals: %s", body)
	}
	if strings.Contains(body, "pulseRate") {
		t.Errorf("stale pulse rate survived: %s", body)
	}

	rec = send(http.MethodDelete, "/vitals/"+id.String(), "")
	if rec.Code != http.StatusOK {
		t.Errorf("delete: %d", rec.Code)
	}
	rec = send(http.MethodGet, "/vitals/"+id.String(), "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected cleared vitals, got %d", rec.Code)
	}
}

func TestHandler_GetThenPutRoundTrips(t *testing.T) {
	svc, id := newTestService(t)
	e := echo.New()
	e.HTTPErrorHandler = respond.ErrorHandler(zerolog.New(io.Discard))
	NewHandler(svc).RegisterRoutes(e.Group(""))
	send := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}
	data := func(rec *httptest.ResponseRecorder) string {
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s: %v", rec.Body.String(), err)
		}
		return string(env.Data)
	}
	path := "/vitals/" + id.String()

	rec := send(http.MethodPost, "/vitals", `{"patientId":"`+id.String()+`","date":"2024-01-01","time":"10:00","systolic":120,"diastolic":80,
		"pulseRate":72,"temperature":98.6,"temperatureUnit":"f","spo2":98,"height":170,"weight":65,"additionalComments":"calm"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("save: %d %s", rec.Code, rec.Body.String())
	}
	first := data(send(http.MethodGet, path, ""))
	for _, want := range []string{`"temperatureUnit":"F"`, `"heightUnit":"cm"`, `"bmi":22.5`} {
		if !strings.Contains(first, want) {
			t.Errorf("presented vitals missing %s: %s", want, first)
		}
	}
	if rec := send(http.MethodPut, path, first); rec.Code != http.StatusOK {
		t.Fatalf("fetched snapshot should be accepted as is, got %d %s", rec.Code, rec.Body.String())
	}
	if again := data(send(http.MethodGet, path, "")); again != first {
		t.Errorf("round trip changed the snapshot:\n%s\n%s", first, again)
	}
}
