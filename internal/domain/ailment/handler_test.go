package ailment

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ehr/intake/internal/domain/patient"
	"github.com/ehr/intake/internal/platform/respond"
)

func newServer(f fixture) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = respond.ErrorHandler(zerolog.New(io.Discard))
	NewHandler(f.svc).RegisterRoutes(e.Group(""))
	return e
}

func call(t *testing.T, e *echo.Echo, method, path, body string) (int, []patient.AilmentView, string) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	var env struct {
		Data []patient.AilmentView `json:"data"`
	}
	if rec.Code < 300 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s: %v", rec.Body.String(), err)
		}
	}
	return rec.Code, env.Data, rec.Body.String()
}

func TestHandler_Scenario(t *testing.T) {
	f := newFixture(t)
	e := newServer(f)
	base := "/ailments/" + f.id.String()

	code, list, body := call(t, e, http.MethodPost, base, `{"problemName":"Asthma","status":"Active","severity":"Mild"}`)
	if code != http.StatusCreated || len(list) != 1 {
		t.Fatalf("add: %d %s", code, body)
	}
	code, list, body = call(t, e, http.MethodPut, base+"/0", `{"problemName":"Asthma","status":"Active","severity":"Severe"}`)
	if code != http.StatusOK || len(list) != 1 || list[0].Severity != "Severe" {
		t.Fatalf("update: %d %s", code, body)
	}
	code, list, _ = call(t, e, http.MethodGet, "/assessment/"+f.id.String(), "")
	if code != http.StatusOK || len(list) != 1 {
		t.Fatalf("assessment view: %d %+v", code, list)
	}
	code, list, body = call(t, e, http.MethodDelete, base+"/"+list[0].ID.String(), "")
	if code != http.StatusOK || len(list) != 0 {
		t.Fatalf("remove by id: %d %s", code, body)
	}
}

func TestHandler_BulkAndErrors(t *testing.T) {
	f := newFixture(t)
	e := newServer(f)
	base := "/ailments/" + f.id.String()

	bulk := `[{"problemName":"Asthma","status":"Active","severity":"Mild"},{"problemName":"Migraine","status":"Recurrent","severity":"Moderate","pain":"Distressing"}]`
	code, list, body := call(t, e, http.MethodPost, base+"/bulk", bulk)
	if code != http.StatusOK || len(list) != 2 || list[1].Pain != "Distressing" {
		t.Fatalf("bulk: %d %s", code, body)
	}

	if code, _, body = call(t, e, http.MethodPut, base+"/7", `{"problemName":"X","status":"Active","severity":"Mild"}`); code != http.StatusNotFound {
		t.Errorf("expected 404 for index 7, got %d %s", code, body)
	}
	if code, _, body = call(t, e, http.MethodDelete, base+"/first", ""); code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed index, got %d %s", code, body)
	}
	if code, _, body = call(t, e, http.MethodPost, base, `{"problemName":"Flu","status":"Active","severity":"Mild","stage":2}`); code != http.StatusBadRequest || !strings.Contains(body, `"field":"stage"`) {
		t.Errorf("expected unknown field rejection, got %d %s", code, body)
	}

	code, list, _ = call(t, e, http.MethodDelete, base, "")
	if code != http.StatusOK || len(list) != 0 {
		t.Errorf("clear: %d %+v", code, list)
	}
}

func TestHandler_GetThenPutRoundTrips(t *testing.T) {
	f := newFixture(t)
	e := newServer(f)
	base := "/ailments/" + f.id.String()

	bulk := `[{"problemName":"Asthma","icdCode":"j45","status":"Active","severity":"Mild","pain":3,"dateOfOnset":"2020-03-14"},{"problemName":"Migraine","status":"Recurrent","severity":"Moderate"}]`
	if code, _, body := call(t, e, http.MethodPost, base+"/bulk", bulk); code != http.StatusOK {
		t.Fatalf("bulk: %d %s", code, body)
	}
	if _, err := f.svc.AttachTestResult(t.Context(), f.id, patient.Ref{Index: 0}, fileHeader(t, "spirometry.pdf", pdfBytes)); err != nil {
		t.Fatalf("attach: %v", err)
	}

	_, list, first := call(t, e, http.MethodGet, base, "")
	if list[0].DateOfOnset != "14-03-2020" || list[0].Pain == "" || len(list[0].TestResults) != 1 {
		t.Fatalf("unexpected presented list: %s", first)
	}
	if strings.Contains(first, "problem_name") || strings.Contains(first, `"key"`) {
		t.Errorf("expected request key names only: %s", first)
	}

	var env struct {
		Data json.RawMessage `json:"data"`
	}
	_ = json.Unmarshal([]byte(first), &env)
	if code, _, body := call(t, e, http.MethodPut, base, string(env.Data)); code != http.StatusOK {
		t.Fatalf("fetched list should be accepted as is, got %d %s", code, body)
	}
	if _, _, again := call(t, e, http.MethodGet, base, ""); again != first {
		t.Errorf("round trip changed the list:\n%s\n%s", first, again)
	}
}
