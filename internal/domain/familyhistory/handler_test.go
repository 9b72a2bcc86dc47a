package familyhistory

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

func TestHandler_MemberScenario(t *testing.T) {
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
	base := "/family-history/" + id.String()

	rec := send(http.MethodPost, base, `{"familyMembers":[{"name":"Ravi","relationship":"Father","geneticConditions":["BRCA2"]}]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("save: %d %s", rec.Code, rec.Body.String())
	}
	rec = send(http.MethodPost, base+"/member", `{"name":"Anu","relationship":"Sister"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add member: %d %s", rec.Code, rec.Body.String())
	}

	var env struct {
		Data patient.FamilyHistoryView `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(env.Data.FamilyMembers) != 2 || env.Data.HereditaryRisks[0] != "BRCA2" {
		t.Fatalf("unexpected family history: %+v", env.Data)
	}
	anu := env.Data.FamilyMembers[1].ID.String()

	rec = send(http.MethodPut, base+"/member/"+anu, `{"name":"Anu","relationship":"Sister","deceased":true}`)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"deceased":true`) {
		t.Errorf("update member: %d %s", rec.Code, rec.Body.String())
	}
	rec = send(http.MethodDelete, base+"/member/7", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("delete missing member: %d", rec.Code)
	}
	rec = send(http.MethodPost, base+"/member", `{"name":"Anu","relationship":"Sister","hobby":"chess"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown field accepted: %d", rec.Code)
	}

	rec = send(http.MethodDelete, base, "")
	if rec.Code != http.StatusOK {
		t.Errorf("delete: %d", rec.Code)
	}
	rec = send(http.MethodGet, base, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"familyMembers":[]`) {
		t.Errorf("get after delete: %d %s", rec.Code, rec.Body.String())
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
	base := "/family-history/" + id.String()

	rec := send(http.MethodPost, base, `{"familyMembers":[
		{"name":"Ravi","dob":"1958-04-09","gender":"male","relationship":"father","medicalConditions":["Diabetes"],"geneticConditions":["BRCA2"]},
		{"name":"Meera","relationship":"Mother","deceased":true}]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("save: %d %s", rec.Code, rec.Body.String())
	}
	first := data(send(http.MethodGet, base, ""))
	if !strings.Contains(first, `"dob":"09-04-1958"`) || !strings.Contains(first, `"hereditaryRisks":["BRCA2"]`) {
		t.Errorf("unexpected presented history: %s", first)
	}
	if rec := send(http.MethodPut, base, first); rec.Code != http.StatusOK {
		t.Fatalf("fetched history should be accepted as is, got %d %s", rec.Code, rec.Body.String())
	}
	if again := data(send(http.MethodGet, base, "")); again != first {
		t.Errorf("round trip changed the history:\n%s\n%s", first, again)
	}
}
