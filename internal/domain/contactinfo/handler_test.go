package contactinfo

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

func serve(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Lifecycle(t *testing.T) {
	svc, _, id := newTestService(t)
	e := echo.New()
	e.HTTPErrorHandler = respond.ErrorHandler(zerolog.New(io.Discard))
	NewHandler(svc).RegisterRoutes(e.Group(""))

	body := `{"patientId":"` + id.String() + `","mobile":{"code":"+91","number":"9876543210"},"email":"ana@example.com","emergencyContact":[{"name":"Luis","relationship":"Spouse","phone":"+1 415 555 0100"}]}`
	rec := serve(e, http.MethodPost, "/contact-information", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}

	rec = serve(e, http.MethodGet, "/contact-information/"+id.String(), "")
	var env struct {
		OK   bool                `json:"ok"`
		Data patient.ContactInfoView `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !env.OK || env.Data.Email != "ana@example.com" || env.Data.EmergencyContacts[0].Phone.Code != "+1" {
		t.Errorf("unexpected contact info: %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"emergencyContact"`) || !strings.Contains(rec.Body.String(), `"preferredContactMethods"`) {
		t.Errorf("expected request key names in response: %s", rec.Body.String())
	}

	rec = serve(e, http.MethodPut, "/contact-information/"+id.String(), `{"mobile":"9876543210","email":"ana@example.com","fax":"1"}`)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), `"field":"fax"`) {
		t.Errorf("expected unknown field rejection, got %d %s", rec.Code, rec.Body.String())
	}

	rec = serve(e, http.MethodDelete, "/contact-information/"+id.String(), "")
	if rec.Code != http.StatusOK {
		t.Errorf("delete: %d %s", rec.Code, rec.Body.String())
	}
	rec = serve(e, http.MethodGet, "/contact-information/not-a-patient", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for malformed id, got %d", rec.Code)
	}
}

func TestHandler_CreateRequiresPatientID(t *testing.T) {
	svc, _, _ := newTestService(t)
	e := echo.New()
	e.HTTPErrorHandler = respond.ErrorHandler(zerolog.New(io.Discard))
	NewHandler(svc).RegisterRoutes(e.Group(""))

	rec := serve(e, http.MethodPost, "/contact-information", `{"mobile":"9876543210","email":"a@b.co"}`)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), `"patientId"`) {
		t.Errorf("expected patientId required, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestHandler_GetThenPutRoundTrips(t *testing.T) {
	svc, _, id := newTestService(t)
	e := echo.New()
	e.HTTPErrorHandler = respond.ErrorHandler(zerolog.New(io.Discard))
	NewHandler(svc).RegisterRoutes(e.Group(""))
	path := "/contact-information/" + id.String()

	body := `{"patientId":"` + id.String() + `","mobile":"9876543210","homePhone":"+1 415 555 0100","email":"ana@example.com",
		"preferredContactMethods":["sms"],"emergencyContact":[{"name":"Luis","relationship":"Spouse","phone":"9876500000"}]}`
	if rec := serve(e, http.MethodPost, "/contact-information", body); rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	var first struct {
		Data json.RawMessage `json:"data"`
	}
	_ = json.Unmarshal(serve(e, http.MethodGet, path, "").Body.Bytes(), &first)

	rec := serve(e, http.MethodPut, path, string(first.Data))
	if rec.Code != http.StatusOK {
		t.Fatalf("fetched section should be accepted as is, got %d %s", rec.Code, rec.Body.String())
	}
	var second struct {
		Data json.RawMessage `json:"data"`
	}
	_ = json.Unmarshal(serve(e, http.MethodGet, path, "").Body.Bytes(), &second)
	if string(first.Data) != string(second.Data) {
		t.Errorf("round trip changed the section:\n%s\n%s", first.Data, second.Data)
	}
}
