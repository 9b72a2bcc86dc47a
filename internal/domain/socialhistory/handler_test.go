package socialhistory

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

func TestHandler_Routes(t *testing.T) {
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
	base := "/social-history/" + id.String()

	rec := send(http.MethodPut, base+"/gender-identity", `{"identity":"non-binary"}`)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"identity":"Non-binary"`) {
		t.Fatalf("save: %d %s", rec.Code, rec.Body.String())
	}
	rec = send(http.MethodPut, base+"/hobbies", `{}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown sub-section: %d", rec.Code)
	}
	rec = send(http.MethodPut, base+"/nutrition", ``)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty body: %d", rec.Code)
	}

	rec = send(http.MethodGet, base, "")
	body := rec.Body.String()
	if !strings.Contains(body, `"genderIdentity":{"identity":"Non-binary"}`) || !strings.Contains(body, `"tobacco":null`) {
		t.Errorf("get: %s", body)
	}

	rec = send(http.MethodDelete, base+"/gender_identity", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"genderIdentity":null`) {
		t.Errorf("delete: %d %s", rec.Code, rec.Body.String())
	}
	rec = send(http.MethodGet, "/social-history/not-a-uuid", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("malformed id: %d", rec.Code)
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
	sections := func() map[string]json.RawMessage {
		rec := send(http.MethodGet, "/social-history/"+id.String(), "")
		var env struct {
			Data map[string]json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s: %v", rec.Body.String(), err)
		}
		return env.Data
	}
	base := "/social-history/" + id.String()

	seed := map[string]string{
		"tobacco":          `{"status":"former","type":"cigarettes","packsPerDay":0.5,"years":4,"quitDate":"2019-03-15"}`,
		"alcohol":          `{"status":"current","frequency":"2-3 times a week","drinksPerWeek":3}`,
		"physicalActivity": `{"daysPerWeek":3,"minutesPerSession":40}`,
		"violence":         `{"feelsSafe":true,"exposed":false}`,
		"nutrition":        `{"diet":"vegetarian","mealsPerDay":3}`,
		"notes":            `{"text":"walks daily"}`,
	}
	for sub, body := range seed {
		if rec := send(http.MethodPut, base+"/"+sub, body); rec.Code != http.StatusOK {
			t.Fatalf("seed %s: %d %s", sub, rec.Code, rec.Body.String())
		}
	}
	first := sections()
	if string(first["tobacco"]) == "" || !strings.Contains(string(first["tobacco"]), `"quitDate":"15-03-2019"`) {
		t.Errorf("tobacco should carry a display date: %s", first["tobacco"])
	}

	for sub := range seed {
		rec := send(http.MethodPut, base+"/"+sub, string(first[sub]))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: fetched entry should be accepted as is, got %d %s", sub, rec.Code, rec.Body.String())
		}
	}
	again := sections()
	for sub := range seed {
		if string(again[sub]) != string(first[sub]) {
			t.Errorf("%s: round trip changed the entry:\n%s\n%s", sub, first[sub], again[sub])
		}
	}
}
