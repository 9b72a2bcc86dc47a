package insurance

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ehr/intake/internal/domain/patient"
	"github.com/ehr/intake/internal/normalize"
	"github.com/ehr/intake/internal/platform/apperr"
	"github.com/ehr/intake/internal/platform/attachment"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)

type fixture struct {
	svc   *Service
	store patient.Store
	files *attachment.MemoryStore
	id    uuid.UUID
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := patient.NewMemoryStore()
	p := &patient.Patient{ID: uuid.New()}
	if err := store.Create(context.Background(), p); err != nil {
		t.Fatalf("seed patient: %v", err)
	}
	files := attachment.NewMemoryStore()
	logger := zerolog.New(io.Discard)
	svc := NewService(store, attachment.NewService(files, attachment.DefaultPolicy(1024), logger), normalize.DefaultOptions(), logger)
	return fixture{svc: svc, store: store, files: files, id: p.ID}
}

func validRequest() Request {
	return Request{
		Primary: PlanRequest{
			Company: "Star Health", PolicyNumber: "P-100", GroupNumber: "G-7",
			PlanType: "ppo", EffectiveStart: "01-01-2024", EffectiveEnd: "2024-12-31",
		},
		InsuranceContactNumber: normalize.PhoneInput{Raw: "1800 425 2255"},
	}
}

// fileHeader builds a multipart upload the way the card form posts it.
func fileHeader(t *testing.T, name string, data []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(attachment.FormField, name)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(data)
	w.Close()
	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	fh, err := attachment.FormFile(echo.New().NewContext(req, httptest.NewRecorder()))
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	return fh
}

func TestSave_NormalizesPlans(t *testing.T) {
	f := newFixture(t)
	ins, err := f.svc.Save(context.Background(), f.id, validRequest())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	want := patient.InsurancePlan{
		Company: "Star Health", PolicyNumber: "P-100", GroupNumber: "G-7",
		PlanType: "PPO", EffectiveStart: "2024-01-01", EffectiveEnd: "2024-12-31",
	}
	if ins.Primary != want {
		t.Errorf("primary = %+v, want %+v", ins.Primary, want)
	}
	if ins.Secondary != nil {
		t.Error("secondary should stay empty")
	}

	p, _ := f.store.Get(context.Background(), f.id)
	if got := p.Completeness().Missing; !reflect.DeepEqual(got, []string{"contactInfo.email", "contactInfo.mobile", "address"}) {
		t.Errorf("unexpected missing fields: %v", got)
	}
}

func TestSave_Validation(t *testing.T) {
	f := newFixture(t)
	req := validRequest()
	req.Primary.PlanType = "Gold"
	req.Primary.EffectiveEnd = "2023-12-31"
	req.Secondary = &PlanRequest{Company: "Acme"}
	req.InsuranceContactNumber = normalize.PhoneInput{}

	_, err := f.svc.Save(context.Background(), f.id, req)
	ae, ok := apperr.As(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	want := []string{
		"primary.planType", "primary.effectiveEnd",
		"secondary.policyNumber", "secondary.groupNumber", "secondary.planType",
		"secondary.effectiveStart", "secondary.effectiveEnd",
		"insuranceContactNumber",
	}
	if !reflect.DeepEqual(ae.FieldNames(), want) {
		t.Errorf("fields = %v\nwant     %v", ae.FieldNames(), want)
	}
}

func TestUploadCard_KeptAcrossSaves(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ref, err := f.svc.UploadCard(ctx, f.id, fileHeader(t, "card.png", pngBytes))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	ins, err := f.svc.Save(ctx, f.id, validRequest())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if ins.InsuranceCardImage == nil || ins.InsuranceCardImage.ID != ref.ID {
		t.Errorf("card reference lost on save: %+v", ins.InsuranceCardImage)
	}
}

func TestUploadCard_DisallowedTypeStoresNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.UploadCard(ctx, f.id, fileHeader(t, "setup.exe", []byte("MZ\x90\x00")))
	if apperr.KindOf(err) != apperr.KindUnsupportedFile {
		t.Fatalf("expected unsupported file, got %v", err)
	}
	p, _ := f.store.Get(ctx, f.id)
	if p.Insurance != nil || f.files.Len() != 0 {
		t.Errorf("rejected upload left state behind: %+v files=%d", p.Insurance, f.files.Len())
	}
}

func TestUploadCard_UnknownPatientDiscardsFile(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.UploadCard(context.Background(), uuid.New(), fileHeader(t, "card.png", pngBytes))
	if !apperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if f.files.Len() != 0 {
		t.Errorf("expected stored file to be discarded, %d left", f.files.Len())
	}
}

func TestUploadCard_ReplacedCardIsDiscarded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.UploadCard(ctx, f.id, fileHeader(t, "front.png", pngBytes))
	if err != nil {
		t.Fatalf("first upload: %v", err)
	}
	second, err := f.svc.UploadCard(ctx, f.id, fileHeader(t, "front-new.png", pngBytes))
	if err != nil {
		t.Fatalf("second upload: %v", err)
	}
	if keys := f.files.Keys(); len(keys) != 1 || keys[0] != second.Key {
		t.Errorf("expected only %s stored, got %v (first was %s)", second.Key, keys, first.Key)
	}

	if err := f.svc.Delete(ctx, f.id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if f.files.Len() != 0 {
		t.Errorf("delete left %v behind", f.files.Keys())
	}
}
