package allergy

import (
	"context"
	"io"
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ehr/intake/internal/domain/patient"
	"github.com/ehr/intake/internal/normalize"
	"github.com/ehr/intake/internal/platform/apperr"
)

func newServices(t *testing.T) (intake, history *Service, id uuid.UUID) {
	t.Helper()
	store := patient.NewMemoryStore()
	p := &patient.Patient{}
	if err := store.Create(context.Background(), p); err != nil {
		t.Fatalf("seed patient: %v", err)
	}
	logger := zerolog.New(io.Discard)
	intake = NewService(store, patient.AllergySourceIntake, normalize.DefaultOptions(), logger)
	history = NewService(store, patient.AllergySourceMedicalHistory, normalize.DefaultOptions(), logger)
	return intake, history, p.ID
}

func peanut() Request {
	return Request{Allergen: "Peanut", Category: "fa", Severity: "Severe", Reaction: "Hives"}
}

func TestAdd_NormalizesCategory(t *testing.T) {
	svc, _, id := newServices(t)
	list, err := svc.Add(context.Background(), id, []Request{peanut()})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	a := list[0]
	if a.Category != "FA" || a.CategoryLabel != "FA: Food allergy" || a.Source != patient.AllergySourceIntake {
		t.Errorf("unexpected allergy: %+v", a)
	}
	if a.Status != normalize.SentinelSelect {
		t.Errorf("unset status should be the sentinel, got %q", a.Status)
	}
}

func TestAdd_Validation(t *testing.T) {
	svc, _, id := newServices(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, id, []Request{peanut(), {Allergen: "Dust", Category: "XX: Mystery", Severity: "Fatal"}})
	ae, ok := apperr.As(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	if want := []string{"allergies[1].category", "allergies[1].severity"}; !reflect.DeepEqual(ae.FieldNames(), want) {
		t.Errorf("fields = %v, want %v", ae.FieldNames(), want)
	}
	if _, err := svc.Add(ctx, id, nil); !apperr.IsValidation(err) {
		t.Errorf("expected empty add to be rejected, got %v", err)
	}
	if list, _ := svc.List(ctx, id); len(list) != 0 {
		t.Errorf("failed adds must not write: %+v", list)
	}
}

func TestSourcesShareOneList(t *testing.T) {
	intake, history, id := newServices(t)
	ctx := context.Background()

	if _, err := history.Add(ctx, id, []Request{{Allergen: "Penicillin", Category: "DA: Drug allergy", Severity: "Life-threatening"}}); err != nil {
		t.Fatalf("history add: %v", err)
	}
	if _, err := intake.Add(ctx, id, []Request{peanut()}); err != nil {
		t.Fatalf("intake add: %v", err)
	}

	list, err := intake.Replace(ctx, id, []Request{{Allergen: "Latex", Category: "LA", Severity: "Mild"}})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if len(list) != 2 || list[0].Allergen != "Penicillin" || list[1].Allergen != "Latex" {
		t.Fatalf("replace must only swap intake rows: %+v", list)
	}

	list, err = intake.UpdateAt(ctx, id, patient.Ref{Index: 0}, Request{Allergen: "Amoxicillin", Category: "DA", Severity: "Severe"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if list[0].Source != patient.AllergySourceMedicalHistory {
		t.Errorf("update must keep the recorded source, got %q", list[0].Source)
	}

	list, err = intake.Clear(ctx, id)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(list) != 1 || list[0].Allergen != "Amoxicillin" {
		t.Errorf("clear must keep medical history rows: %+v", list)
	}

	if _, err := history.RemoveAt(ctx, id, patient.Ref{Index: 1}); !apperr.IsNotFound(err) {
		t.Errorf("expected not found past the end, got %v", err)
	}
}

func TestUnknownPatient(t *testing.T) {
	svc, _, _ := newServices(t)
	if _, err := svc.Add(context.Background(), uuid.New(), nil); !apperr.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}
