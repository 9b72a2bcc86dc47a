package patient

import (
	"context"
	"io"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ehr/intake/internal/normalize"
	"github.com/ehr/intake/internal/platform/apperr"
)

func newTestService() *Service {
	svc := NewService(NewMemoryStore(), normalize.DefaultOptions(), zerolog.New(io.Discard))
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

func anaRequest() DemographicsRequest {
	return DemographicsRequest{FirstName: "Ana", LastName: "Diaz", DOB: "1990-05-02", Gender: "Female"}
}

func TestService_CreateAndGet(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	p, err := svc.Create(ctx, anaRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := svc.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name.First != "Ana" || got.Name.Last != "Diaz" || got.DateOfBirth != "1990-05-02" {
		t.Errorf("unexpected demographics: %+v", got.Demographics)
	}
	if got.BloodGroup != normalize.SentinelUnknown || got.Occupation != normalize.SentinelSelect {
		t.Errorf("expected sentinels for unset selects, got %q %q", got.BloodGroup, got.Occupation)
	}
	if got.ContactInfo != nil {
		t.Error("expected no contact info without a seed")
	}
}

func TestService_CreateNormalizesDisplayDates(t *testing.T) {
	svc := newTestService()
	req := anaRequest()
	req.DOB = "02-05-1990"
	p, err := svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.DateOfBirth != "1990-05-02" {
		t.Errorf("expected DD-MM-YYYY input to be read day first, got %s", p.DateOfBirth)
	}
}

func TestService_CreateMissingRequired(t *testing.T) {
	svc := newTestService()
	_, err := svc.Create(context.Background(), DemographicsRequest{LastName: "Diaz"})
	ae, ok := apperr.As(err)
	if !ok || ae.Kind != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	want := []string{"firstName", "dob", "gender"}
	if got := ae.FieldNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected missing %v, got %v", want, got)
	}
	_, total, _ := svc.List(context.Background(), "", 10, 0)
	if total != 0 {
		t.Error("a rejected create must not store anything")
	}
}

func TestService_CreateFieldChecks(t *testing.T) {
	cases := []struct {
		name  string
		edit  func(r *DemographicsRequest)
		field string
	}{
		{"case mismatched gender", func(r *DemographicsRequest) { r.Gender = "female" }, "gender"},
		{"unknown blood group", func(r *DemographicsRequest) { r.BloodGroup = "C+" }, "bloodGroup"},
		{"bad dob", func(r *DemographicsRequest) { r.DOB = "1990/05/02" }, "dob"},
		{"future dob", func(r *DemographicsRequest) { r.DOB = "2030-01-01" }, "dob"},
		{"short aadhaar", func(r *DemographicsRequest) { r.Aadhaar = "1234" }, "aadhaar"},
		{"bad pan", func(r *DemographicsRequest) { r.PAN = "ABCDE12345" }, "pan"},
		{"partial address", func(r *DemographicsRequest) { r.Address = &AddressRequest{City: "Pune", PostalCode: "411001", State: "MH"} }, "address.district"},
		{"bad mobile seed", func(r *DemographicsRequest) { r.Mobile = "12" }, "mobile"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := anaRequest()
			tc.edit(&req)
			_, err := newTestService().Create(context.Background(), req)
			ae, ok := apperr.As(err)
			if !ok || len(ae.Fields) != 1 || ae.Fields[0].Field != tc.field {
				t.Errorf("expected single error on %s, got %v", tc.field, err)
			}
		})
	}
}

func TestService_CreateDefaults(t *testing.T) {
	req := anaRequest()
	req.PAN = "abcde1234f"
	req.Aadhaar = "1234 5678 9012"
	req.Address = &AddressRequest{City: "Pune", PostalCode: "411001", District: "Pune", State: "MH"}
	req.Email = "ana@example.com"
	req.Mobile = "98765 43210"

	p, err := newTestService().Create(context.Background(), req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.PAN != "ABCDE1234F" || p.Aadhaar != "123456789012" {
		t.Errorf("unexpected ids: %q %q", p.PAN, p.Aadhaar)
	}
	if p.Address.Country != DefaultCountry {
		t.Errorf("expected default country, got %q", p.Address.Country)
	}
	if p.ContactInfo == nil || p.ContactInfo.Mobile.Code != "+91" || p.ContactInfo.Mobile.Number != "9876543210" {
		t.Errorf("unexpected contact seed: %+v", p.ContactInfo)
	}
}

func TestService_UpdateDemographics(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	p, _ := svc.Create(ctx, anaRequest())

	req := anaRequest()
	req.MiddleName = "Maria"
	out, err := svc.UpdateDemographics(ctx, p.ID, req)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if out.Name.Middle != "Maria" || out.Version != 2 {
		t.Errorf("unexpected update result: %+v v%d", out.Name, out.Version)
	}

	req.Email = "ana@example.com"
	if _, err := svc.UpdateDemographics(ctx, p.ID, req); !apperr.IsValidation(err) {
		t.Errorf("expected contact fields to be rejected on update, got %v", err)
	}
}

func TestService_UnknownPatientIsNotFound(t *testing.T) {
	svc := newTestService()
	// Even an invalid payload reports the missing patient first.
	_, err := svc.UpdateDemographics(context.Background(), uuid.New(), DemographicsRequest{})
	if !apperr.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
	if _, err := svc.Completeness(context.Background(), uuid.New()); !apperr.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestService_GetSection(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	p, _ := svc.Create(ctx, anaRequest())

	v, err := svc.GetSection(ctx, p.ID, "demographics")
	if err != nil {
		t.Fatalf("get section: %v", err)
	}
	d, ok := v.(DemographicsView)
	if !ok || d.FirstName != "Ana" {
		t.Fatalf("unexpected section value %#v", v)
	}
	if d.DOB != "02-05-1990" {
		t.Errorf("dob should be in display form, got %q", d.DOB)
	}
	if _, err := svc.GetSection(ctx, p.ID, "medical-history.lab-reports"); err != nil {
		t.Errorf("expected sub-path lookup to work, got %v", err)
	}
	if _, err := svc.GetSection(ctx, p.ID, "billing"); !apperr.IsNotFound(err) {
		t.Errorf("expected not found for unknown section, got %v", err)
	}
	if _, err := svc.GetSection(ctx, p.ID, "medical_history.xrays"); !apperr.IsNotFound(err) {
		t.Errorf("expected not found for unknown sub-path, got %v", err)
	}
}

func TestCompleteness(t *testing.T) {
	p := &Patient{}
	c := p.Completeness()
	if c.Complete || len(c.Missing) != 9 {
		t.Fatalf("expected 9 missing fields, got %v", c.Missing)
	}

	p.ContactInfo = &ContactInfo{Email: "a@b.c", Mobile: normalize.Phone{Code: "+91", Number: "9876543210"}}
	p.Insurance = &Insurance{Primary: InsurancePlan{
		Company: "Acme", PolicyNumber: "P1", GroupNumber: "G1", PlanType: "PPO",
		EffectiveStart: "2024-01-01", EffectiveEnd: "2024-12-31",
	}}
	p.Address = &Address{City: "Pune"}
	if c := p.Completeness(); !c.Complete || len(c.Missing) != 0 {
		t.Errorf("expected complete, missing %v", c.Missing)
	}
}
