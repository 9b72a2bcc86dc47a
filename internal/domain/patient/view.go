package patient

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ehr/intake/internal/normalize"
	"github.com/ehr/intake/internal/platform/apperr"
	"github.com/ehr/intake/internal/platform/attachment"
)

// The views below are the presentation form of the aggregate. Keys match
// the request bodies the wizard posts and dates are rendered in the
// display layout, so a fetched section can be posted back unchanged.
// Server-owned values (uploads, derived fields) ride along and are
// ignored on input.

// ReadOnly accepts a key that a view carries but a request does not
// take. Its value is ignored.
type ReadOnly struct{}

func (*ReadOnly) UnmarshalJSON([]byte) error { return nil }

// Presenter renders sections in presentation form.
type Presenter struct {
	opts normalize.Options
}

func NewPresenter(opts normalize.Options) Presenter {
	return Presenter{opts: opts}
}

type AddressView struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	District   string `json:"district"`
	State      string `json:"state"`
	Country    string `json:"country"`
}

type DemographicsView struct {
	FirstName  string       `json:"firstName"`
	MiddleName string       `json:"middleName,omitempty"`
	LastName   string       `json:"lastName"`
	DOB        string       `json:"dob"`
	Gender     string       `json:"gender"`
	BloodGroup string       `json:"bloodGroup,omitempty"`
	Occupation string       `json:"occupation,omitempty"`
	Aadhaar    string       `json:"aadhaar,omitempty"`
	PAN        string       `json:"pan,omitempty"`
	Address    *AddressView `json:"address"`
}

type PatientView struct {
	ID uuid.UUID `json:"id"`
	DemographicsView

	ContactInfo       *ContactInfoView   `json:"contactInfo"`
	Insurance         *InsuranceView     `json:"insurance"`
	Ailments          []AilmentView      `json:"ailments"`
	Allergies         []AllergyView      `json:"allergies"`
	MedicalHistory    MedicalHistoryView `json:"medicalHistory"`
	MedicationHistory []MedicationView   `json:"medicationHistory"`
	Vitals            *VitalsView        `json:"vitals"`
	FamilyHistory     *FamilyHistoryView `json:"familyHistory"`
	SocialHistory     SocialHistoryView  `json:"socialHistory"`

	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (pr Presenter) Patient(p *Patient) PatientView {
	return PatientView{
		ID:                p.ID,
		DemographicsView:  pr.Demographics(p.Demographics),
		ContactInfo:       pr.ContactInfo(p.ContactInfo),
		Insurance:         pr.Insurance(p.Insurance),
		Ailments:          pr.Ailments(p.Ailments),
		Allergies:         pr.Allergies(p.Allergies),
		MedicalHistory:    pr.MedicalHistory(p.MedicalHistory),
		MedicationHistory: pr.Medications(p.MedicationHistory),
		Vitals:            pr.Vitals(p.Vitals),
		FamilyHistory:     pr.FamilyHistory(p.FamilyHistory),
		SocialHistory:     pr.SocialHistory(p.SocialHistory),
		Version:           p.Version,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func (pr Presenter) Patients(ps []*Patient) []PatientView {
	out := make([]PatientView, 0, len(ps))
	for _, p := range ps {
		out = append(out, pr.Patient(p))
	}
	return out
}

func (pr Presenter) Demographics(d Demographics) DemographicsView {
	v := DemographicsView{
		FirstName:  d.Name.First,
		MiddleName: d.Name.Middle,
		LastName:   d.Name.Last,
		DOB:        pr.opts.Display(d.DateOfBirth),
		Gender:     d.Gender,
		BloodGroup: d.BloodGroup,
		Occupation: d.Occupation,
		Aadhaar:    d.Aadhaar,
		PAN:        d.PAN,
	}
	if a := d.Address; a != nil {
		v.Address = &AddressView{
			Street: a.Street, City: a.City, PostalCode: a.PostalCode,
			District: a.District, State: a.State, Country: a.Country,
		}
	}
	return v
}

type ContactInfoView struct {
	Mobile                  normalize.Phone        `json:"mobile"`
	HomePhone               *normalize.Phone       `json:"homePhone,omitempty"`
	WorkPhone               *normalize.Phone       `json:"workPhone,omitempty"`
	Email                   string                 `json:"email"`
	PreferredContactMethods []string               `json:"preferredContactMethods"`
	EmergencyContacts       []EmergencyContactView `json:"emergencyContact"`
}

type EmergencyContactView struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Relationship string          `json:"relationship"`
	Phone        normalize.Phone `json:"phone"`
	Email        string          `json:"email,omitempty"`
}

func (pr Presenter) ContactInfo(ci *ContactInfo) *ContactInfoView {
	if ci == nil {
		return nil
	}
	v := &ContactInfoView{
		Mobile:                  ci.Mobile,
		HomePhone:               ci.HomePhone,
		WorkPhone:               ci.WorkPhone,
		Email:                   ci.Email,
		PreferredContactMethods: nonNil(ci.PreferredContactMethods),
		EmergencyContacts:       make([]EmergencyContactView, 0, len(ci.EmergencyContacts)),
	}
	for _, ec := range ci.EmergencyContacts {
		v.EmergencyContacts = append(v.EmergencyContacts, EmergencyContactView{
			ID: ec.ID, Name: ec.Name, Relationship: ec.Relationship, Phone: ec.Phone, Email: ec.Email,
		})
	}
	return v
}

type InsurancePlanView struct {
	Company        string `json:"company"`
	PolicyNumber   string `json:"policyNumber"`
	GroupNumber    string `json:"groupNumber"`
	PlanType       string `json:"planType"`
	EffectiveStart string `json:"effectiveStart"`
	EffectiveEnd   string `json:"effectiveEnd"`
}

type InsuranceView struct {
	Primary                InsurancePlanView  `json:"primary"`
	Secondary              *InsurancePlanView `json:"secondary,omitempty"`
	InsuranceContactNumber normalize.Phone    `json:"insuranceContactNumber"`
	InsuranceCardImage     *FileView          `json:"insuranceCardImage,omitempty"`
}

func (pr Presenter) plan(p InsurancePlan) InsurancePlanView {
	return InsurancePlanView{
		Company:        p.Company,
		PolicyNumber:   p.PolicyNumber,
		GroupNumber:    p.GroupNumber,
		PlanType:       p.PlanType,
		EffectiveStart: pr.opts.Display(p.EffectiveStart),
		EffectiveEnd:   pr.opts.Display(p.EffectiveEnd),
	}
}

func (pr Presenter) Insurance(ins *Insurance) *InsuranceView {
	if ins == nil {
		return nil
	}
	v := &InsuranceView{
		Primary:                pr.plan(ins.Primary),
		InsuranceContactNumber: ins.InsuranceContactNumber,
		InsuranceCardImage:     File(ins.InsuranceCardImage),
	}
	if ins.Secondary != nil {
		sec := pr.plan(*ins.Secondary)
		v.Secondary = &sec
	}
	return v
}

// FileView is an uploaded file as the client sees it. The storage key
// stays on the server.
type FileView struct {
	ID          uuid.UUID           `json:"id"`
	Category    attachment.Category `json:"category"`
	FileName    string              `json:"fileName"`
	ContentType string              `json:"contentType"`
	Size        int64               `json:"size"`
	Location    string              `json:"location"`
	UploadedAt  time.Time           `json:"uploadedAt"`
}

func File(ref *attachment.Reference) *FileView {
	if ref == nil {
		return nil
	}
	return &FileView{
		ID:          ref.ID,
		Category:    ref.Category,
		FileName:    ref.FileName,
		ContentType: ref.ContentType,
		Size:        ref.Size,
		Location:    ref.Location,
		UploadedAt:  ref.UploadedAt,
	}
}

type AilmentView struct {
	ID                    uuid.UUID  `json:"id"`
	ProblemName           string     `json:"problemName"`
	ICDCode               string     `json:"icdCode,omitempty"`
	Description           string     `json:"description,omitempty"`
	Status                string     `json:"status"`
	Severity              string     `json:"severity"`
	Pain                  string     `json:"pain"`
	DateOfOnset           string     `json:"dateOfOnset,omitempty"`
	RiskFactor            string     `json:"riskFactor,omitempty"`
	Comorbidities         string     `json:"comorbidities,omitempty"`
	MedicationSideEffects string     `json:"medicationSideEffects,omitempty"`
	TreatmentPlan         string     `json:"treatmentPlan,omitempty"`
	TestResults           []FileView `json:"testResults"`
}

func (pr Presenter) Ailments(list []Ailment) []AilmentView {
	out := make([]AilmentView, 0, len(list))
	for _, a := range list {
		v := AilmentView{
			ID:                    a.ID,
			ProblemName:           a.Name,
			ICDCode:               a.ICDCode,
			Description:           a.Description,
			Status:                a.Status,
			Severity:              a.Severity,
			Pain:                  a.Pain,
			DateOfOnset:           pr.opts.Display(a.DateOfOnset),
			RiskFactor:            a.RiskFactor,
			Comorbidities:         a.Comorbidities,
			MedicationSideEffects: a.MedicationSideEffects,
			TreatmentPlan:         a.TreatmentPlan,
			TestResults:           make([]FileView, 0, len(a.TestResults)),
		}
		for i := range a.TestResults {
			v.TestResults = append(v.TestResults, *File(&a.TestResults[i]))
		}
		out = append(out, v)
	}
	return out
}

type AllergyView struct {
	ID            uuid.UUID `json:"id"`
	Allergen      string    `json:"allergen"`
	Category      string    `json:"category"`
	CategoryLabel string    `json:"categoryLabel"`
	Reaction      string    `json:"reaction,omitempty"`
	Severity      string    `json:"severity"`
	Status        string    `json:"status,omitempty"`
	OnsetDate     string    `json:"onsetDate,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	Source        string    `json:"source"`
}

func (pr Presenter) Allergies(list []Allergy) []AllergyView {
	out := make([]AllergyView, 0, len(list))
	for _, a := range list {
		out = append(out, AllergyView{
			ID:            a.ID,
			Allergen:      a.Allergen,
			Category:      a.Category,
			CategoryLabel: a.CategoryLabel,
			Reaction:      a.Reaction,
			Severity:      a.Severity,
			Status:        a.Status,
			OnsetDate:     pr.opts.Display(a.OnsetDate),
			Notes:         a.Notes,
			Source:        a.Source,
		})
	}
	return out
}

type ConditionView struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Status        string    `json:"status"`
	DiagnosedDate string    `json:"diagnosedDate,omitempty"`
	Notes         string    `json:"notes,omitempty"`
}

type SurgeryView struct {
	ID            uuid.UUID `json:"id"`
	Procedure     string    `json:"procedure"`
	Date          string    `json:"date"`
	Surgeon       string    `json:"surgeon,omitempty"`
	Hospital      string    `json:"hospital,omitempty"`
	Complications string    `json:"complications,omitempty"`
	Notes         string    `json:"notes,omitempty"`
}

type ImmunizationView struct {
	ID             uuid.UUID `json:"id"`
	Vaccine        string    `json:"vaccine"`
	Date           string    `json:"date"`
	DoseNumber     int       `json:"doseNumber,omitempty"`
	AdministeredBy string    `json:"administeredBy,omitempty"`
	NextDueDate    string    `json:"nextDueDate,omitempty"`
}

type LabReportView struct {
	ID             uuid.UUID `json:"id"`
	TestName       string    `json:"testName"`
	Date           string    `json:"date"`
	Result         string    `json:"result,omitempty"`
	Unit           string    `json:"unit,omitempty"`
	ReferenceRange string    `json:"referenceRange,omitempty"`
	Status         string    `json:"status"`
	Attachment     *FileView `json:"attachment,omitempty"`
}

type DiagnosticReportView struct {
	ID         uuid.UUID `json:"id"`
	ReportType string    `json:"reportType"`
	Date       string    `json:"date"`
	BodySite   string    `json:"bodySite,omitempty"`
	Findings   string    `json:"findings,omitempty"`
	Impression string    `json:"impression,omitempty"`
	Attachment *FileView `json:"attachment,omitempty"`
}

// MedicalHistoryView omits allergies; they live on the patient's one
// allergy list.
type MedicalHistoryView struct {
	Conditions        []ConditionView        `json:"conditions"`
	Surgeries         []SurgeryView          `json:"surgeries"`
	Immunizations     []ImmunizationView     `json:"immunizations"`
	LabReports        []LabReportView        `json:"labReports"`
	DiagnosticReports []DiagnosticReportView `json:"diagnosticReports"`
}

func (pr Presenter) MedicalHistory(mh MedicalHistory) MedicalHistoryView {
	return MedicalHistoryView{
		Conditions:        pr.Conditions(mh.Conditions),
		Surgeries:         pr.Surgeries(mh.Surgeries),
		Immunizations:     pr.Immunizations(mh.Immunizations),
		LabReports:        pr.LabReports(mh.LabReports),
		DiagnosticReports: pr.DiagnosticReports(mh.DiagnosticReports),
	}
}

func (pr Presenter) Conditions(list []Condition) []ConditionView {
	out := make([]ConditionView, 0, len(list))
	for _, c := range list {
		out = append(out, ConditionView{
			ID: c.ID, Name: c.Name, Status: c.Status,
			DiagnosedDate: pr.opts.Display(c.DiagnosedDate), Notes: c.Notes,
		})
	}
	return out
}

func (pr Presenter) Surgeries(list []Surgery) []SurgeryView {
	out := make([]SurgeryView, 0, len(list))
	for _, s := range list {
		out = append(out, SurgeryView{
			ID: s.ID, Procedure: s.Procedure, Date: pr.opts.Display(s.Date),
			Surgeon: s.Surgeon, Hospital: s.Hospital, Complications: s.Complications, Notes: s.Notes,
		})
	}
	return out
}

func (pr Presenter) Immunizations(list []Immunization) []ImmunizationView {
	out := make([]ImmunizationView, 0, len(list))
	for _, im := range list {
		out = append(out, ImmunizationView{
			ID: im.ID, Vaccine: im.Vaccine, Date: pr.opts.Display(im.Date), DoseNumber: im.DoseNumber,
			AdministeredBy: im.AdministeredBy, NextDueDate: pr.opts.Display(im.NextDueDate),
		})
	}
	return out
}

func (pr Presenter) LabReports(list []LabReport) []LabReportView {
	out := make([]LabReportView, 0, len(list))
	for _, lr := range list {
		out = append(out, LabReportView{
			ID: lr.ID, TestName: lr.TestName, Date: pr.opts.Display(lr.Date), Result: lr.Result,
			Unit: lr.Unit, ReferenceRange: lr.ReferenceRange, Status: lr.Status, Attachment: File(lr.Attachment),
		})
	}
	return out
}

func (pr Presenter) DiagnosticReports(list []DiagnosticReport) []DiagnosticReportView {
	out := make([]DiagnosticReportView, 0, len(list))
	for _, dr := range list {
		out = append(out, DiagnosticReportView{
			ID: dr.ID, ReportType: dr.ReportType, Date: pr.opts.Display(dr.Date), BodySite: dr.BodySite,
			Findings: dr.Findings, Impression: dr.Impression, Attachment: File(dr.Attachment),
		})
	}
	return out
}

type MedicationView struct {
	ID        uuid.UUID `json:"id"`
	Problem   string    `json:"problem,omitempty"`
	Medicine  string    `json:"medicine"`
	Dosage    string    `json:"dosage"`
	DoseTime  string    `json:"doseTime,omitempty"`
	Frequency string    `json:"frequency"`
	Duration  string    `json:"duration,omitempty"`
	Status    string    `json:"status"`
}

func (pr Presenter) Medications(list []Medication) []MedicationView {
	out := make([]MedicationView, 0, len(list))
	for _, m := range list {
		out = append(out, MedicationView{
			ID: m.ID, Problem: m.Problem, Medicine: m.Medicine, Dosage: m.Dosage,
			DoseTime: m.DoseTime, Frequency: m.Frequency, Duration: m.Duration, Status: m.Status,
		})
	}
	return out
}

// VitalsView is flat, like the vitals form.
type VitalsView struct {
	Date               string   `json:"date"`
	Time               string   `json:"time"`
	Systolic           *int     `json:"systolic,omitempty"`
	Diastolic          *int     `json:"diastolic,omitempty"`
	PulseRate          *int     `json:"pulseRate,omitempty"`
	RespiratoryRate    *int     `json:"respiratoryRate,omitempty"`
	Temperature        *float64 `json:"temperature,omitempty"`
	TemperatureUnit    string   `json:"temperatureUnit,omitempty"`
	SpO2               *int     `json:"spo2,omitempty"`
	Height             *float64 `json:"height,omitempty"`
	HeightUnit         string   `json:"heightUnit,omitempty"`
	Weight             *float64 `json:"weight,omitempty"`
	BMI                *float64 `json:"bmi,omitempty"`
	AdditionalComments string   `json:"additionalComments,omitempty"`
}

func (pr Presenter) Vitals(v *Vitals) *VitalsView {
	if v == nil {
		return nil
	}
	out := &VitalsView{
		Date:               pr.opts.Display(v.Date),
		Time:               v.Time,
		PulseRate:          v.PulseRate,
		RespiratoryRate:    v.RespiratoryRate,
		SpO2:               v.SpO2,
		Weight:             v.Weight,
		BMI:                v.BMI,
		AdditionalComments: v.AdditionalComments,
	}
	if bp := v.BloodPressure; bp != nil {
		sys, dia := bp.Systolic, bp.Diastolic
		out.Systolic, out.Diastolic = &sys, &dia
	}
	if t := v.Temperature; t != nil {
		val := t.Value
		out.Temperature, out.TemperatureUnit = &val, t.Unit
	}
	if h := v.Height; h != nil {
		val := h.Value
		out.Height, out.HeightUnit = &val, h.Unit
	}
	return out
}

type FamilyMemberView struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	DOB               string    `json:"dob,omitempty"`
	Gender            string    `json:"gender,omitempty"`
	Relationship      string    `json:"relationship"`
	Deceased          bool      `json:"deceased"`
	MedicalConditions []string  `json:"medicalConditions"`
	GeneticConditions []string  `json:"geneticConditions"`
}

type FamilyHistoryView struct {
	FamilyMembers   []FamilyMemberView `json:"familyMembers"`
	HereditaryRisks []string           `json:"hereditaryRisks"`
}

func (pr Presenter) FamilyMembers(list []FamilyMember) []FamilyMemberView {
	out := make([]FamilyMemberView, 0, len(list))
	for _, m := range list {
		out = append(out, FamilyMemberView{
			ID: m.ID, Name: m.Name, DOB: pr.opts.Display(m.DOB), Gender: m.Gender,
			Relationship: m.Relationship, Deceased: m.Deceased,
			MedicalConditions: nonNil(m.MedicalConditions),
			GeneticConditions: nonNil(m.GeneticConditions),
		})
	}
	return out
}

func (pr Presenter) FamilyHistory(fh *FamilyHistory) *FamilyHistoryView {
	if fh == nil {
		return nil
	}
	return &FamilyHistoryView{
		FamilyMembers:   pr.FamilyMembers(fh.FamilyMembers),
		HereditaryRisks: nonNil(fh.HereditaryRisks),
	}
}

type TobaccoView struct {
	Status      string   `json:"status"`
	Type        string   `json:"type,omitempty"`
	PacksPerDay *float64 `json:"packsPerDay,omitempty"`
	Years       *int     `json:"years,omitempty"`
	QuitDate    string   `json:"quitDate,omitempty"`
}

type AlcoholView struct {
	Status        string `json:"status"`
	Frequency     string `json:"frequency,omitempty"`
	DrinksPerWeek *int   `json:"drinksPerWeek,omitempty"`
}

type FinancialView struct {
	ResourceStrain string `json:"resourceStrain"`
	Notes          string `json:"notes,omitempty"`
}

type PhysicalActivityView struct {
	DaysPerWeek       int `json:"daysPerWeek"`
	MinutesPerSession int `json:"minutesPerSession"`
}

type ViolenceView struct {
	FeelsSafe bool   `json:"feelsSafe"`
	Exposed   bool   `json:"exposed"`
	Notes     string `json:"notes,omitempty"`
}

type NutritionView struct {
	Diet        string `json:"diet"`
	MealsPerDay *int   `json:"mealsPerDay,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// The single-answer sub-sections share the model type, whose keys are
// already one word.
type SocialHistoryView struct {
	Tobacco           *TobaccoView          `json:"tobacco"`
	Alcohol           *AlcoholView          `json:"alcohol"`
	Financial         *FinancialView        `json:"financial"`
	Education         *Education            `json:"education"`
	PhysicalActivity  *PhysicalActivityView `json:"physicalActivity"`
	Stress            *Stress               `json:"stress"`
	Isolation         *SocialIsolation      `json:"isolation"`
	Violence          *ViolenceView         `json:"violence"`
	GenderIdentity    *GenderIdentity       `json:"genderIdentity"`
	SexualOrientation *SexualOrientation    `json:"sexualOrientation"`
	Nutrition         *NutritionView        `json:"nutrition"`
	Notes             *FreeText             `json:"notes"`
}

func (pr Presenter) SocialHistory(sh SocialHistory) SocialHistoryView {
	v := SocialHistoryView{
		Education:         sh.Education,
		Stress:            sh.Stress,
		Isolation:         sh.Isolation,
		GenderIdentity:    sh.GenderIdentity,
		SexualOrientation: sh.SexualOrientation,
		Notes:             sh.Notes,
	}
	if t := sh.Tobacco; t != nil {
		v.Tobacco = &TobaccoView{Status: t.Status, Type: t.Type, PacksPerDay: t.PacksPerDay, Years: t.Years, QuitDate: pr.opts.Display(t.QuitDate)}
	}
	if a := sh.Alcohol; a != nil {
		v.Alcohol = &AlcoholView{Status: a.Status, Frequency: a.Frequency, DrinksPerWeek: a.DrinksPerWeek}
	}
	if f := sh.Financial; f != nil {
		v.Financial = &FinancialView{ResourceStrain: f.ResourceStrain, Notes: f.Notes}
	}
	if pa := sh.PhysicalActivity; pa != nil {
		v.PhysicalActivity = &PhysicalActivityView{DaysPerWeek: pa.DaysPerWeek, MinutesPerSession: pa.MinutesPerSession}
	}
	if ve := sh.Violence; ve != nil {
		v.Violence = &ViolenceView{FeelsSafe: ve.FeelsSafe, Exposed: ve.Exposed, Notes: ve.Notes}
	}
	if n := sh.Nutrition; n != nil {
		v.Nutrition = &NutritionView{Diet: n.Diet, MealsPerDay: n.MealsPerDay, Notes: n.Notes}
	}
	return v
}

// List renders any of the aggregate's element lists. Other values are
// returned unchanged.
func (pr Presenter) List(v any) any {
	switch l := v.(type) {
	case []Ailment:
		return pr.Ailments(l)
	case []Allergy:
		return pr.Allergies(l)
	case []Condition:
		return pr.Conditions(l)
	case []Surgery:
		return pr.Surgeries(l)
	case []Immunization:
		return pr.Immunizations(l)
	case []LabReport:
		return pr.LabReports(l)
	case []DiagnosticReport:
		return pr.DiagnosticReports(l)
	case []Medication:
		return pr.Medications(l)
	case []FamilyMember:
		return pr.FamilyMembers(l)
	}
	return v
}

// SocialEntry renders one saved social history sub-section.
func (pr Presenter) SocialEntry(v any) any {
	switch x := v.(type) {
	case *TobaccoUse:
		return pr.SocialHistory(SocialHistory{Tobacco: x}).Tobacco
	case *AlcoholUse:
		return pr.SocialHistory(SocialHistory{Alcohol: x}).Alcohol
	case *FinancialStrain:
		return pr.SocialHistory(SocialHistory{Financial: x}).Financial
	case *PhysicalActivity:
		return pr.SocialHistory(SocialHistory{PhysicalActivity: x}).PhysicalActivity
	case *ViolenceExposure:
		return pr.SocialHistory(SocialHistory{Violence: x}).Violence
	case *Nutrition:
		return pr.SocialHistory(SocialHistory{Nutrition: x}).Nutrition
	}
	return v
}

// Section renders a section, or a sub-key of it, in presentation form.
// path is a section name optionally followed by a dotted sub-key, e.g.
// "medical_history.lab_reports" or "social-history.tobacco".
func (pr Presenter) Section(p *Patient, path string) (any, error) {
	head, rest, _ := strings.Cut(path, ".")
	sec, err := ParseSection(head)
	if err != nil {
		return nil, err
	}
	view := pr.Patient(p)
	var v any
	switch sec {
	case SectionDemographics:
		v = view.DemographicsView
	case SectionContactInfo:
		v = view.ContactInfo
	case SectionInsurance:
		v = view.Insurance
	case SectionAilments:
		v = view.Ailments
	case SectionAllergies:
		v = view.Allergies
	case SectionMedicalHistory:
		v = view.MedicalHistory
	case SectionMedicationHistory:
		v = view.MedicationHistory
	case SectionVitals:
		v = view.Vitals
	case SectionFamilyHistory:
		v = view.FamilyHistory
	case SectionSocialHistory:
		v = view.SocialHistory
	}
	if rest == "" {
		return v, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, apperr.Storage(err, "encode %s", sec)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, apperr.NotFound("section %s has no sub-path %q", sec, rest)
	}
	sub, ok := fields[lowerCamel(rest)]
	if !ok {
		return nil, apperr.NotFound("section %s has no sub-path %q", sec, rest)
	}
	return sub, nil
}

// lowerCamel turns "lab_reports" or "lab-reports" into "labReports".
func lowerCamel(s string) string {
	parts := strings.FieldsFunc(strings.TrimSpace(s), func(r rune) bool { return r == '_' || r == '-' })
	for i := range parts {
		if i == 0 {
			parts[i] = strings.ToLower(parts[i][:1]) + parts[i][1:]
			continue
		}
		parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
	}
	return strings.Join(parts, "")
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
