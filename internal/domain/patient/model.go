package patient

import (
	"time"

	"github.com/google/uuid"

	"github.com/ehr/intake/internal/normalize"
	"github.com/ehr/intake/internal/platform/attachment"
)

// Patient is the root aggregate: one record per person, persisted as a
// unit by a Store. Dates are ISO-8601 (YYYY-MM-DD) everywhere inside the
// aggregate; presentation formats are converted at the request boundary.
type Patient struct {
	ID uuid.UUID `json:"patient_id"`
	Demographics

	ContactInfo       *ContactInfo   `json:"contact_info"`
	Insurance         *Insurance     `json:"insurance"`
	Ailments          []Ailment      `json:"ailments"`
	Allergies         []Allergy      `json:"allergies"`
	MedicalHistory    MedicalHistory `json:"medical_history"`
	MedicationHistory []Medication   `json:"medication_history"`
	Vitals            *Vitals        `json:"vitals"`
	FamilyHistory     *FamilyHistory `json:"family_history"`
	SocialHistory     SocialHistory  `json:"social_history"`

	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Name struct {
	First  string `json:"first"`
	Middle string `json:"middle,omitempty"`
	Last   string `json:"last"`
}

type Address struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	District   string `json:"district"`
	State      string `json:"state"`
	Country    string `json:"country"`
}

// IsEmpty reports whether no address field is filled.
func (a *Address) IsEmpty() bool {
	return a == nil || (a.Street == "" && a.City == "" && a.PostalCode == "" &&
		a.District == "" && a.State == "" && a.Country == "")
}

// Demographics is the section written by patient creation and update.
type Demographics struct {
	Name        Name     `json:"name"`
	DateOfBirth string   `json:"date_of_birth"`
	Gender      string   `json:"gender"`
	BloodGroup  string   `json:"blood_group"`
	Address     *Address `json:"address"`
	Occupation  string   `json:"occupation"`
	Aadhaar     string   `json:"aadhaar,omitempty"`
	PAN         string   `json:"pan,omitempty"`
}

type ContactInfo struct {
	Mobile                  normalize.Phone    `json:"mobile"`
	HomePhone               *normalize.Phone   `json:"home_phone,omitempty"`
	WorkPhone               *normalize.Phone   `json:"work_phone,omitempty"`
	Email                   string             `json:"email"`
	PreferredContactMethods []string           `json:"preferred_contact_methods"`
	EmergencyContacts       []EmergencyContact `json:"emergency_contact"`
}

type EmergencyContact struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Relationship string          `json:"relationship"`
	Phone        normalize.Phone `json:"phone"`
	Email        string          `json:"email,omitempty"`
}

type InsurancePlan struct {
	Company        string `json:"company"`
	PolicyNumber   string `json:"policy_number"`
	GroupNumber    string `json:"group_number"`
	PlanType       string `json:"plan_type"`
	EffectiveStart string `json:"effective_start"`
	EffectiveEnd   string `json:"effective_end"`
}

type Insurance struct {
	Primary                InsurancePlan         `json:"primary"`
	Secondary              *InsurancePlan        `json:"secondary,omitempty"`
	InsuranceContactNumber normalize.Phone       `json:"insurance_contact_number"`
	InsuranceCardImage     *attachment.Reference `json:"insurance_card_image,omitempty"`
}

type Ailment struct {
	ID                    uuid.UUID              `json:"id"`
	Name                  string                 `json:"name"`
	ICDCode               string                 `json:"icd_code,omitempty"`
	Description           string                 `json:"description,omitempty"`
	Status                string                 `json:"status"`
	Severity              string                 `json:"severity"`
	Pain                  string                 `json:"pain"`
	DateOfOnset           string                 `json:"date_of_onset,omitempty"`
	RiskFactor            string                 `json:"risk_factor,omitempty"`
	Comorbidities         string                 `json:"comorbidities,omitempty"`
	MedicationSideEffects string                 `json:"medication_side_effects,omitempty"`
	TreatmentPlan         string                 `json:"treatment_plan,omitempty"`
	TestResults           []attachment.Reference `json:"test_results"`
}

// Allergy sources for the unified allergy list.
const (
	AllergySourceIntake         = "intake"
	AllergySourceMedicalHistory = "medical_history"
)

type Allergy struct {
	ID            uuid.UUID `json:"id"`
	Allergen      string    `json:"allergen"`
	Category      string    `json:"category"`
	CategoryLabel string    `json:"category_label"`
	Reaction      string    `json:"reaction,omitempty"`
	Severity      string    `json:"severity"`
	Status        string    `json:"status"`
	OnsetDate     string    `json:"onset_date,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	Source        string    `json:"source"`
}

type MedicalHistory struct {
	Conditions        []Condition        `json:"conditions"`
	Surgeries         []Surgery          `json:"surgeries"`
	Immunizations     []Immunization     `json:"immunizations"`
	LabReports        []LabReport        `json:"lab_reports"`
	DiagnosticReports []DiagnosticReport `json:"diagnostic_reports"`
}

type Condition struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Status        string    `json:"status"`
	DiagnosedDate string    `json:"diagnosed_date,omitempty"`
	Notes         string    `json:"notes,omitempty"`
}

type Surgery struct {
	ID            uuid.UUID `json:"id"`
	Procedure     string    `json:"procedure"`
	Date          string    `json:"date"`
	Surgeon       string    `json:"surgeon,omitempty"`
	Hospital      string    `json:"hospital,omitempty"`
	Complications string    `json:"complications,omitempty"`
	Notes         string    `json:"notes,omitempty"`
}

type Immunization struct {
	ID             uuid.UUID `json:"id"`
	Vaccine        string    `json:"vaccine"`
	Date           string    `json:"date"`
	DoseNumber     int       `json:"dose_number,omitempty"`
	AdministeredBy string    `json:"administered_by,omitempty"`
	NextDueDate    string    `json:"next_due_date,omitempty"`
}

type LabReport struct {
	ID             uuid.UUID             `json:"id"`
	TestName       string                `json:"test_name"`
	Date           string                `json:"date"`
	Result         string                `json:"result,omitempty"`
	Unit           string                `json:"unit,omitempty"`
	ReferenceRange string                `json:"reference_range,omitempty"`
	Status         string                `json:"status"`
	Attachment     *attachment.Reference `json:"attachment,omitempty"`
}

type DiagnosticReport struct {
	ID         uuid.UUID             `json:"id"`
	ReportType string                `json:"report_type"`
	Date       string                `json:"date"`
	BodySite   string                `json:"body_site,omitempty"`
	Findings   string                `json:"findings,omitempty"`
	Impression string                `json:"impression,omitempty"`
	Attachment *attachment.Reference `json:"attachment,omitempty"`
}

type Medication struct {
	ID        uuid.UUID `json:"id"`
	Problem   string    `json:"problem,omitempty"`
	Medicine  string    `json:"medicine"`
	Dosage    string    `json:"dosage"`
	DoseTime  string    `json:"dose_time"`
	Frequency string    `json:"frequency"`
	Duration  string    `json:"duration"`
	Status    string    `json:"status"`
}

type BloodPressure struct {
	Systolic  int `json:"systolic"`
	Diastolic int `json:"diastolic"`
}

type Measure struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// Vitals is a single snapshot; each save replaces it entirely.
type Vitals struct {
	Date               string         `json:"date"`
	Time               string         `json:"time"`
	BloodPressure      *BloodPressure `json:"blood_pressure,omitempty"`
	PulseRate          *int           `json:"pulse_rate,omitempty"`
	RespiratoryRate    *int           `json:"respiratory_rate,omitempty"`
	Temperature        *Measure       `json:"temperature,omitempty"`
	SpO2               *int           `json:"spo2,omitempty"`
	Height             *Measure       `json:"height,omitempty"`
	Weight             *float64       `json:"weight,omitempty"`
	BMI                *float64       `json:"bmi,omitempty"`
	AdditionalComments string         `json:"additional_comments,omitempty"`
}

type FamilyMember struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	DOB               string    `json:"dob,omitempty"`
	Gender            string    `json:"gender"`
	Relationship      string    `json:"relationship"`
	Deceased          bool      `json:"deceased"`
	MedicalConditions []string  `json:"medical_conditions"`
	GeneticConditions []string  `json:"genetic_conditions"`
}

// FamilyHistory.HereditaryRisks is derived from the members on every write.
type FamilyHistory struct {
	FamilyMembers   []FamilyMember `json:"family_members"`
	HereditaryRisks []string       `json:"hereditary_risks"`
}

// SocialHistory holds independently nullable sub-sections, each saved on
// its own.
type SocialHistory struct {
	Tobacco           *TobaccoUse        `json:"tobacco"`
	Alcohol           *AlcoholUse        `json:"alcohol"`
	Financial         *FinancialStrain   `json:"financial"`
	Education         *Education         `json:"education"`
	PhysicalActivity  *PhysicalActivity  `json:"physical_activity"`
	Stress            *Stress            `json:"stress"`
	Isolation         *SocialIsolation   `json:"isolation"`
	Violence          *ViolenceExposure  `json:"violence"`
	GenderIdentity    *GenderIdentity    `json:"gender_identity"`
	SexualOrientation *SexualOrientation `json:"sexual_orientation"`
	Nutrition         *Nutrition         `json:"nutrition"`
	Notes             *FreeText          `json:"notes"`
}

type TobaccoUse struct {
	Status      string   `json:"status"`
	Type        string   `json:"type,omitempty"`
	PacksPerDay *float64 `json:"packs_per_day,omitempty"`
	Years       *int     `json:"years,omitempty"`
	QuitDate    string   `json:"quit_date,omitempty"`
}

type AlcoholUse struct {
	Status        string `json:"status"`
	Frequency     string `json:"frequency"`
	DrinksPerWeek *int   `json:"drinks_per_week,omitempty"`
}

type FinancialStrain struct {
	ResourceStrain string `json:"resource_strain"`
	Notes          string `json:"notes,omitempty"`
}

type Education struct {
	Level string `json:"level"`
}

type PhysicalActivity struct {
	DaysPerWeek       int `json:"days_per_week"`
	MinutesPerSession int `json:"minutes_per_session"`
}

type Stress struct {
	Level string `json:"level"`
}

type SocialIsolation struct {
	Frequency string `json:"frequency"`
}

type ViolenceExposure struct {
	FeelsSafe bool   `json:"feels_safe"`
	Exposed   bool   `json:"exposed"`
	Notes     string `json:"notes,omitempty"`
}

type GenderIdentity struct {
	Identity string `json:"identity"`
}

type SexualOrientation struct {
	Orientation string `json:"orientation"`
}

type Nutrition struct {
	Diet        string `json:"diet"`
	MealsPerDay *int   `json:"meals_per_day,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

type FreeText struct {
	Text string `json:"text"`
}
