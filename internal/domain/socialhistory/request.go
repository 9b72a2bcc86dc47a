package socialhistory

import (
	"strings"

	"github.com/ehr/intake/internal/domain/patient"
	"github.com/ehr/intake/internal/normalize"
	"github.com/ehr/intake/internal/platform/apperr"
)

var (
	TobaccoStatuses = normalize.NewEnum("tobacco status", "Never", "Former", "Current", "Unknown").CaseInsensitive()
	TobaccoTypes    = normalize.NewEnum("tobacco type", "Cigarettes", "Cigars", "Pipe", "Chewing", "Vaping", "Other").CaseInsensitive().WithSentinel(normalize.SentinelSelect)
	AlcoholStatuses = normalize.NewEnum("alcohol status", "Never", "Former", "Current").CaseInsensitive()
	DrinkFrequency  = normalize.NewEnum("drinking frequency",
		"Never", "Monthly or less", "2-4 times a month", "2-3 times a week", "4 or more times a week").CaseInsensitive().WithSentinel(normalize.SentinelSelect)
	ResourceStrain = normalize.NewEnum("resource strain",
		"Very hard", "Hard", "Somewhat hard", "Not very hard", "Not hard at all").CaseInsensitive()
	EducationLevels = normalize.NewEnum("education level",
		"Less than high school", "High school", "Some college", "Bachelor's degree", "Master's degree", "Doctorate", "Other").CaseInsensitive()
	StressLevels = normalize.NewEnum("stress level",
		"Not at all", "A little bit", "Somewhat", "Quite a bit", "Very much").CaseInsensitive()
	IsolationFrequency = normalize.NewEnum("isolation frequency", "Never", "Rarely", "Sometimes", "Often", "Always").CaseInsensitive()
	GenderIdentities   = normalize.NewEnum("gender identity",
		"Male", "Female", "Transgender male", "Transgender female", "Non-binary", "Other", "Prefer not to say").CaseInsensitive()
	SexualOrientations = normalize.NewEnum("sexual orientation",
		"Heterosexual", "Homosexual", "Bisexual", "Other", "Prefer not to say").CaseInsensitive()
	Diets = normalize.NewEnum("diet",
		"Regular", "Vegetarian", "Vegan", "Diabetic", "Low sodium", "Gluten free", "Other").CaseInsensitive()
)

// requiredEnum records a required select and returns its canonical value.
func requiredEnum(v *apperr.Validator, field, value string, e normalize.Enum) string {
	if !v.Required(field, value) {
		return ""
	}
	out, err := e.Canonical(value)
	v.Check(field, err)
	return out
}

func optionalEnum(v *apperr.Validator, field, value string, e normalize.Enum) string {
	out, err := e.Optional(value)
	v.Check(field, err)
	return out
}

type TobaccoRequest struct {
	Status      string   `json:"status"`
	Type        string   `json:"type"`
	PacksPerDay *float64 `json:"packsPerDay"`
	Years       *int     `json:"years"`
	QuitDate    string   `json:"quitDate"`
}

func (r *TobaccoRequest) normalize(v *apperr.Validator, opts normalize.Options) *patient.TobaccoUse {
	out := &patient.TobaccoUse{
		Status:      requiredEnum(v, "status", r.Status, TobaccoStatuses),
		Type:        optionalEnum(v, "type", r.Type, TobaccoTypes),
		PacksPerDay: r.PacksPerDay,
		Years:       r.Years,
	}
	if r.PacksPerDay != nil {
		v.Range("packsPerDay", *r.PacksPerDay, 0, 10)
	}
	if r.Years != nil {
		v.Range("years", float64(*r.Years), 0, 100)
	}
	var err error
	out.QuitDate, err = opts.Date(r.QuitDate)
	v.Check("quitDate", err)
	if out.QuitDate != "" && out.Status != "Former" && out.Status != "" {
		v.Add("quitDate", apperr.ConstraintFormat, "quitDate only applies to former tobacco users")
	}
	return out
}

type AlcoholRequest struct {
	Status        string `json:"status"`
	Frequency     string `json:"frequency"`
	DrinksPerWeek *int   `json:"drinksPerWeek"`
}

func (r *AlcoholRequest) normalize(v *apperr.Validator, _ normalize.Options) *patient.AlcoholUse {
	if r.DrinksPerWeek != nil {
		v.Range("drinksPerWeek", float64(*r.DrinksPerWeek), 0, 200)
	}
	return &patient.AlcoholUse{
		Status:        requiredEnum(v, "status", r.Status, AlcoholStatuses),
		Frequency:     optionalEnum(v, "frequency", r.Frequency, DrinkFrequency),
		DrinksPerWeek: r.DrinksPerWeek,
	}
}

type FinancialRequest struct {
	ResourceStrain string `json:"resourceStrain"`
	Notes          string `json:"notes"`
}

func (r *FinancialRequest) normalize(v *apperr.Validator, _ normalize.Options) *patient.FinancialStrain {
	return &patient.FinancialStrain{
		ResourceStrain: requiredEnum(v, "resourceStrain", r.ResourceStrain, ResourceStrain),
		Notes:          strings.TrimSpace(r.Notes),
	}
}

type EducationRequest struct {
	Level string `json:"level"`
}

func (r *EducationRequest) normalize(v *apperr.Validator, _ normalize.Options) *patient.Education {
	return &patient.Education{Level: requiredEnum(v, "level", r.Level, EducationLevels)}
}

type PhysicalActivityRequest struct {
	DaysPerWeek       *int `json:"daysPerWeek"`
	MinutesPerSession *int `json:"minutesPerSession"`
}

func (r *PhysicalActivityRequest) normalize(v *apperr.Validator, _ normalize.Options) *patient.PhysicalActivity {
	out := &patient.PhysicalActivity{}
	if v.RequiredPresent("daysPerWeek", r.DaysPerWeek != nil) && v.Range("daysPerWeek", float64(*r.DaysPerWeek), 0, 7) {
		out.DaysPerWeek = *r.DaysPerWeek
	}
	if v.RequiredPresent("minutesPerSession", r.MinutesPerSession != nil) && v.Range("minutesPerSession", float64(*r.MinutesPerSession), 0, 1440) {
		out.MinutesPerSession = *r.MinutesPerSession
	}
	return out
}

type StressRequest struct {
	Level string `json:"level"`
}

func (r *StressRequest) normalize(v *apperr.Validator, _ normalize.Options) *patient.Stress {
	return &patient.Stress{Level: requiredEnum(v, "level", r.Level, StressLevels)}
}

type IsolationRequest struct {
	Frequency string `json:"frequency"`
}

func (r *IsolationRequest) normalize(v *apperr.Validator, _ normalize.Options) *patient.SocialIsolation {
	return &patient.SocialIsolation{Frequency: requiredEnum(v, "frequency", r.Frequency, IsolationFrequency)}
}

type ViolenceRequest struct {
	FeelsSafe *bool  `json:"feelsSafe"`
	Exposed   *bool  `json:"exposed"`
	Notes     string `json:"notes"`
}

func (r *ViolenceRequest) normalize(v *apperr.Validator, _ normalize.Options) *patient.ViolenceExposure {
	out := &patient.ViolenceExposure{Notes: strings.TrimSpace(r.Notes)}
	if v.RequiredPresent("feelsSafe", r.FeelsSafe != nil) {
		out.FeelsSafe = *r.FeelsSafe
	}
	if v.RequiredPresent("exposed", r.Exposed != nil) {
		out.Exposed = *r.Exposed
	}
	return out
}

type GenderIdentityRequest struct {
	Identity string `json:"identity"`
}

func (r *GenderIdentityRequest) normalize(v *apperr.Validator, _ normalize.Options) *patient.GenderIdentity {
	return &patient.GenderIdentity{Identity: requiredEnum(v, "identity", r.Identity, GenderIdentities)}
}

type SexualOrientationRequest struct {
	Orientation string `json:"orientation"`
}

func (r *SexualOrientationRequest) normalize(v *apperr.Validator, _ normalize.Options) *patient.SexualOrientation {
	return &patient.SexualOrientation{Orientation: requiredEnum(v, "orientation", r.Orientation, SexualOrientations)}
}

type NutritionRequest struct {
	Diet        string `json:"diet"`
	MealsPerDay *int   `json:"mealsPerDay"`
	Notes       string `json:"notes"`
}

func (r *NutritionRequest) normalize(v *apperr.Validator, _ normalize.Options) *patient.Nutrition {
	if r.MealsPerDay != nil {
		v.Range("mealsPerDay", float64(*r.MealsPerDay), 1, 10)
	}
	return &patient.Nutrition{
		Diet:        requiredEnum(v, "diet", r.Diet, Diets),
		MealsPerDay: r.MealsPerDay,
		Notes:       strings.TrimSpace(r.Notes),
	}
}

type NotesRequest struct {
	Text string `json:"text"`
}

func (r *NotesRequest) normalize(v *apperr.Validator, _ normalize.Options) *patient.FreeText {
	text := strings.TrimSpace(r.Text)
	v.Required("text", text)
	return &patient.FreeText{Text: text}
}
