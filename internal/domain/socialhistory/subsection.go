package socialhistory

import (
	"strings"
	"unicode"

	"github.com/ehr/intake/internal/domain/patient"
	"github.com/ehr/intake/internal/normalize"
	"github.com/ehr/intake/internal/platform/apperr"
	"github.com/ehr/intake/internal/platform/respond"
)

// Sub names one social history sub-section.
type Sub string

const (
	SubTobacco           Sub = "tobacco"
	SubAlcohol           Sub = "alcohol"
	SubFinancial         Sub = "financial"
	SubEducation         Sub = "education"
	SubPhysicalActivity  Sub = "physical_activity"
	SubStress            Sub = "stress"
	SubIsolation         Sub = "isolation"
	SubViolence          Sub = "violence"
	SubGenderIdentity    Sub = "gender_identity"
	SubSexualOrientation Sub = "sexual_orientation"
	SubNutrition         Sub = "nutrition"
	SubNotes             Sub = "notes"
)

// subsection binds a request type to the field of patient.SocialHistory
// it fills.
type subsection struct {
	save  func(sh *patient.SocialHistory, raw []byte, opts normalize.Options) (any, error)
	clear func(sh *patient.SocialHistory)
}

type request[T any] interface {
	normalize(v *apperr.Validator, opts normalize.Options) *T
}

func bind[T, R any, PR interface {
	*R
	request[T]
}](field func(*patient.SocialHistory) **T) subsection {
	return subsection{
		save: func(sh *patient.SocialHistory, raw []byte, opts normalize.Options) (any, error) {
			var req R
			if err := respond.Decode(raw, &req); err != nil {
				return nil, err
			}
			v := apperr.NewValidator()
			out := PR(&req).normalize(v, opts)
			if err := v.Err(); err != nil {
				return nil, err
			}
			*field(sh) = out
			return out, nil
		},
		clear: func(sh *patient.SocialHistory) { *field(sh) = nil },
	}
}

var subsections = map[Sub]subsection{
	SubTobacco: bind[patient.TobaccoUse, TobaccoRequest](func(sh *patient.SocialHistory) **patient.TobaccoUse { return &sh.Tobacco }),
	SubAlcohol: bind[patient.AlcoholUse, AlcoholRequest](func(sh *patient.SocialHistory) **patient.AlcoholUse { return &sh.Alcohol }),
	SubFinancial: bind[patient.FinancialStrain, FinancialRequest](func(sh *patient.SocialHistory) **patient.FinancialStrain {
		return &sh.Financial
	}),
	SubEducation: bind[patient.Education, EducationRequest](func(sh *patient.SocialHistory) **patient.Education { return &sh.Education }),
	SubPhysicalActivity: bind[patient.PhysicalActivity, PhysicalActivityRequest](func(sh *patient.SocialHistory) **patient.PhysicalActivity {
		return &sh.PhysicalActivity
	}),
	SubStress: bind[patient.Stress, StressRequest](func(sh *patient.SocialHistory) **patient.Stress { return &sh.Stress }),
	SubIsolation: bind[patient.SocialIsolation, IsolationRequest](func(sh *patient.SocialHistory) **patient.SocialIsolation {
		return &sh.Isolation
	}),
	SubViolence: bind[patient.ViolenceExposure, ViolenceRequest](func(sh *patient.SocialHistory) **patient.ViolenceExposure {
		return &sh.Violence
	}),
	SubGenderIdentity: bind[patient.GenderIdentity, GenderIdentityRequest](func(sh *patient.SocialHistory) **patient.GenderIdentity {
		return &sh.GenderIdentity
	}),
	SubSexualOrientation: bind[patient.SexualOrientation, SexualOrientationRequest](func(sh *patient.SocialHistory) **patient.SexualOrientation {
		return &sh.SexualOrientation
	}),
	SubNutrition: bind[patient.Nutrition, NutritionRequest](func(sh *patient.SocialHistory) **patient.Nutrition { return &sh.Nutrition }),
	SubNotes:     bind[patient.FreeText, NotesRequest](func(sh *patient.SocialHistory) **patient.FreeText { return &sh.Notes }),
}

// ParseSub accepts snake_case, kebab-case or camelCase names. Unknown
// names are NotFound, like any other unknown route target.
func ParseSub(s string) (Sub, error) {
	var b strings.Builder
	prev := ' '
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsUpper(r) && unicode.IsLower(prev) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
		prev = r
	}
	name := Sub(strings.ReplaceAll(b.String(), "-", "_"))
	if _, ok := subsections[name]; !ok {
		return "", apperr.NotFound("unknown social history section %q", s)
	}
	return name, nil
}
