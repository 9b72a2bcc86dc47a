package vitals

import (
	"math"
	"regexp"
	"strings"

	"github.com/ehr/intake/internal/domain/patient"
	"github.com/ehr/intake/internal/normalize"
	"github.com/ehr/intake/internal/platform/apperr"
)

var (
	TemperatureUnits = normalize.NewEnum("temperature unit", "C", "F").CaseInsensitive()
	HeightUnits      = normalize.NewEnum("height unit", "cm", "in").CaseInsensitive()

	timePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

// Request is the vitals form. Measurements are flat on the wire.
type Request struct {
	patient.Owner
	Date               string   `json:"date"`
	Time               string   `json:"time"`
	Systolic           *int     `json:"systolic"`
	Diastolic          *int     `json:"diastolic"`
	PulseRate          *int     `json:"pulseRate"`
	RespiratoryRate    *int     `json:"respiratoryRate"`
	Temperature        *float64 `json:"temperature"`
	TemperatureUnit    string   `json:"temperatureUnit"`
	SpO2               *int     `json:"spo2"`
	Height             *float64 `json:"height"`
	HeightUnit         string   `json:"heightUnit"`
	Weight             *float64 `json:"weight"`
	BMI                *float64 `json:"bmi"`
	AdditionalComments string   `json:"additionalComments"`
}

// Normalize builds a complete snapshot. Fields left out of the request
// are absent from the snapshot.
func (r *Request) Normalize(opts normalize.Options) (*patient.Vitals, error) {
	v := apperr.NewValidator()
	out := &patient.Vitals{AdditionalComments: strings.TrimSpace(r.AdditionalComments)}

	if v.Required("date", r.Date) {
		var err error
		out.Date, err = opts.Date(r.Date)
		v.Check("date", err)
	}
	if v.Required("time", r.Time) {
		out.Time = strings.TrimSpace(r.Time)
		if !timePattern.MatchString(out.Time) {
			v.Add("time", apperr.ConstraintFormat, "time must be HH:MM (24 hour)")
		}
	}

	switch {
	case r.Systolic != nil && r.Diastolic != nil:
		okS := v.Range("systolic", float64(*r.Systolic), 50, 300)
		okD := v.Range("diastolic", float64(*r.Diastolic), 30, 200)
		if okS && okD && *r.Systolic <= *r.Diastolic {
			v.Add("systolic", apperr.ConstraintRange, "systolic must be above diastolic")
		}
		out.BloodPressure = &patient.BloodPressure{Systolic: *r.Systolic, Diastolic: *r.Diastolic}
	case r.Systolic != nil:
		v.RequiredPresent("diastolic", false)
	case r.Diastolic != nil:
		v.RequiredPresent("systolic", false)
	}

	out.PulseRate = intIn(v, "pulseRate", r.PulseRate, 20, 300)
	out.RespiratoryRate = intIn(v, "respiratoryRate", r.RespiratoryRate, 4, 80)
	out.SpO2 = intIn(v, "spo2", r.SpO2, 50, 100)

	if r.Temperature != nil {
		unit, err := TemperatureUnits.Canonical(defaultUnit(r.TemperatureUnit, "C"))
		if v.Check("temperatureUnit", err) {
			lo, hi := 25.0, 45.0
			if unit == "F" {
				lo, hi = 77, 113
			}
			v.Range("temperature", *r.Temperature, lo, hi)
		}
		out.Temperature = &patient.Measure{Value: *r.Temperature, Unit: unit}
	}
	if r.Height != nil {
		unit, err := HeightUnits.Canonical(defaultUnit(r.HeightUnit, "cm"))
		if v.Check("heightUnit", err) {
			lo, hi := 30.0, 272.0
			if unit == "in" {
				lo, hi = 12, 107
			}
			v.Range("height", *r.Height, lo, hi)
		}
		out.Height = &patient.Measure{Value: *r.Height, Unit: unit}
	}
	if r.Weight != nil {
		v.Range("weight", *r.Weight, 0.5, 500)
		w := *r.Weight
		out.Weight = &w
	}

	switch {
	case r.BMI != nil:
		v.Range("bmi", *r.BMI, 5, 100)
		b := *r.BMI
		out.BMI = &b
	case out.Height != nil && out.Weight != nil:
		out.BMI = BMI(*out.Height, *out.Weight)
	}

	if err := v.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// BMI is weight (kg) over height (m) squared, to one decimal.
func BMI(height patient.Measure, weightKG float64) *float64 {
	m := height.Value / 100
	if height.Unit == "in" {
		m = height.Value * 0.0254
	}
	if m <= 0 {
		return nil
	}
	bmi := math.Round(weightKG/(m*m)*10) / 10
	return &bmi
}

func intIn(v *apperr.Validator, field string, n *int, lo, hi float64) *int {
	if n == nil {
		return nil
	}
	v.Range(field, float64(*n), lo, hi)
	out := *n
	return &out
}

func defaultUnit(unit, def string) string {
	if strings.TrimSpace(unit) == "" {
		return def
	}
	return unit
}
