package normalize

import (
	"errors"
	"testing"

	"github.com/ehr/intake/internal/platform/apperr"
)

func TestConvertDate_RoundTripAllPairs(t *testing.T) {
	samples := map[DateFormat][]string{
		ISO: {"1990-05-02", "2024-02-29", "2000-12-31", "1999-01-13"},
		MDY: {"05-02-1990", "02-29-2024", "12-31-2000", "01-13-1999"},
		DMY: {"02-05-1990", "29-02-2024", "31-12-2000", "13-01-1999"},
	}
	formats := []DateFormat{ISO, MDY, DMY}
	for _, in := range formats {
		for _, out := range formats {
			for _, d := range samples[in] {
				converted, err := ConvertDate(d, in, out)
				if err != nil {
					t.Fatalf("%s -> %s (%s): %v", in, out, d, err)
				}
				back, err := ConvertDate(converted, out, in)
				if err != nil {
					t.Fatalf("%s -> %s (%s): %v", out, in, converted, err)
				}
				if back != d {
					t.Errorf("round trip %s->%s->%s: got %q, want %q", in, out, in, back, d)
				}
			}
		}
	}
}

func TestConvertDate_Values(t *testing.T) {
	got, err := ConvertDate("1990-05-02", ISO, DMY)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "02-05-1990" {
		t.Errorf("expected 02-05-1990, got %q", got)
	}
	got, err = ConvertDate("05-02-1990", MDY, ISO)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "1990-05-02" {
		t.Errorf("expected 1990-05-02, got %q", got)
	}
}

func TestConvertDate_InvalidFormat(t *testing.T) {
	cases := []struct {
		in   string
		from DateFormat
	}{
		{"1990/05/02", ISO},
		{"02-05-1990", ISO},
		{"1990-05-02", DMY},
		{"1990-13-02", ISO},
		{"31-02-2020", DMY},
		{"", ISO},
		{"yesterday", MDY},
		{"1990-5-2", ISO},
	}
	for _, tc := range cases {
		_, err := ConvertDate(tc.in, tc.from, ISO)
		if err == nil {
			t.Errorf("expected error for %q as %s", tc.in, tc.from)
			continue
		}
		if !errors.Is(err, ErrInvalidDate) {
			t.Errorf("expected ErrInvalidDate for %q, got %v", tc.in, err)
		}
		if !apperr.IsValidation(err) {
			t.Errorf("expected validation kind for %q, got %v", tc.in, apperr.KindOf(err))
		}
	}
}

func TestDetectDate(t *testing.T) {
	cases := []struct {
		in        string
		ambiguous DateFormat
		wantISO   string
		wantFmt   DateFormat
	}{
		{"1990-05-02", DMY, "1990-05-02", ISO},
		{"02-05-1990", DMY, "1990-05-02", DMY},
		{"02-05-1990", MDY, "1990-02-05", MDY},
		{"25-12-2020", MDY, "2020-12-25", DMY},
		{"12-25-2020", DMY, "2020-12-25", MDY},
	}
	for _, tc := range cases {
		tm, f, err := DetectDate(tc.in, tc.ambiguous)
		if err != nil {
			t.Fatalf("DetectDate(%q): %v", tc.in, err)
		}
		if got := FormatDate(tm, ISO); got != tc.wantISO {
			t.Errorf("DetectDate(%q) = %s, want %s", tc.in, got, tc.wantISO)
		}
		if f != tc.wantFmt {
			t.Errorf("DetectDate(%q) format = %s, want %s", tc.in, f, tc.wantFmt)
		}
	}
}

func TestDetectDate_Rejects(t *testing.T) {
	for _, in := range []string{"2020-02-30", "32-13-2020", "2020.01.01", "01/02/2020", "abc"} {
		if _, _, err := DetectDate(in, DMY); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}

func TestNormalizeDate_EmptyPassesThrough(t *testing.T) {
	got, err := ToISO("  ", DMY)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}

func TestParseDateFormat(t *testing.T) {
	f, err := ParseDateFormat("dd-mm-yyyy")
	if err != nil || f != DMY {
		t.Errorf("expected DMY, got %q (%v)", f, err)
	}
	if _, err := ParseDateFormat("YYYY/MM/DD"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestOptionsDisplay_RoundTrips(t *testing.T) {
	for _, f := range []DateFormat{DMY, MDY} {
		opts := Options{AmbiguousDate: f}
		for _, iso := range []string{"1990-05-02", "2024-12-31", "2000-02-29"} {
			shown := opts.Display(iso)
			back, err := opts.Date(shown)
			if err != nil || back != iso {
				t.Errorf("%s: %s shown as %s read back as %q (%v)", f, iso, shown, back, err)
			}
		}
	}
	opts := DefaultOptions()
	if got := opts.Display("1990-05-02"); got != "02-05-1990" {
		t.Errorf("Display = %q", got)
	}
	if opts.Display("") != "" || opts.Display("soon") != "soon" {
		t.Error("blank and non-ISO values pass through")
	}
}
