package familyhistory

import (
	"sort"
	"strings"

	"github.com/ehr/intake/internal/domain/patient"
)

// HereditaryRisks derives the risk list: every genetic condition, plus
// any medical condition reported for two or more members. Conditions are
// compared case-insensitively and the first spelling seen is reported.
func HereditaryRisks(members []patient.FamilyMember) []string {
	spelling := map[string]string{}
	risky := map[string]bool{}
	counts := map[string]int{}
	note := func(c string) string {
		key := strings.ToLower(c)
		if _, ok := spelling[key]; !ok {
			spelling[key] = c
		}
		return key
	}
	for _, m := range members {
		for _, c := range m.GeneticConditions {
			risky[note(c)] = true
		}
		for _, c := range m.MedicalConditions {
			counts[note(c)]++
		}
	}
	for key, n := range counts {
		if n >= 2 {
			risky[key] = true
		}
	}
	out := make([]string, 0, len(risky))
	for key := range risky {
		out = append(out, spelling[key])
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i]) < strings.ToLower(out[j]) })
	return out
}
