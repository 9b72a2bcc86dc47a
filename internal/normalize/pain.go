package normalize

import (
	"encoding/json"
	"strconv"
	"strings"
)

var painLabels = [11]string{
	"No pain",
	"Very mild",
	"Discomforting",
	"Tolerable",
	"Distressing",
	"Very distressing",
	"Intense",
	"Very intense",
	"Utterly horrible",
	"Excruciating unbearable",
	"Unimaginable unspeakable",
}

// PainLabels returns the eleven labels indexed by score.
func PainLabels() []string {
	out := make([]string, len(painLabels))
	copy(out, painLabels[:])
	return out
}

// PainLabel maps a 0-10 score to its label. Out-of-range scores map to
// "No pain".
func PainLabel(score int) string {
	if score < 0 || score >= len(painLabels) {
		return painLabels[0]
	}
	return painLabels[score]
}

// PainScore maps a label back to its score. Matching ignores case and
// surrounding space; a bare number is accepted too. Unknown input is 0.
func PainScore(label string) int {
	label = strings.TrimSpace(label)
	if n, err := strconv.Atoi(label); err == nil {
		if n < 0 || n >= len(painLabels) {
			return 0
		}
		return n
	}
	for i, l := range painLabels {
		if strings.EqualFold(l, label) {
			return i
		}
	}
	return 0
}

// Pain accepts either a number or a label on the wire and always holds a
// score.
type Pain int

func (p *Pain) UnmarshalJSON(b []byte) error {
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		*p = Pain(PainScore(strconv.Itoa(int(n))))
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*p = Pain(PainScore(s))
		return nil
	}
	*p = 0
	return nil
}

func (p Pain) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(p))
}

// Label returns the text label for the score.
func (p Pain) Label() string { return PainLabel(int(p)) }
