package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// PhoneInput accepts a phone either as a free-form string or as an
// already split {"code", "number"} object.
type PhoneInput struct {
	Raw    string
	Code   string
	Number string
}

func (p *PhoneInput) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*p = PhoneInput{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &p.Raw)
	}
	var parts struct {
		Code   string `json:"code"`
		Number string `json:"number"`
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&parts); err != nil {
		return fmt.Errorf("phone must be a string or {code, number}: %w", err)
	}
	p.Code, p.Number = parts.Code, parts.Number
	return nil
}

// IsBlank reports whether nothing was entered.
func (p PhoneInput) IsBlank() bool {
	return p.Raw == "" && p.Code == "" && p.Number == ""
}

// Parse normalizes the input with the deployment defaults.
func (p PhoneInput) Parse(opts Options) (Phone, error) {
	if p.Raw != "" {
		return opts.Phone(p.Raw)
	}
	return opts.PhoneParts(p.Code, p.Number)
}
