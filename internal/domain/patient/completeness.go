package patient

// Completeness tells the consent and preview screens whether the record
// holds everything downstream needs. Incomplete records are still valid.
// Missing entries use the request field names.
type Completeness struct {
	Complete bool     `json:"complete"`
	Missing  []string `json:"missing"`
}

// Completeness checks contact email and mobile, every primary insurance
// field and at least one address field.
func (p *Patient) Completeness() Completeness {
	missing := []string{}
	if p.ContactInfo == nil || p.ContactInfo.Email == "" {
		missing = append(missing, "contactInfo.email")
	}
	if p.ContactInfo == nil || p.ContactInfo.Mobile.IsZero() {
		missing = append(missing, "contactInfo.mobile")
	}

	var primary InsurancePlan
	if p.Insurance != nil {
		primary = p.Insurance.Primary
	}
	for _, f := range []struct{ name, value string }{
		{"company", primary.Company},
		{"policyNumber", primary.PolicyNumber},
		{"groupNumber", primary.GroupNumber},
		{"planType", primary.PlanType},
		{"effectiveStart", primary.EffectiveStart},
		{"effectiveEnd", primary.EffectiveEnd},
	} {
		if f.value == "" {
			missing = append(missing, "insurance.primary."+f.name)
		}
	}

	if p.Address.IsEmpty() {
		missing = append(missing, "address")
	}
	return Completeness{Complete: len(missing) == 0, Missing: missing}
}
