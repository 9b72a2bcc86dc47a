package normalize

// Options carries the deployment-level defaults the section handlers
// normalize with.
type Options struct {
	// AmbiguousDate decides how NN-NN-YYYY input is read. Dates are
	// rendered back to the client in the same layout.
	AmbiguousDate DateFormat
	// CountryCode is used for phone numbers entered without "+".
	CountryCode string
}

func DefaultOptions() Options {
	return Options{AmbiguousDate: DMY, CountryCode: DefaultCountryCode}
}

// Date converts s to ISO. Blank stays blank.
func (o Options) Date(s string) (string, error) {
	return ToISO(s, o.AmbiguousDate)
}

// Display renders a stored ISO date in the display layout. Blank stays
// blank; a value that is not ISO is returned as is.
func (o Options) Display(iso string) string {
	if iso == "" {
		return ""
	}
	out, err := ConvertDate(iso, ISO, o.AmbiguousDate)
	if err != nil {
		return iso
	}
	return out
}

// Phone parses a free-form phone string.
func (o Options) Phone(raw string) (Phone, error) {
	return ParsePhone(raw, o.CountryCode)
}

// PhoneParts parses an already split phone.
func (o Options) PhoneParts(code, number string) (Phone, error) {
	return ParsePhoneParts(code, number, o.CountryCode)
}
