package patient

import "strings"

// Validate checks a payload against the field rules and returns a field ->
// message map collecting every violation; an empty map means valid. On a
// partial (update) validation each rule applies only when the field key is
// present in the payload. Email uniqueness is checked separately by the
// service, with the storage-level unique index as the authoritative guard.
func Validate(p *Payload, partial bool) map[string]string {
	errs := map[string]string{}

	if !partial || p.FirstName.Set {
		if !p.FirstName.Valid || p.FirstName.Value == "" {
			errs["first_name"] = "First name is required."
		}
	}
	if !partial || p.LastName.Set {
		if !p.LastName.Valid || p.LastName.Value == "" {
			errs["last_name"] = "Last name is required."
		}
	}
	if !partial || p.DateOfBirth.Set {
		if _, err := ParseDate(p.DateOfBirth.Value); !p.DateOfBirth.Valid || err != nil {
			errs["date_of_birth"] = "Valid date of birth (YYYY-MM-DD) is required."
		}
	}
	if !partial || p.Email.Set {
		if !p.Email.Valid || p.Email.Value == "" || !strings.Contains(p.Email.Value, "@") {
			errs["email"] = "Valid email is required."
		}
	}

	if pp := p.CommunicationPreference; pp != nil {
		if pp.PreferredMethod.Set && !validMethod(pp.PreferredMethod.Value, pp.PreferredMethod.Valid) {
			errs["communication_preference"] = "Preferred method must be one of " +
				strings.Join(PreferredMethods, ", ") + "."
		}
	}

	return errs
}

func validMethod(m string, valid bool) bool {
	if !valid {
		return false
	}
	for _, allowed := range PreferredMethods {
		if m == allowed {
			return true
		}
	}
	return false
}
