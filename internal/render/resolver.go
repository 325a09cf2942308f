package render

import "time"

// Resolver supplies substitution values for declared template variables.
// Resolution precedence is fixed: known system values from configuration
// first, otherwise the variable stays unresolved and the literal token
// survives rendering. Unknown variables are never an error; the preview is
// the operator's feedback loop for catching them before a send.
//
// Values are resolved once per dispatch, not per recipient: every recipient
// in a batch receives the identical rendered body.
type Resolver struct {
	CompanyName  string
	SupportEmail string
	SupportPhone string

	// Now is swappable for deterministic tests. Defaults to time.Now.
	Now func() time.Time
}

func (r *Resolver) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Resolve returns values for the subset of names that map to system
// variables. Names outside the system set are absent from the result.
func (r *Resolver) Resolve(names []string) map[string]string {
	now := r.now()
	values := map[string]string{}
	for _, name := range names {
		var value string
		switch name {
		case "company_name":
			value = r.CompanyName
		case "support_email":
			value = r.SupportEmail
		case "support_phone":
			value = r.SupportPhone
		case "current_date":
			value = now.Format("2006-01-02")
		case "current_time":
			value = now.Format("15:04")
		}
		// An unconfigured system value counts as unknown: leave the
		// token visible instead of substituting an empty string.
		if value != "" {
			values[name] = value
		}
	}
	return values
}
