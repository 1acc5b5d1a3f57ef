// Package validator checks form input with small composable rules.
//
// Each rule pairs a check with the error reported for a field. Apply runs
// every rule and returns ValidationErrors when any fail:
//
//	err := validator.Apply(
//	    validator.RequiredString("name", in.Name),
//	    validator.ValidEmail("email", in.Email),
//	    validator.InListString("attendee_type", in.Type, types),
//	)
//
// ValidationErrors.Values converts the result to url.Values keyed by field,
// the shape the handler package renders next to form inputs.
package validator
