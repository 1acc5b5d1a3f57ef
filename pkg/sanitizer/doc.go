// Package sanitizer normalises user input before validation.
//
// Transforms are plain func(string) string values that can be composed:
//
//	clean := sanitizer.Compose(sanitizer.Trim, sanitizer.SingleLine)
//	name := clean(form.Name)
package sanitizer
