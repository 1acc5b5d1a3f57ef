// Package placeholder fills {{name}} tokens in email subjects and bodies.
//
// A token is two opening braces, a word (letters, digits, underscore) and two
// closing braces. Anything else, including "{{ name }}" or an unterminated
// "{{", is plain text and passes through unchanged. There is no escape
// syntax.
//
//	placeholder.Substitute("Hello {{name}}", map[string]any{"name": "Kim"})
//	// "Hello Kim"
package placeholder
