package placeholder

import (
	"fmt"
	"maps"
	"regexp"
	"time"
)

var tokenRe = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Substitute replaces every {{key}} whose key exists in values with the
// value's string form. Missing keys stay verbatim; nil values become empty.
func Substitute(tmpl string, values map[string]any) string {
	if len(values) == 0 {
		return tmpl
	}
	return tokenRe.ReplaceAllStringFunc(tmpl, func(token string) string {
		key := token[2 : len(token)-2]
		v, ok := values[key]
		if !ok {
			return token
		}
		if v == nil {
			return ""
		}
		return fmt.Sprint(v)
	})
}

// Keys returns the distinct placeholder names in tmpl in first-seen order.
func Keys(tmpl string) []string {
	matches := tokenRe.FindAllStringSubmatch(tmpl, -1)
	seen := make(map[string]struct{}, len(matches))
	keys := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		keys = append(keys, m[1])
	}
	return keys
}

// Missing returns the placeholder names in tmpl that have no value.
func Missing(tmpl string, values map[string]any) []string {
	var missing []string
	for _, k := range Keys(tmpl) {
		if _, ok := values[k]; !ok {
			missing = append(missing, k)
		}
	}
	return missing
}

// Defaults returns the values available to every template.
func Defaults(now time.Time) map[string]any {
	return map[string]any{
		"current_date": now.Format("2006-01-02"),
		"current_time": now.Format("15:04"),
	}
}

// Merge returns a new map with each layer applied over the previous one.
func Merge(layers ...map[string]any) map[string]any {
	out := make(map[string]any)
	for _, l := range layers {
		maps.Copy(out, l)
	}
	return out
}
