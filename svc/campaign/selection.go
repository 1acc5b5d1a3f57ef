package campaign

import (
	"slices"
	"strings"

	"github.com/dmitrymomot/eventmail/pkg/apiclient"
)

// All is the meta-filter matching every attendee type.
const All = "all"

// Selection is the recipient type filter. The zero value selects all.
// It never holds All together with a specific type.
type Selection struct {
	types []apiclient.AttendeeType
}

// SelectAll returns the "all" selection.
func SelectAll() Selection { return Selection{} }

// ParseSelection normalizes submitted filter values. All wins over any
// specific type, unknown values are dropped and an empty result means all.
func ParseSelection(values []string) Selection {
	var sel Selection
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == All {
			return SelectAll()
		}
		t := apiclient.AttendeeType(v)
		if t.Valid() && !slices.Contains(sel.types, t) {
			sel.types = append(sel.types, t)
		}
	}
	sel.sort()
	return sel
}

// Toggle applies a checkbox change. Checking All clears specific types,
// checking a type clears All, and unchecking the last type reverts to All.
func (s Selection) Toggle(value string, checked bool) Selection {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == All {
		return SelectAll()
	}
	t := apiclient.AttendeeType(value)
	if !t.Valid() {
		return s
	}

	next := Selection{types: slices.Clone(s.types)}
	if checked {
		if !slices.Contains(next.types, t) {
			next.types = append(next.types, t)
		}
	} else {
		next.types = slices.DeleteFunc(next.types, func(x apiclient.AttendeeType) bool { return x == t })
	}
	next.sort()
	return next
}

func (s Selection) IsAll() bool { return len(s.types) == 0 }

// Has reports whether the checkbox for value is checked.
func (s Selection) Has(value string) bool {
	if value == All {
		return s.IsAll()
	}
	return slices.Contains(s.types, apiclient.AttendeeType(value))
}

// Matches reports whether an attendee of type t is a recipient.
func (s Selection) Matches(t apiclient.AttendeeType) bool {
	return s.IsAll() || slices.Contains(s.types, t.OrDefault())
}

// Values returns the selection as form values.
func (s Selection) Values() []string {
	if s.IsAll() {
		return []string{All}
	}
	out := make([]string, len(s.types))
	for i, t := range s.types {
		out[i] = string(t)
	}
	return out
}

func (s Selection) String() string { return strings.Join(s.Values(), ",") }

func (s *Selection) sort() {
	order := apiclient.AttendeeTypes()
	slices.SortFunc(s.types, func(a, b apiclient.AttendeeType) int {
		return slices.Index(order, a) - slices.Index(order, b)
	})
}

// Filter returns the attendees matching sel, in their original order.
func Filter(attendees []apiclient.Attendee, sel Selection) []apiclient.Attendee {
	if sel.IsAll() {
		return attendees
	}
	out := make([]apiclient.Attendee, 0, len(attendees))
	for _, a := range attendees {
		if sel.Matches(a.AttendeeType) {
			out = append(out, a)
		}
	}
	return out
}

// TypeCount is one filter checkbox with its attendee count.
type TypeCount struct {
	Value string
	Label string
	Count int
}

// TypeCounts returns the All entry followed by every type that has at
// least one attendee.
func TypeCounts(attendees []apiclient.Attendee) []TypeCount {
	counts := make(map[apiclient.AttendeeType]int, len(apiclient.AttendeeTypes()))
	for _, a := range attendees {
		counts[a.AttendeeType.OrDefault()]++
	}

	out := []TypeCount{{Value: All, Label: "All", Count: len(attendees)}}
	for _, t := range apiclient.AttendeeTypes() {
		if n := counts[t]; n > 0 {
			out = append(out, TypeCount{Value: string(t), Label: t.Label(), Count: n})
		}
	}
	return out
}
