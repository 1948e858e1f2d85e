// Package validation checks request payloads and carries the uniform result envelope
// returned by every mutation entry point.
package validation

import (
	"fmt"
	"sort"
	"strings"
)

// Violations maps a field path (JSON names, e.g. "items[0].quantity") to its messages.
type Violations map[string][]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Add appends a message for field.
func (v Violations) Add(field, msg string) {
	v[field] = append(v[field], msg)
}

// Addf is Add with formatting.
func (v Violations) Addf(field, format string, args ...any) {
	v.Add(field, fmt.Sprintf(format, args...))
}

// Has reports whether field has at least one message.
func (v Violations) Has(field string) bool { return len(v[field]) > 0 }

// Merge copies all messages of other into v, prefixing field names with prefix.
func (v Violations) Merge(prefix string, other Violations) {
	for field, msgs := range other {
		key := field
		if prefix != "" {
			key = prefix + "." + field
		}
		v[key] = append(v[key], msgs...)
	}
}

// Fields returns the violated fields in sorted order.
func (v Violations) Fields() []string {
	out := make([]string, 0, len(v))
	for f := range v {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Error renders the violations on one line so they can travel as an error.
func (v Violations) Error() string {
	parts := make([]string, 0, len(v))
	for _, f := range v.Fields() {
		parts = append(parts, f+": "+strings.Join(v[f], ", "))
	}
	return strings.Join(parts, "; ")
}

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v.Addf(field, "%s is required", leaf(field))
	}
}

func OneOf[T ~string](field string, value T, allowed []T, v Violations) {
	for _, a := range allowed {
		if a == value {
			return
		}
	}
	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = string(a)
	}
	v.Addf(field, "%s must be one of: %s", leaf(field), strings.Join(names, ", "))
}

func leaf(field string) string {
	if i := strings.LastIndex(field, "."); i >= 0 {
		return field[i+1:]
	}
	return field
}
