// Package record defines the vital-event record model: record types, the
// per-type step catalog, and the Draft field store used by the intake wizard.
package record

import (
	"sort"
	"time"
)

// Type identifies a vital-event record type.
type Type string

const (
	TypeDeath    Type = "death"
	TypeMarriage Type = "marriage"
)

// Valid reports whether t is a known record type.
func (t Type) Valid() bool {
	return t == TypeDeath || t == TypeMarriage
}

// Fields is the flat field map of one record: field name to value.
// Values are strings or bools; absent fields read as the zero value.
type Fields map[string]any

// String returns the string value of a field, or "" if absent or non-string.
func (f Fields) String(name string) string {
	if v, ok := f[name].(string); ok {
		return v
	}
	return ""
}

// Bool returns the boolean value of a field, or false if absent or non-bool.
func (f Fields) Bool(name string) bool {
	if v, ok := f[name].(bool); ok {
		return v
	}
	return false
}

// Clone returns a shallow copy of the field map.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Equal reports structural equality of two field maps.
// A field absent on one side equals the zero value on the other, so a
// round-trip through prefill defaults does not read as a change.
func (f Fields) Equal(other Fields) bool {
	names := make(map[string]struct{}, len(f)+len(other))
	for k := range f {
		names[k] = struct{}{}
	}
	for k := range other {
		names[k] = struct{}{}
	}
	for k := range names {
		if f[k] == nil && other[k] == nil {
			continue
		}
		if fb, ok := f[k].(bool); ok || f[k] == nil {
			if ob, ok2 := other[k].(bool); ok2 || other[k] == nil {
				if fb != ob {
					return false
				}
				continue
			}
		}
		if f.String(k) != other.String(k) {
			return false
		}
	}
	return true
}

// Names returns the field names present in the map, sorted.
func (f Fields) Names() []string {
	names := make([]string, 0, len(f))
	for k := range f {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Record is the canonical persisted record as returned by the registry.
type Record struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	RegistryNo string    `json:"registry_no"`
	Fields     Fields    `json:"fields"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

// DateLayout is the ISO date layout used by all date fields.
const DateLayout = "2006-01-02"

// AgeAt returns full years between an ISO birth date and a reference ISO
// date, or -1 if either date does not parse.
func AgeAt(birth, ref string) int {
	b, err := time.Parse(DateLayout, birth)
	if err != nil {
		return -1
	}
	r, err := time.Parse(DateLayout, ref)
	if err != nil {
		return -1
	}
	years := r.Year() - b.Year()
	if r.Month() < b.Month() || (r.Month() == b.Month() && r.Day() < b.Day()) {
		years--
	}
	return years
}
