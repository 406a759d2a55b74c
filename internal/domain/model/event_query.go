//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import "strings"

// FilterField names one of the structured filter inputs.
type FilterField string

const (
	FilterQuery    FilterField = "q"
	FilterUser     FilterField = "user"
	FilterHost     FilterField = "host"
	FilterType     FilterField = "type"
	FilterSeverity FilterField = "severity"
	FilterProcess  FilterField = "process"
)

// StructuredFilterFields lists the debounced text inputs in display order.
func StructuredFilterFields() []FilterField {
	return []FilterField{FilterQuery, FilterUser, FilterHost, FilterType, FilterSeverity, FilterProcess}
}

// ParseFilterField resolves a user-supplied field name.
func ParseFilterField(s string) (FilterField, bool) {
	f := FilterField(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range StructuredFilterFields() {
		if f == known {
			return f, true
		}
	}
	return "", false
}

// FilterSet is the combination of free-text and structured constraints applied to
// the event query. Blank fields are unset and never sent to the backend.
type FilterSet struct {
	Query    string
	Regex    bool
	User     string
	Host     string
	Type     string
	Severity string
	Process  string
}

// Normalize returns a copy with every text field trimmed.
func (f FilterSet) Normalize() FilterSet {
	return FilterSet{
		Query:    strings.TrimSpace(f.Query),
		Regex:    f.Regex,
		User:     strings.TrimSpace(f.User),
		Host:     strings.TrimSpace(f.Host),
		Type:     strings.TrimSpace(f.Type),
		Severity: strings.TrimSpace(f.Severity),
		Process:  strings.TrimSpace(f.Process),
	}
}

// Equal compares the normalized forms of two filter sets.
func (f FilterSet) Equal(other FilterSet) bool {
	return f.Normalize() == other.Normalize()
}

// IsEmpty reports whether no constraint is set.
func (f FilterSet) IsEmpty() bool {
	return f.Normalize() == FilterSet{}
}

// Get returns the value of a text field.
func (f FilterSet) Get(field FilterField) string {
	switch field {
	case FilterQuery:
		return f.Query
	case FilterUser:
		return f.User
	case FilterHost:
		return f.Host
	case FilterType:
		return f.Type
	case FilterSeverity:
		return f.Severity
	case FilterProcess:
		return f.Process
	default:
		return ""
	}
}

// With returns a copy with the given text field replaced.
func (f FilterSet) With(field FilterField, value string) FilterSet {
	switch field {
	case FilterQuery:
		f.Query = value
	case FilterUser:
		f.User = value
	case FilterHost:
		f.Host = value
	case FilterType:
		f.Type = value
	case FilterSeverity:
		f.Severity = value
	case FilterProcess:
		f.Process = value
	}
	return f
}

// PaginationState is the browser's view of where it is in the current filter session.
type PaginationState struct {
	// Cursor is the opaque continuation token; empty before the first page.
	Cursor string
	// Exhausted is set once the backend reports has_more=false.
	Exhausted bool
	// FetchInFlight is true for the lifetime of the single outstanding page request.
	FetchInFlight bool
	// Epoch increments on every reset; responses from older epochs are discarded.
	Epoch uint64
}
