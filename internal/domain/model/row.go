//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

// Row is the display projection of an EventRecord. Text fields are already escaped
// for the terminal; ID is kept verbatim for the detail lookup.
type Row struct {
	ID         string
	Timestamp  string
	AgentID    string
	Hostname   string
	User       string
	Process    string
	EventType  string
	Severity   string
	Source     string
	RawPreview string
	RawFull    string
}
