//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"encoding/json"
	"strings"
)

// EventType is the backend vocabulary for the kind of security event.
type EventType string

const (
	EventTypeRaw             EventType = "raw"
	EventTypeProcessStart    EventType = "process_start"
	EventTypeUserLogin       EventType = "userlogin"
	EventTypeUserLoginFailed EventType = "userlogin_failed"
)

// Severity is the backend vocabulary for event severity.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Normalize lowercases and trims the severity for vocabulary lookups.
func (s Severity) Normalize() Severity {
	return Severity(strings.ToLower(strings.TrimSpace(string(s))))
}

// EventRecord is a single security event as served by the event store API.
// The browser never mutates records; it only projects them into rows.
type EventRecord struct {
	ID              string `json:"_id"`
	AgentID         string `json:"agentid"`
	PacketTimestamp string `json:"packettimestamp"`
	Timestamp       string `json:"timestamp"`
	Hostname        string `json:"hostname"`
	Source          string `json:"source"`
	EventType       string `json:"eventtype"`
	Severity        string `json:"severity"`
	User            string `json:"user"`
	Process         string `json:"process"`
	Command         string `json:"command"`
	RawLog          string `json:"rawlog"`
	SrcIP           string `json:"srcip,omitempty"`
	DstIP           string `json:"dstip,omitempty"`
	SrcPort         int    `json:"srcport,omitempty"`
	DstPort         int    `json:"dstport,omitempty"`
	Protocol        string `json:"protocol,omitempty"`
	Outcome         string `json:"outcome,omitempty"`
	RuleID          string `json:"ruleid,omitempty"`
	RuleName        string `json:"rulename,omitempty"`
}

// EventPage is one page of the cursor-paginated event listing.
type EventPage struct {
	Data       []EventRecord `json:"data"`
	Count      int           `json:"count,omitempty"`
	HasMore    bool          `json:"has_more"`
	NextCursor string        `json:"next_cursor"`
}

// EventDetail is a single event fetched for inspection. Raw keeps the exact JSON
// object the backend sent so fields unknown to EventRecord are still shown.
type EventDetail struct {
	Record EventRecord
	Raw    json.RawMessage
}
