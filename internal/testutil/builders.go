package testutil

import (
	"fmt"
	"time"

	"github.com/target/mmk-event-browser/internal/domain/model"
)

// EventBuilder provides a fluent interface for building test events.
type EventBuilder struct {
	ev model.EventRecord
}

// NewEvent creates an event with sensible defaults.
func NewEvent(id string) *EventBuilder {
	return &EventBuilder{ev: model.EventRecord{
		ID:        id,
		AgentID:   "agent-1",
		Timestamp: TestTime().Format(time.RFC3339),
		Hostname:  "web-1",
		Source:    "auth.log",
		EventType: string(model.EventTypeUserLogin),
		Severity:  string(model.SeverityLow),
		User:      "alice",
		Process:   "sshd",
		RawLog:    "Accepted password for alice from 10.0.0.5 port 50022 ssh2",
	}}
}

// WithUser sets the user.
func (b *EventBuilder) WithUser(user string) *EventBuilder {
	b.ev.User = user
	return b
}

// WithHost sets the hostname.
func (b *EventBuilder) WithHost(host string) *EventBuilder {
	b.ev.Hostname = host
	return b
}

// WithType sets the event type.
func (b *EventBuilder) WithType(t string) *EventBuilder {
	b.ev.EventType = t
	return b
}

// WithSeverity sets the severity.
func (b *EventBuilder) WithSeverity(s string) *EventBuilder {
	b.ev.Severity = s
	return b
}

// WithTimestamp sets the timestamp.
func (b *EventBuilder) WithTimestamp(ts time.Time) *EventBuilder {
	b.ev.Timestamp = ts.UTC().Format(time.RFC3339)
	return b
}

// WithRawLog sets the raw payload.
func (b *EventBuilder) WithRawLog(raw string) *EventBuilder {
	b.ev.RawLog = raw
	return b
}

// Build returns the event.
func (b *EventBuilder) Build() model.EventRecord {
	return b.ev
}

// Events builds n events for user with descending timestamps, one second apart.
// IDs are "<prefix>-0000" onwards so ordering is easy to assert.
func Events(prefix, user string, n int) []model.EventRecord {
	out := make([]model.EventRecord, 0, n)
	for i := range n {
		out = append(out, NewEvent(fmt.Sprintf("%s-%04d", prefix, i)).
			WithUser(user).
			WithTimestamp(TestTime().Add(-time.Duration(i)*time.Second)).
			Build())
	}
	return out
}

// IDs extracts event identifiers in order.
func IDs(events []model.EventRecord) []string {
	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	return ids
}
