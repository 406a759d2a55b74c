//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// KV is one key/count entry of a dashboard list.
type KV struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// ValueString renders the value without JSON quoting.
func (kv KV) ValueString() string {
	if len(kv.Value) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(kv.Value, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(kv.Value, &n); err == nil {
		return n.String()
	}
	return string(kv.Value)
}

// DashboardSummary is the aggregate served by /api/dashboard.
type DashboardSummary struct {
	ActiveAgents    []KV          `json:"active_agents"`
	EventsPerHour24 []int         `json:"events_per_hour_24"`
	Hosts24h        []KV          `json:"hosts_24h"`
	LastLogins      []EventRecord `json:"last_logins"`
	Severity24h     []KV          `json:"severity_24h"`
	TopEventTypes   []KV          `json:"top_event_types"`
	TopProcesses24h []KV          `json:"top_processes_24h"`
	TopUsers24h     []KV          `json:"top_users_24h"`
}

// HourlyLabel formats an events-per-hour bucket label.
func HourlyLabel(hour int) string {
	if hour < 0 || hour > 23 {
		return strconv.Itoa(hour)
	}
	return fmt.Sprintf("%02d:00", hour)
}
