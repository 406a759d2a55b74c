// Package query turns a filter snapshot into the canonical parameter set sent to the
// event store.
package query

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/target/mmk-event-browser/internal/domain/model"
)

// Mode selects between an interactive page fetch and a bulk export.
type Mode int

const (
	// ModePaged requests one bounded page and carries the continuation cursor.
	ModePaged Mode = iota
	// ModeExport requests everything matching the filters from the beginning.
	ModeExport
)

func (m Mode) String() string {
	if m == ModeExport {
		return "export"
	}
	return "paged"
}

const (
	// DefaultPageSize is the bounded page size for interactive browsing.
	DefaultPageSize = 200
	// DefaultExportLimit is large enough to mean "everything" for an export.
	DefaultExportLimit = 50000
)

// Parameter names understood by the event store.
const (
	ParamLimit    = "limit"
	ParamQuery    = "q"
	ParamRegex    = "re"
	ParamUser     = "user"
	ParamHost     = "host"
	ParamType     = "type"
	ParamSeverity = "severity"
	ParamProcess  = "process"
	ParamCursor   = "cursor"
	ParamAuth     = "auth"
)

// Limits bounds the page size per mode. Zero or negative values use the defaults.
type Limits struct {
	PageSize    int
	ExportLimit int
}

func (l Limits) forMode(m Mode) int {
	if m == ModeExport {
		if l.ExportLimit > 0 {
			return l.ExportLimit
		}
		return DefaultExportLimit
	}
	if l.PageSize > 0 {
		return l.PageSize
	}
	return DefaultPageSize
}

// Param is one key/value pair of the ordered parameter set.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered parameter set. Order is fixed by Build so encodings are
// reproducible.
type Params []Param

// Get returns the value for key, or "" when absent.
func (p Params) Get(key string) string {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value
		}
	}
	return ""
}

// Has reports whether key is present.
func (p Params) Has(key string) bool {
	for _, kv := range p {
		if kv.Key == key {
			return true
		}
	}
	return false
}

// Keys returns the parameter names in order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for _, kv := range p {
		keys = append(keys, kv.Key)
	}
	return keys
}

// With returns a copy with key appended (or replaced in place when present).
func (p Params) With(key, value string) Params {
	out := make(Params, 0, len(p)+1)
	replaced := false
	for _, kv := range p {
		if kv.Key == key {
			out = append(out, Param{Key: key, Value: value})
			replaced = true
			continue
		}
		out = append(out, kv)
	}
	if !replaced {
		out = append(out, Param{Key: key, Value: value})
	}
	return out
}

// Encode renders the parameters as a query string, preserving order.
// url.Values.Encode sorts keys, which would lose the canonical order.
func (p Params) Encode() string {
	var b strings.Builder
	for i, kv := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(kv.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv.Value))
	}
	return b.String()
}

// Values converts to url.Values for callers that do not care about order.
func (p Params) Values() url.Values {
	v := make(url.Values, len(p))
	for _, kv := range p {
		v.Add(kv.Key, kv.Value)
	}
	return v
}

// Build produces the canonical parameter set for filters in the given mode.
// Only non-blank filter fields are emitted. The cursor is emitted in paged mode
// when non-empty and never in export mode.
func Build(filters model.FilterSet, cursor string, mode Mode, limits Limits) Params {
	f := filters.Normalize()
	p := make(Params, 0, 9)
	p = append(p, Param{Key: ParamLimit, Value: strconv.Itoa(limits.forMode(mode))})

	add := func(key, value string) {
		if value != "" {
			p = append(p, Param{Key: key, Value: value})
		}
	}
	add(ParamQuery, f.Query)
	if f.Regex {
		p = append(p, Param{Key: ParamRegex, Value: "1"})
	}
	add(ParamUser, f.User)
	add(ParamHost, f.Host)
	add(ParamType, f.Type)
	add(ParamSeverity, f.Severity)
	add(ParamProcess, f.Process)

	if mode == ModePaged {
		add(ParamCursor, strings.TrimSpace(cursor))
	}
	return p
}
