package service

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/target/mmk-event-browser/internal/domain/model"
)

// DefaultPreviewRunes is how much of the raw payload a row shows inline.
const DefaultPreviewRunes = 120

var (
	ansiEscapeRegex = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]|\x1b\][^\x07\x1b]*(\x07|\x1b\\)`)

	eventTypeLabels = map[model.EventType]string{
		model.EventTypeRaw:             "Raw log",
		model.EventTypeProcessStart:    "Process start",
		model.EventTypeUserLogin:       "User login",
		model.EventTypeUserLoginFailed: "Failed login",
	}

	singleLine = strings.NewReplacer("\n", " ", "\t", " ")

	severityLabels = map[model.Severity]string{
		model.SeverityLow:    "Low",
		model.SeverityMedium: "Medium",
		model.SeverityHigh:   "High",
	}
)

// RowRenderer projects event records into display rows. It is stateless apart from
// its configuration and safe for concurrent use.
type RowRenderer struct {
	previewRunes int
}

// NewRowRenderer creates a renderer; previewRunes <= 0 uses DefaultPreviewRunes.
func NewRowRenderer(previewRunes int) *RowRenderer {
	if previewRunes <= 0 {
		previewRunes = DefaultPreviewRunes
	}
	return &RowRenderer{previewRunes: previewRunes}
}

// Render converts records to rows in input order.
func (r *RowRenderer) Render(records []model.EventRecord) []model.Row {
	rows := make([]model.Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, r.RenderOne(rec))
	}
	return rows
}

// RenderOne converts a single record.
func (r *RowRenderer) RenderOne(rec model.EventRecord) model.Row {
	raw := EscapeText(rec.RawLog)
	return model.Row{
		ID:         rec.ID,
		Timestamp:  cell(rec.Timestamp),
		AgentID:    cell(rec.AgentID),
		Hostname:   cell(rec.Hostname),
		User:       cell(rec.User),
		Process:    cell(rec.Process),
		EventType:  cell(r.EventTypeLabel(rec.EventType)),
		Severity:   cell(SeverityLabel(rec.Severity)),
		Source:     cell(rec.Source),
		RawPreview: truncateRunes(singleLine.Replace(raw), r.previewRunes),
		RawFull:    raw,
	}
}

// cell escapes a table value and keeps it on one line so it cannot break the
// column layout.
func cell(s string) string { return singleLine.Replace(EscapeText(s)) }

// EventTypeLabel translates the backend's event type vocabulary for display.
// Unknown types are title-cased with underscores read as spaces.
func (r *RowRenderer) EventTypeLabel(t string) string {
	key := model.EventType(strings.ToLower(strings.TrimSpace(t)))
	if label, ok := eventTypeLabels[key]; ok {
		return label
	}
	if key == "" {
		return ""
	}
	// Casers carry state and are not shared across goroutines.
	return cases.Title(language.English).String(strings.ReplaceAll(string(key), "_", " "))
}

// SeverityLabel translates low/medium/high; other values pass through unchanged.
func SeverityLabel(s string) string {
	if label, ok := severityLabels[model.Severity(s).Normalize()]; ok {
		return label
	}
	return s
}

// EscapeText makes backend-supplied text safe to print on a terminal: escape
// sequences are dropped and remaining control characters become spaces, except
// newlines and tabs in multi-line payloads.
func EscapeText(s string) string {
	if s == "" {
		return s
	}
	s = ansiEscapeRegex.ReplaceAllString(s, "")
	if !strings.ContainsFunc(s, needsReplacement) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if needsReplacement(r) {
			b.WriteByte(' ')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func needsReplacement(r rune) bool {
	if r == utf8.RuneError {
		return true
	}
	if r == '\n' || r == '\t' {
		return false
	}
	return unicode.IsControl(r) || r == '\u2028' || r == '\u2029'
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
