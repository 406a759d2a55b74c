package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/target/mmk-event-browser/internal/domain/model"
	"github.com/target/mmk-event-browser/internal/testutil"
)

func TestRowRenderer_EventTypeLabel(t *testing.T) {
	r := NewRowRenderer(0)
	tests := map[string]string{
		"raw":              "Raw log",
		"process_start":    "Process start",
		"userlogin":        "User login",
		"USERLOGIN_FAILED": "Failed login",
		"file_write":       "File Write",
		"network":          "Network",
		"":                 "",
	}
	for in, want := range tests {
		assert.Equal(t, want, r.EventTypeLabel(in), "input %q", in)
	}
}

func TestSeverityLabel(t *testing.T) {
	assert.Equal(t, "Low", SeverityLabel("low"))
	assert.Equal(t, "Medium", SeverityLabel(" MEDIUM "))
	assert.Equal(t, "High", SeverityLabel("High"))
	assert.Equal(t, "critical", SeverityLabel("critical"))
}

func TestEscapeText(t *testing.T) {
	assert.Equal(t, "plain text", EscapeText("plain text"))
	assert.Equal(t, "red alert", EscapeText("\x1b[31mred\x1b[0m alert"))
	assert.Equal(t, "title", EscapeText("\x1b]0;evil\x07title"))
	assert.Equal(t, "a b", EscapeText("a\x00b"))
	assert.Equal(t, "a b", EscapeText("a\rb"))
	assert.Equal(t, "line1\nline2\tx", EscapeText("line1\nline2\tx"))
	assert.Equal(t, "<script>", EscapeText("<script>"))
}

func TestRowRenderer_Render(t *testing.T) {
	long := strings.Repeat("é", 130)
	rec := testutil.NewEvent("ev-1").
		WithType("userlogin_failed").
		WithSeverity("HIGH").
		WithRawLog(long + "\n\x1b[1mtail").
		Build()

	rows := NewRowRenderer(0).Render([]model.EventRecord{rec, testutil.NewEvent("ev-2").Build()})
	assert.Len(t, rows, 2)

	row := rows[0]
	assert.Equal(t, "ev-1", row.ID)
	assert.Equal(t, "Failed login", row.EventType)
	assert.Equal(t, "High", row.Severity)
	assert.Equal(t, "web-1", row.Hostname)
	assert.Equal(t, strings.Repeat("é", 120), row.RawPreview)
	assert.Equal(t, long+"\ntail", row.RawFull)
	assert.Equal(t, "ev-2", rows[1].ID)
}

func TestRowRenderer_CellsAreSingleLine(t *testing.T) {
	rec := testutil.NewEvent("x").
		WithHost("web\t1").
		WithUser("ali\nce").
		WithType("odd\tkind").
		Build()
	rec.Process = "sshd\r\n-D"

	row := NewRowRenderer(0).RenderOne(rec)
	assert.Equal(t, "web 1", row.Hostname)
	assert.Equal(t, "ali ce", row.User)
	assert.Equal(t, "sshd  -D", row.Process)
	assert.NotContains(t, row.EventType, "\t")
}

func TestRowRenderer_PreviewIsSingleLine(t *testing.T) {
	rec := testutil.NewEvent("x").WithRawLog("a\nb\tc").Build()
	row := NewRowRenderer(3).RenderOne(rec)
	assert.Equal(t, "a b", row.RawPreview)
	assert.Equal(t, "a\nb\tc", row.RawFull)
}
