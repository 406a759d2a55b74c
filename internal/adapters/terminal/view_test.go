package terminal

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/mmk-event-browser/internal/domain/model"
)

func rowsN(n int) []model.Row {
	out := make([]model.Row, n)
	for i := range out {
		out[i] = model.Row{
			ID:         fmt.Sprintf("ev-%02d", i),
			Timestamp:  "2026-03-14T12:00:00Z",
			Hostname:   "web-1",
			User:       "alice",
			Process:    "sshd",
			EventType:  "User login",
			Severity:   "Low",
			RawPreview: fmt.Sprintf("line %d", i),
		}
	}
	return out
}

func TestView_ScrollClampsToContent(t *testing.T) {
	v := NewView(&bytes.Buffer{}, 10)
	v.RowsAppended(rowsN(25), 25)

	bottom, total := v.Position()
	assert.Equal(t, 10, bottom)
	assert.Equal(t, 25, total)

	bottom, total = v.ScrollBy(10)
	assert.Equal(t, 20, bottom)
	assert.Equal(t, 25, total)

	bottom, _ = v.ScrollBy(100)
	assert.Equal(t, 25, bottom, "cannot scroll past the last row")

	bottom, _ = v.ScrollBy(-100)
	assert.Equal(t, 10, bottom)
}

func TestView_ShortContent(t *testing.T) {
	v := NewView(&bytes.Buffer{}, 10)
	v.RowsAppended(rowsN(3), 3)
	bottom, total := v.ScrollBy(5)
	assert.Equal(t, 3, bottom)
	assert.Equal(t, 3, total)
}

func TestView_RowsClearedResetsScroll(t *testing.T) {
	v := NewView(&bytes.Buffer{}, 5)
	v.RowsAppended(rowsN(20), 20)
	v.ScrollBy(10)
	v.RowsCleared()

	bottom, total := v.Position()
	assert.Equal(t, 0, bottom)
	assert.Equal(t, 0, total)
	assert.Equal(t, 0, v.Len())
}

func TestView_RowID(t *testing.T) {
	v := NewView(&bytes.Buffer{}, 5)
	v.RowsAppended(rowsN(12), 12)
	v.ScrollBy(5)

	id, ok := v.RowID(1)
	require.True(t, ok)
	assert.Equal(t, "ev-05", id)

	id, ok = v.RowID(5)
	require.True(t, ok)
	assert.Equal(t, "ev-09", id)

	_, ok = v.RowID(0)
	assert.False(t, ok)
	_, ok = v.RowID(6)
	assert.False(t, ok, "beyond the viewport")

	v.ScrollBy(10)
	_, ok = v.RowID(3)
	assert.False(t, ok, "viewport holds only rows 8..12")
	id, ok = v.RowID(5)
	require.True(t, ok)
	assert.Equal(t, "ev-11", id)
}

func TestView_Render(t *testing.T) {
	var out bytes.Buffer
	v := NewView(&out, 2)
	v.RowsAppended(rowsN(3), 3)
	v.StatusChanged("Scroll down to load more...")

	require.NoError(t, v.Render())
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "#"))
	assert.Contains(t, lines[0], "SEVERITY")
	assert.Contains(t, lines[1], "line 0")
	assert.Contains(t, lines[2], "line 1")
	assert.Equal(t, "[1-2 of 3] Scroll down to load more...", lines[3])
}

func TestView_RenderEmpty(t *testing.T) {
	var out bytes.Buffer
	v := NewView(&out, 0)
	assert.Equal(t, DefaultViewportRows, v.Height())
	v.StatusChanged("End of list.")

	require.NoError(t, v.Render())
	assert.Contains(t, out.String(), "[0-0 of 0] End of list.\n")
}

func TestView_RenderDashesBlankFields(t *testing.T) {
	var out bytes.Buffer
	v := NewView(&out, 5)
	v.RowsAppended([]model.Row{{ID: "x", RawPreview: "raw"}}, 1)
	require.NoError(t, v.Render())
	assert.Contains(t, out.String(), "-  ")
}

func TestView_ShowDetailFramesBody(t *testing.T) {
	var out bytes.Buffer
	v := NewView(&out, 5)
	v.ShowDetail("Event ev-1", "{\n  \"_id\": \"ev-1\"\n}")

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "┌─ Event ev-1 "))
	assert.True(t, strings.HasPrefix(lines[4], "└"))
	width := len([]rune(lines[0]))
	for _, l := range lines {
		assert.Equal(t, width, len([]rune(l)), "frame lines have equal width: %q", l)
	}
	assert.Contains(t, lines[2], `"_id": "ev-1"`)
}
