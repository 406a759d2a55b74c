// Package terminal is the line-oriented front end of the event browser: a
// scrollable row table with a status line, a framed detail overlay and a command
// loop that turns typed commands into browser stimuli.
package terminal

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/target/mmk-event-browser/internal/domain/model"
	"github.com/target/mmk-event-browser/internal/ports"
)

// DefaultViewportRows is the number of rows shown at once.
const DefaultViewportRows = 25

var (
	_ ports.BrowserListener = (*View)(nil)
	_ ports.Presenter       = (*View)(nil)
)

// View mirrors the browser's row collection and renders a window of it.
// All output goes through the view so concurrent writers do not interleave.
type View struct {
	mu     sync.Mutex
	out    io.Writer
	height int
	rows   []model.Row
	top    int
	status string
}

// NewView creates a view writing to out; height <= 0 uses DefaultViewportRows.
func NewView(out io.Writer, height int) *View {
	if height <= 0 {
		height = DefaultViewportRows
	}
	return &View{out: out, height: height}
}

func (v *View) RowsCleared() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rows = nil
	v.top = 0
}

func (v *View) RowsAppended(rows []model.Row, _ int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rows = append(v.rows, rows...)
}

func (v *View) StatusChanged(status string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.status = status
}

// ShowDetail prints body inside a frame headed by title.
func (v *View) ShowDetail(title, body string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	_ = writeFrame(v.out, title, body)
}

// Height returns the viewport size in rows.
func (v *View) Height() int { return v.height }

// Len returns the number of rows held.
func (v *View) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.rows)
}

// ScrollBy moves the viewport by delta rows, clamped to the content, and returns
// the new position.
func (v *View) ScrollBy(delta int) (visibleBottom, contentBottom int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.top += delta
	if maxTop := len(v.rows) - v.height; v.top > maxTop {
		v.top = maxTop
	}
	if v.top < 0 {
		v.top = 0
	}
	return v.positionLocked()
}

// Position returns the last visible row number and the content length.
func (v *View) Position() (visibleBottom, contentBottom int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.positionLocked()
}

func (v *View) positionLocked() (int, int) {
	return min(v.top+v.height, len(v.rows)), len(v.rows)
}

// RowID returns the id of the n-th visible row (1-based).
func (v *View) RowID(n int) (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	idx := v.top + n - 1
	if n < 1 || n > v.height || idx >= len(v.rows) {
		return "", false
	}
	return v.rows[idx].ID, true
}

// Printf writes a formatted message.
func (v *View) Printf(format string, args ...any) {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, _ = fmt.Fprintf(v.out, format, args...)
}

// Render prints the visible rows and the status line.
func (v *View) Render() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	tw := tabwriter.NewWriter(v.out, 0, 4, 2, ' ', 0)
	if err := writeln(tw, "#\tTIME\tHOST\tUSER\tPROCESS\tTYPE\tSEVERITY\tRAW"); err != nil {
		return fmt.Errorf("write table header: %w", err)
	}
	bottom, total := v.positionLocked()
	for i := v.top; i < bottom; i++ {
		r := v.rows[i]
		if err := writef(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i-v.top+1, dash(r.Timestamp), dash(r.Hostname), dash(r.User), dash(r.Process),
			dash(r.EventType), dash(r.Severity), r.RawPreview,
		); err != nil {
			return fmt.Errorf("write row %s: %w", r.ID, err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush table: %w", err)
	}

	first := 0
	if total > 0 {
		first = v.top + 1
	}
	if err := writef(v.out, "[%d-%d of %d] %s\n", first, bottom, total, v.status); err != nil {
		return fmt.Errorf("write status line: %w", err)
	}
	return nil
}

func writeFrame(w io.Writer, title, body string) error {
	width := len([]rune(title)) + 4
	for _, line := range strings.Split(body, "\n") {
		width = max(width, len([]rune(line))+2)
	}
	if err := writef(w, "┌─ %s %s┐\n", title, strings.Repeat("─", width-len([]rune(title))-3)); err != nil {
		return err
	}
	for _, line := range strings.Split(body, "\n") {
		if err := writef(w, "│ %s%s│\n", line, strings.Repeat(" ", width-len([]rune(line))-1)); err != nil {
			return err
		}
	}
	return writef(w, "└%s┘\n", strings.Repeat("─", width))
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	_, err := fmt.Fprintln(w, args...)
	return err
}
