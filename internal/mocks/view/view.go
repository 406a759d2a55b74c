// Package view contains recording doubles for the browser's display ports.
package view

import (
	"sync"

	"github.com/target/mmk-event-browser/internal/domain/model"
	"github.com/target/mmk-event-browser/internal/ports"
)

var (
	_ ports.BrowserListener = (*RecordingListener)(nil)
	_ ports.Presenter       = (*RecordingPresenter)(nil)
)

// RecordingListener mirrors the browser's row collection and status history.
type RecordingListener struct {
	mu       sync.Mutex
	rows     []model.Row
	statuses []string
	clears   int
	appends  []int
}

func (l *RecordingListener) RowsCleared() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rows = nil
	l.clears++
}

func (l *RecordingListener) RowsAppended(rows []model.Row, _ int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rows = append(l.rows, rows...)
	l.appends = append(l.appends, len(rows))
}

func (l *RecordingListener) StatusChanged(status string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.statuses = append(l.statuses, status)
}

// Rows returns the mirrored rows.
func (l *RecordingListener) Rows() []model.Row {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.Row, len(l.rows))
	copy(out, l.rows)
	return out
}

// Statuses returns every status line seen, oldest first.
func (l *RecordingListener) Statuses() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.statuses))
	copy(out, l.statuses)
	return out
}

// LastStatus returns the latest status line or "".
func (l *RecordingListener) LastStatus() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.statuses) == 0 {
		return ""
	}
	return l.statuses[len(l.statuses)-1]
}

// Clears returns how many times the rows were cleared.
func (l *RecordingListener) Clears() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.clears
}

// AppendSizes returns the size of each appended batch.
func (l *RecordingListener) AppendSizes() []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]int, len(l.appends))
	copy(out, l.appends)
	return out
}

// Detail is one ShowDetail call.
type Detail struct {
	Title string
	Body  string
}

// RecordingPresenter records detail overlays.
type RecordingPresenter struct {
	mu    sync.Mutex
	shown []Detail
}

func (p *RecordingPresenter) ShowDetail(title, body string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shown = append(p.shown, Detail{Title: title, Body: body})
}

// Shown returns every overlay shown so far.
func (p *RecordingPresenter) Shown() []Detail {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Detail, len(p.shown))
	copy(out, p.shown)
	return out
}

// Last returns the latest overlay and whether there was one.
func (p *RecordingPresenter) Last() (Detail, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.shown) == 0 {
		return Detail{}, false
	}
	return p.shown[len(p.shown)-1], true
}
