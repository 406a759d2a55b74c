package service

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before a text edit triggers a reset.
const DefaultDebounce = 300 * time.Millisecond

// Timer is the part of *time.Timer the debouncer uses.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules fn to run once after d. time.AfterFunc satisfies it via
// RealAfterFunc; tests substitute a manual scheduler.
type AfterFunc func(d time.Duration, fn func()) Timer

// RealAfterFunc wraps time.AfterFunc.
func RealAfterFunc(d time.Duration, fn func()) Timer { return time.AfterFunc(d, fn) }

// Debouncer is a cancellable delayed-task scheduler keyed by logical trigger.
// Scheduling a key cancels that key's pending task; only the last one runs.
type Debouncer struct {
	delay time.Duration
	after AfterFunc

	mu      sync.Mutex
	pending map[string]pendingTask
	seq     uint64
	stopped bool
}

type pendingTask struct {
	timer Timer
	seq   uint64
}

// NewDebouncer creates a Debouncer. delay <= 0 uses DefaultDebounce; a nil after
// uses RealAfterFunc.
func NewDebouncer(delay time.Duration, after AfterFunc) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	if after == nil {
		after = RealAfterFunc
	}
	return &Debouncer{
		delay:   delay,
		after:   after,
		pending: make(map[string]pendingTask),
	}
}

// Delay returns the configured quiet period.
func (d *Debouncer) Delay() time.Duration { return d.delay }

// Schedule runs fn after the quiet period unless key is scheduled again first.
func (d *Debouncer) Schedule(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if prev, ok := d.pending[key]; ok {
		prev.timer.Stop()
	}
	d.seq++
	seq := d.seq
	timer := d.after(d.delay, func() {
		d.mu.Lock()
		cur, ok := d.pending[key]
		// A timer that fired while being replaced must not run.
		if !ok || cur.seq != seq || d.stopped {
			d.mu.Unlock()
			return
		}
		delete(d.pending, key)
		d.mu.Unlock()
		fn()
	})
	d.pending[key] = pendingTask{timer: timer, seq: seq}
}

// Cancel drops key's pending task and reports whether one was pending.
func (d *Debouncer) Cancel(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	task, ok := d.pending[key]
	if !ok {
		return false
	}
	task.timer.Stop()
	delete(d.pending, key)
	return true
}

// Pending reports whether key has a task waiting.
func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[key]
	return ok
}

// Stop cancels every pending task; later Schedule calls are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	for key, task := range d.pending {
		task.timer.Stop()
		delete(d.pending, key)
	}
}
