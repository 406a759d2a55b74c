package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/target/mmk-event-browser/internal/domain/model"
	"github.com/target/mmk-event-browser/internal/query"
	"github.com/target/mmk-event-browser/internal/testutil"
)

// pageOf builds a page of n records with ids "<prefix>-0000"...
func pageOf(prefix string, n int, hasMore bool, cursor string) model.EventPage {
	return model.EventPage{
		Data:       testutil.Events(prefix, "alice", n),
		HasMore:    hasMore,
		NextCursor: cursor,
	}
}

type pageResult struct {
	page model.EventPage
	err  error
}

// gatedSource blocks every ListEvents call until a result is released for it.
type gatedSource struct {
	started chan query.Params
	release chan pageResult

	mu    sync.Mutex
	calls []query.Params
}

func newGatedSource() *gatedSource {
	return &gatedSource{
		started: make(chan query.Params, 16),
		release: make(chan pageResult),
	}
}

func (s *gatedSource) ListEvents(ctx context.Context, params query.Params) (model.EventPage, error) {
	s.mu.Lock()
	s.calls = append(s.calls, params)
	s.mu.Unlock()
	s.started <- params
	select {
	case r := <-s.release:
		return r.page, r.err
	case <-ctx.Done():
		return model.EventPage{}, ctx.Err()
	}
}

func (s *gatedSource) GetEvent(context.Context, string) (model.EventDetail, error) {
	return model.EventDetail{}, fmt.Errorf("not implemented")
}

func (s *gatedSource) Calls() []query.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]query.Params, len(s.calls))
	copy(out, s.calls)
	return out
}

// manualClock is an AfterFunc whose timers only fire when told to.
type manualClock struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	delay   time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (c *manualClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, delay: d, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// FireAll runs every timer that is neither stopped nor already fired.
func (c *manualClock) FireAll() int {
	c.mu.Lock()
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	for _, t := range due {
		t.fn()
	}
	return len(due)
}

// Active counts timers still waiting.
func (c *manualClock) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}
