package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/target/mmk-event-browser/internal/domain/model"
	apperrors "github.com/target/mmk-event-browser/internal/errors"
	"github.com/target/mmk-event-browser/internal/observability/metrics"
	"github.com/target/mmk-event-browser/internal/observability/statsd"
	"github.com/target/mmk-event-browser/internal/ports"
	"github.com/target/mmk-event-browser/internal/query"
)

// Status line texts.
const (
	StatusLoading = "Loading..."
	StatusMore    = "Scroll down to load more..."
	StatusEnd     = "End of list."
)

const (
	pageKindFirst = "first"
	pageKindNext  = "next"
)

// BrowserConfig groups tunables for the Browser.
type BrowserConfig struct {
	Limits   query.Limits
	Renderer *RowRenderer // Optional: defaults to NewRowRenderer(0)
}

// BrowserObservers groups optional observers for the Browser.
type BrowserObservers struct {
	Listener ports.BrowserListener
	Metrics  statsd.Sink
	Logger   *slog.Logger
}

// BrowserOptions groups dependencies for Browser.
type BrowserOptions struct {
	Source    ports.EventSource // Required
	Config    BrowserConfig
	Observers BrowserObservers
}

// Browser is the incremental event-stream view: it owns the filter snapshot, the
// pagination state and the rendered rows, and guarantees at most one page fetch
// in flight.
//
// Concurrency: methods are safe for concurrent use. State is guarded by mu; the
// fetch guard is a weight-1 semaphore held for the duration of a network call.
// Listener callbacks are delivered one at a time, in the order of the state
// changes they describe, and never while mu is held.
type Browser struct {
	source   ports.EventSource
	renderer *RowRenderer
	limits   query.Limits
	listener ports.BrowserListener
	metrics  statsd.Sink
	logger   *slog.Logger

	guard *semaphore.Weighted

	mu            sync.Mutex
	filters       model.FilterSet
	state         model.PaginationState
	rows          []model.Row
	status        string
	resetsWaiting int
	outbox        []func()
	dispatching   bool
}

// NewBrowser constructs a Browser. It panics if Source is nil.
func NewBrowser(opts BrowserOptions) *Browser {
	if opts.Source == nil {
		panic("service: BrowserOptions.Source is required")
	}
	renderer := opts.Config.Renderer
	if renderer == nil {
		renderer = NewRowRenderer(0)
	}
	logger := opts.Observers.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Browser{
		source:   opts.Source,
		renderer: renderer,
		limits:   opts.Config.Limits,
		listener: opts.Observers.Listener,
		metrics:  opts.Observers.Metrics,
		logger:   logger.With("component", "browser"),
		guard:    semaphore.NewWeighted(1),
	}
}

// Reset applies filters, clears the cursor, exhaustion flag and rendered rows, and
// loads the first page for the new filters. If a fetch is outstanding, Reset waits
// for it; that fetch's response is discarded. A Reset superseded by a later Reset
// while waiting returns without fetching.
func (b *Browser) Reset(ctx context.Context, filters model.FilterSet) error {
	b.mu.Lock()
	b.state.Epoch++
	epoch := b.state.Epoch
	b.filters = filters.Normalize()
	b.state.Cursor = ""
	b.state.Exhausted = false
	b.rows = nil
	b.resetsWaiting++
	b.status = StatusLoading
	b.queueLocked(func(l ports.BrowserListener) {
		l.RowsCleared()
		l.StatusChanged(StatusLoading)
	})
	b.dispatchLocked()

	err := b.guard.Acquire(ctx, 1)

	b.mu.Lock()
	b.resetsWaiting--
	if err != nil {
		b.mu.Unlock()
		return fmt.Errorf("wait for in-flight fetch: %w", err)
	}
	if b.state.Epoch != epoch {
		b.mu.Unlock()
		b.guard.Release(1)
		return nil
	}
	b.state.FetchInFlight = true
	snapshot := b.filters
	b.mu.Unlock()

	defer b.guard.Release(1)
	return b.fetch(ctx, fetchRequest{kind: pageKindFirst, epoch: epoch, filters: snapshot})
}

// LoadNext fetches the next page. It is a no-op when the list is exhausted, a
// fetch is already in flight, or a reset is waiting to run.
func (b *Browser) LoadNext(ctx context.Context) error {
	if !b.guard.TryAcquire(1) {
		return nil
	}
	defer b.guard.Release(1)

	b.mu.Lock()
	if b.state.Exhausted || b.resetsWaiting > 0 {
		b.mu.Unlock()
		return nil
	}
	b.state.FetchInFlight = true
	req := fetchRequest{
		kind:    pageKindNext,
		epoch:   b.state.Epoch,
		filters: b.filters,
		cursor:  b.state.Cursor,
	}
	b.mu.Unlock()

	return b.fetch(ctx, req)
}

type fetchRequest struct {
	kind    string
	epoch   uint64
	filters model.FilterSet
	cursor  string
}

// fetch runs one page request; the caller holds the guard.
func (b *Browser) fetch(ctx context.Context, req fetchRequest) error {
	start := time.Now()
	params := query.Build(req.filters, req.cursor, query.ModePaged, b.limits)
	page, err := b.source.ListEvents(ctx, params)
	elapsed := time.Since(start)

	b.mu.Lock()
	b.state.FetchInFlight = false
	if b.state.Epoch != req.epoch {
		b.mu.Unlock()
		b.logger.DebugContext(ctx, "discarding stale page", "kind", req.kind, "epoch", req.epoch)
		metrics.EmitPageFetch(b.metrics, metrics.PageMetric{Kind: req.kind, Result: metrics.ResultStale, Duration: elapsed})
		return nil
	}

	if err != nil {
		msg := apperrors.UserMessage(err)
		b.status = msg
		b.queueLocked(func(l ports.BrowserListener) { l.StatusChanged(msg) })
		b.dispatchLocked()

		b.logger.WarnContext(ctx, "page fetch failed", "kind", req.kind, "error", err)
		metrics.EmitPageFetch(b.metrics, metrics.PageMetric{
			Kind: req.kind, Result: metrics.ResultError, Duration: elapsed, Err: err,
		})
		return fmt.Errorf("load %s page: %w", req.kind, err)
	}

	rows := b.renderer.Render(page.Data)
	b.rows = append(b.rows, rows...)
	total := len(b.rows)
	switch {
	case !page.HasMore:
		b.state.Exhausted = true
	case page.NextCursor == "":
		// Continuing without a cursor would refetch the first page.
		b.logger.WarnContext(ctx, "backend reported more pages without a cursor; treating list as complete")
		b.state.Exhausted = true
	default:
		b.state.Cursor = page.NextCursor
	}
	status := StatusMore
	if b.state.Exhausted {
		status = StatusEnd
	}
	b.status = status
	b.queueLocked(func(l ports.BrowserListener) {
		l.RowsAppended(rows, total)
		l.StatusChanged(status)
	})
	b.dispatchLocked()

	metrics.EmitPageFetch(b.metrics, metrics.PageMetric{
		Kind: req.kind, Result: metrics.ResultSuccess, Rows: len(rows), Total: total, Duration: elapsed,
	})
	return nil
}

// Rows returns a copy of the rendered rows.
func (b *Browser) Rows() []model.Row {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]model.Row, len(b.rows))
	copy(out, b.rows)
	return out
}

// RowCount returns the number of rendered rows.
func (b *Browser) RowCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.rows)
}

// State returns a snapshot of the pagination state.
func (b *Browser) State() model.PaginationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Filters returns the filters the current rows were fetched with.
func (b *Browser) Filters() model.FilterSet {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.filters
}

// Status returns the current status line text.
func (b *Browser) Status() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

// ReportError puts err on the status line without touching pagination state.
func (b *Browser) ReportError(err error) {
	if err == nil {
		return
	}
	msg := apperrors.UserMessage(err)
	b.mu.Lock()
	b.status = msg
	b.queueLocked(func(l ports.BrowserListener) { l.StatusChanged(msg) })
	b.dispatchLocked()
}

// queueLocked records a listener notification. Caller holds mu.
func (b *Browser) queueLocked(fn func(ports.BrowserListener)) {
	if b.listener == nil {
		return
	}
	l := b.listener
	b.outbox = append(b.outbox, func() { fn(l) })
}

// dispatchLocked delivers queued notifications and releases mu. Only one
// goroutine drains the outbox at a time; others leave their entries to it.
func (b *Browser) dispatchLocked() {
	if b.dispatching {
		b.mu.Unlock()
		return
	}
	b.dispatching = true
	for len(b.outbox) > 0 {
		batch := b.outbox
		b.outbox = nil
		b.mu.Unlock()
		for _, fn := range batch {
			fn()
		}
		b.mu.Lock()
	}
	b.dispatching = false
	b.mu.Unlock()
}
