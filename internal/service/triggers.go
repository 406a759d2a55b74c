package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/target/mmk-event-browser/internal/domain/model"
)

// DefaultScrollThreshold is how close (in rows) to the end of the content the
// viewport must be before the next page is requested.
const DefaultScrollThreshold = 20

// filterTrigger is the debounce key shared by every filter edit: a reset
// snapshots the whole FilterSet, so edits to different fields coalesce.
const filterTrigger = "filters"

// pager is the part of Browser the triggers drive.
type pager interface {
	Reset(ctx context.Context, filters model.FilterSet) error
	LoadNext(ctx context.Context) error
	ReportError(err error)
}

// inspector is the part of Inspector the triggers drive.
type inspector interface {
	InspectWith(ctx context.Context, id, expr string) error
}

// TriggerConfig groups trigger tunables.
type TriggerConfig struct {
	Debounce        time.Duration
	ScrollThreshold int
	AfterFunc       AfterFunc // Optional: defaults to RealAfterFunc
	Logger          *slog.Logger
}

// TriggersOptions groups dependencies for Triggers.
type TriggersOptions struct {
	Browser   pager     // Required
	Inspector inspector // Required
	Config    TriggerConfig
}

// Triggers maps user stimuli onto browser operations: text edits are debounced
// into resets, the regex toggle and reload reset immediately, scroll proximity
// loads the next page and row clicks open the detail view. Triggers own the
// FilterSet; the browser receives a snapshot taken when the reset fires.
type Triggers struct {
	browser   pager
	inspector inspector
	debouncer *Debouncer
	threshold int
	logger    *slog.Logger

	mu      sync.Mutex
	filters model.FilterSet
}

// NewTriggers constructs Triggers. It panics if Browser or Inspector is nil.
func NewTriggers(opts TriggersOptions) *Triggers {
	if opts.Browser == nil || opts.Inspector == nil {
		panic("service: TriggersOptions.Browser and Inspector are required")
	}
	threshold := opts.Config.ScrollThreshold
	if threshold < 0 {
		threshold = DefaultScrollThreshold
	}
	logger := opts.Config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Triggers{
		browser:   opts.Browser,
		inspector: opts.Inspector,
		debouncer: NewDebouncer(opts.Config.Debounce, opts.Config.AfterFunc),
		threshold: threshold,
		logger:    logger.With("component", "triggers"),
	}
}

// Filters returns the current FilterSet.
func (t *Triggers) Filters() model.FilterSet {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.filters
}

// Edit records a new value for a text field and schedules a debounced reset.
// Edits to any field within the quiet period collapse into one reset that sees
// the last values.
func (t *Triggers) Edit(ctx context.Context, field model.FilterField, value string) {
	t.mu.Lock()
	t.filters = t.filters.With(field, value)
	t.mu.Unlock()

	t.debouncer.Schedule(filterTrigger, func() {
		t.runReset(ctx, "debounced "+string(field))
	})
}

// SetRegex toggles regex matching of the query text and resets immediately.
func (t *Triggers) SetRegex(ctx context.Context, on bool) error {
	t.mu.Lock()
	t.filters.Regex = on
	snapshot := t.filters
	t.mu.Unlock()
	t.debouncer.Cancel(filterTrigger)
	return t.browser.Reset(ctx, snapshot)
}

// Reload resets immediately with the current filters. A pending debounced
// reset is dropped since this one already carries its values.
func (t *Triggers) Reload(ctx context.Context) error {
	t.debouncer.Cancel(filterTrigger)
	return t.browser.Reset(ctx, t.Filters())
}

// Scrolled reports the viewport position in rows. When the visible bottom is
// within the threshold of the content bottom the next page is requested; the
// browser ignores the request if the list is exhausted or a fetch is running.
func (t *Triggers) Scrolled(ctx context.Context, visibleBottom, contentBottom int) error {
	if visibleBottom < contentBottom-t.threshold {
		return nil
	}
	return t.browser.LoadNext(ctx)
}

// RowClicked opens the detail view for id; rows without an id are ignored.
func (t *Triggers) RowClicked(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return t.inspector.InspectWith(ctx, id, "")
}

// Close cancels pending debounced resets.
func (t *Triggers) Close() {
	t.debouncer.Stop()
}

func (t *Triggers) runReset(ctx context.Context, cause string) {
	err := t.browser.Reset(ctx, t.Filters())
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	t.logger.WarnContext(ctx, "reset failed", "cause", cause, "error", err)
	t.browser.ReportError(err)
}
