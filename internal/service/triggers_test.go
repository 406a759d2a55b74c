package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/mmk-event-browser/internal/domain/model"
)

type fakePager struct {
	mu       sync.Mutex
	resets   []model.FilterSet
	loads    int
	reported []error
	resetErr error
}

func (p *fakePager) Reset(_ context.Context, f model.FilterSet) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resets = append(p.resets, f)
	return p.resetErr
}

func (p *fakePager) LoadNext(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loads++
	return nil
}

func (p *fakePager) ReportError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reported = append(p.reported, err)
}

type fakeInspector struct {
	ids []string
}

func (f *fakeInspector) InspectWith(_ context.Context, id, _ string) error {
	f.ids = append(f.ids, id)
	return nil
}

func newTestTriggers(threshold int) (*Triggers, *fakePager, *fakeInspector, *manualClock) {
	pager := &fakePager{}
	insp := &fakeInspector{}
	clock := &manualClock{}
	tr := NewTriggers(TriggersOptions{
		Browser:   pager,
		Inspector: insp,
		Config:    TriggerConfig{ScrollThreshold: threshold, AfterFunc: clock.AfterFunc},
	})
	return tr, pager, insp, clock
}

func TestTriggers_EditsCoalesceIntoOneReset(t *testing.T) {
	tr, pager, _, clock := newTestTriggers(20)
	ctx := context.Background()

	for _, v := range []string{"a", "al", "ali", "alic", "alice"} {
		tr.Edit(ctx, model.FilterUser, v)
	}
	assert.Empty(t, pager.resets)

	clock.FireAll()
	require.Len(t, pager.resets, 1)
	assert.Equal(t, model.FilterSet{User: "alice"}, pager.resets[0])
}

func TestTriggers_ResetSeesValuesAtFireTime(t *testing.T) {
	tr, pager, _, clock := newTestTriggers(20)
	ctx := context.Background()

	tr.Edit(ctx, model.FilterQuery, "sshd")
	require.NoError(t, tr.SetRegex(ctx, true))
	require.Len(t, pager.resets, 1, "regex toggle resets immediately")

	tr.Edit(ctx, model.FilterHost, "web-1")
	clock.FireAll()

	require.Len(t, pager.resets, 2, "the pending query edit was folded into the regex reset")
	assert.Equal(t, model.FilterSet{Query: "sshd", Regex: true}, pager.resets[0])
	want := model.FilterSet{Query: "sshd", Regex: true, Host: "web-1"}
	assert.Equal(t, want, pager.resets[1])
	assert.Equal(t, want, tr.Filters())
}

func TestTriggers_EditsToDifferentFieldsCoalesce(t *testing.T) {
	tr, pager, _, clock := newTestTriggers(20)
	ctx := context.Background()

	tr.Edit(ctx, model.FilterUser, "alice")
	tr.Edit(ctx, model.FilterHost, "web1")
	clock.FireAll()

	require.Len(t, pager.resets, 1)
	assert.Equal(t, model.FilterSet{User: "alice", Host: "web1"}, pager.resets[0])
}

func TestTriggers_Reload(t *testing.T) {
	tr, pager, _, clock := newTestTriggers(20)
	tr.Edit(context.Background(), model.FilterSeverity, "high")
	require.NoError(t, tr.Reload(context.Background()))
	require.Len(t, pager.resets, 1)
	assert.Equal(t, "high", pager.resets[0].Severity)

	clock.FireAll()
	assert.Len(t, pager.resets, 1, "reload drops the pending debounced reset")
}

func TestTriggers_Scrolled(t *testing.T) {
	tr, pager, _, _ := newTestTriggers(20)
	ctx := context.Background()

	require.NoError(t, tr.Scrolled(ctx, 50, 100))
	assert.Equal(t, 0, pager.loads)

	require.NoError(t, tr.Scrolled(ctx, 80, 100))
	require.NoError(t, tr.Scrolled(ctx, 100, 100))
	assert.Equal(t, 2, pager.loads)
}

func TestTriggers_RowClicked(t *testing.T) {
	tr, _, insp, _ := newTestTriggers(20)
	ctx := context.Background()

	require.NoError(t, tr.RowClicked(ctx, ""))
	require.NoError(t, tr.RowClicked(ctx, "ev-7"))
	assert.Equal(t, []string{"ev-7"}, insp.ids)
}

func TestTriggers_DebouncedResetErrorsAreReported(t *testing.T) {
	tr, pager, _, clock := newTestTriggers(20)
	pager.resetErr = errors.New("HTTP 500")

	tr.Edit(context.Background(), model.FilterQuery, "x")
	clock.FireAll()
	require.Len(t, pager.reported, 1)

	pager.resetErr = context.Canceled
	tr.Edit(context.Background(), model.FilterQuery, "y")
	clock.FireAll()
	assert.Len(t, pager.reported, 1)
}

func TestTriggers_CloseCancelsPending(t *testing.T) {
	tr, pager, _, clock := newTestTriggers(20)
	tr.Edit(context.Background(), model.FilterQuery, "x")
	tr.Close()
	clock.FireAll()
	assert.Empty(t, pager.resets)
}
