package service

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncer_LastScheduleWins(t *testing.T) {
	clock := &manualClock{}
	d := NewDebouncer(0, clock.AfterFunc)
	assert.Equal(t, DefaultDebounce, d.Delay())

	var got []int
	for i := range 5 {
		d.Schedule("q", func() { got = append(got, i) })
	}
	assert.Equal(t, 1, clock.Active())
	assert.True(t, d.Pending("q"))

	assert.Equal(t, 1, clock.FireAll())
	assert.Equal(t, []int{4}, got)
	assert.False(t, d.Pending("q"))
}

func TestDebouncer_KeysAreIndependent(t *testing.T) {
	clock := &manualClock{}
	d := NewDebouncer(time.Second, clock.AfterFunc)

	var fired []string
	d.Schedule("q", func() { fired = append(fired, "q") })
	d.Schedule("user", func() { fired = append(fired, "user") })

	assert.True(t, d.Cancel("q"))
	assert.False(t, d.Cancel("q"))
	clock.FireAll()
	assert.Equal(t, []string{"user"}, fired)
}

func TestDebouncer_StaleTimerDoesNotRun(t *testing.T) {
	clock := &manualClock{}
	d := NewDebouncer(time.Second, clock.AfterFunc)

	var runs atomic.Int32
	d.Schedule("q", func() { runs.Add(1) })
	stale := clock.timers[0]
	d.Schedule("q", func() { runs.Add(10) })

	// Simulate the first timer firing concurrently with its replacement.
	stale.fn()
	assert.EqualValues(t, 0, runs.Load())

	clock.FireAll()
	assert.EqualValues(t, 10, runs.Load())
}

func TestDebouncer_Stop(t *testing.T) {
	clock := &manualClock{}
	d := NewDebouncer(time.Second, clock.AfterFunc)

	ran := false
	d.Schedule("q", func() { ran = true })
	d.Stop()
	d.Schedule("q", func() { ran = true })

	assert.Equal(t, 0, clock.FireAll())
	assert.False(t, ran)
}

func TestDebouncer_RealTimer(t *testing.T) {
	d := NewDebouncer(5*time.Millisecond, nil)
	done := make(chan struct{})
	d.Schedule("q", func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("debounced task did not run")
	}
}
