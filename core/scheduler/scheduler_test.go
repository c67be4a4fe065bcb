package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunOnceWithZeroInterval(t *testing.T) {
	s := New()
	var calls atomic.Int32
	require.NoError(t, s.Register(Task{Name: "once", Run: func(context.Context) error {
		calls.Add(1)
		return nil
	}}))

	require.NoError(t, s.Start(context.Background()))
	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("run-once task did not finish")
	}
	assert.Equal(t, int32(1), calls.Load())
	require.NoError(t, s.Stop(time.Second))
}

func TestIntervalRunsImmediatelyThenRepeats(t *testing.T) {
	s := New()
	var calls atomic.Int32
	require.NoError(t, s.Register(Task{Name: "tick", Interval: 10 * time.Millisecond, Run: func(context.Context) error {
		calls.Add(1)
		return nil
	}}))

	require.NoError(t, s.Start(context.Background()))
	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	require.NoError(t, s.Stop(time.Second))

	after := calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, calls.Load(), "no runs after Stop")
}

func TestFailingTaskDoesNotAffectOthers(t *testing.T) {
	s := New()
	var healthy atomic.Int32
	var results sync.Map
	s.OnRun = func(name string, _ time.Duration, err error) { results.Store(name, err) }

	require.NoError(t, s.Register(Task{Name: "broken", Interval: 5 * time.Millisecond, Run: func(context.Context) error {
		return errors.New("boom")
	}}))
	require.NoError(t, s.Register(Task{Name: "panics", Interval: 5 * time.Millisecond, Run: func(context.Context) error {
		panic("kaboom")
	}}))
	require.NoError(t, s.Register(Task{Name: "healthy", Interval: 5 * time.Millisecond, Run: func(context.Context) error {
		healthy.Add(1)
		return nil
	}}))

	require.NoError(t, s.Start(context.Background()))
	assert.Eventually(t, func() bool { return healthy.Load() >= 3 }, time.Second, 5*time.Millisecond)
	require.NoError(t, s.Stop(time.Second))

	v, ok := results.Load("panics")
	require.True(t, ok)
	assert.ErrorContains(t, v.(error), "kaboom")
	v, ok = results.Load("broken")
	require.True(t, ok)
	assert.EqualError(t, v.(error), "boom")
}

func TestRegisterAfterStart(t *testing.T) {
	s := New()
	require.NoError(t, s.Start(context.Background()))

	err := s.Register(Task{Name: "late", Run: func(context.Context) error { return nil }})
	require.ErrorIs(t, err, ErrAlreadyStarted)
	require.ErrorIs(t, s.Start(context.Background()), ErrAlreadyStarted)
	require.NoError(t, s.Stop(time.Second))
}

func TestRegisterValidation(t *testing.T) {
	s := New()
	require.ErrorIs(t, s.Register(Task{Run: func(context.Context) error { return nil }}), ErrInvalidTask)
	require.ErrorIs(t, s.Register(Task{Name: "nil"}), ErrInvalidTask)
	require.ErrorIs(t, s.Register(Task{Name: "neg", Interval: -time.Second, Run: func(context.Context) error { return nil }}), ErrInvalidTask)
	assert.Empty(t, s.Names())

	noop := func(context.Context) error { return nil }
	require.NoError(t, s.Register(Task{Name: "dup", Run: noop}))
	require.ErrorIs(t, s.Register(Task{Name: "dup", Run: noop}), ErrInvalidTask)
	assert.Equal(t, []string{"dup"}, s.Names())
}

func TestStopIsIdempotent(t *testing.T) {
	s := New()
	require.NoError(t, s.Stop(time.Millisecond), "stop before start")

	require.NoError(t, s.Register(Task{Name: "tick", Interval: time.Hour, Run: func(context.Context) error { return nil }}))
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Stop(time.Second))
	require.NoError(t, s.Stop(time.Second))
}

func TestStopTimeout(t *testing.T) {
	s := New()
	release := make(chan struct{})
	entered := make(chan struct{})
	require.NoError(t, s.Register(Task{Name: "stubborn", Run: func(context.Context) error {
		close(entered)
		<-release
		return nil
	}}))

	require.NoError(t, s.Start(context.Background()))
	<-entered
	require.ErrorIs(t, s.Stop(10*time.Millisecond), ErrStopTimeout)

	close(release)
	require.NoError(t, s.Stop(time.Second))
}

func TestTaskTimeoutCancelsRun(t *testing.T) {
	s := New()
	errs := make(chan error, 1)
	require.NoError(t, s.Register(Task{Name: "slow", Timeout: 10 * time.Millisecond, Run: func(ctx context.Context) error {
		<-ctx.Done()
		errs <- ctx.Err()
		return ctx.Err()
	}}))

	require.NoError(t, s.Start(context.Background()))
	select {
	case err := <-errs:
		require.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(time.Second):
		t.Fatal("timeout was not applied")
	}
	require.NoError(t, s.Stop(time.Second))
}

func TestParentContextStopsLoops(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Register(Task{Name: "tick", Interval: time.Hour, Run: func(context.Context) error { return nil }}))
	require.NoError(t, s.Start(ctx))

	cancel()
	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("loops ignored parent cancellation")
	}
}

func TestStopWithZeroTimeoutAfterLoopsExited(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Register(Task{Name: "tick", Interval: time.Hour, Run: func(context.Context) error { return nil }}))
	require.NoError(t, s.Start(ctx))

	cancel()
	<-s.Done()
	for range 100 {
		require.NoError(t, s.Stop(0))
	}
}

type everySchedule time.Duration

func (e everySchedule) Next(t time.Time) time.Time { return t.Add(time.Duration(e)) }

func TestScheduleOverridesInterval(t *testing.T) {
	s := New()
	var calls atomic.Int32
	require.NoError(t, s.Register(Task{Name: "cron", Schedule: everySchedule(10 * time.Millisecond), Interval: time.Hour, Run: func(context.Context) error {
		calls.Add(1)
		return nil
	}}))
	require.NoError(t, s.Start(context.Background()))
	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	require.NoError(t, s.Stop(time.Second))
}

func TestParseSchedule(t *testing.T) {
	for _, spec := range []string{"0 8 * * *", "0 0 8 * * *", "@daily", "@every 1h"} {
		_, err := ParseSchedule(spec)
		assert.NoError(t, err, spec)
	}
	_, err := ParseSchedule("every day")
	assert.Error(t, err)
}
