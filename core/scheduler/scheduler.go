// Package scheduler runs named background tasks on fixed intervals or cron schedules.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/m3rciful/todobot/core/logger"
)

var (
	// ErrAlreadyStarted is returned by Register and Start once the scheduler runs.
	ErrAlreadyStarted = errors.New("scheduler already started")
	// ErrStopTimeout is returned by Stop when loops did not exit in time.
	ErrStopTimeout = errors.New("scheduler stop timed out")
	// ErrInvalidTask is returned for tasks without a name or a run function.
	ErrInvalidTask = errors.New("invalid scheduler task")
)

// Job is one execution of a task.
type Job func(ctx context.Context) error

// Task describes a background job.
// With Schedule set, Interval is ignored. With neither, the task runs once.
type Task struct {
	Name     string
	Interval time.Duration
	Schedule cron.Schedule
	// Timeout bounds a single run; zero means no bound.
	Timeout time.Duration
	Run     Job
}

// RunHook observes every finished run.
type RunHook func(name string, took time.Duration, err error)

// Scheduler owns one goroutine per registered task.
type Scheduler struct {
	mu      sync.Mutex
	tasks   []Task
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	done    chan struct{}
	now     func() time.Time

	// OnRun, if set before Start, is called after every run.
	OnRun RunHook
}

// New returns an empty scheduler.
func New() *Scheduler {
	return &Scheduler{
		done: make(chan struct{}),
		now:  time.Now,
	}
}

var parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ParseSchedule parses a cron expression ("0 8 * * *", "@every 1h", "@daily").
func ParseSchedule(spec string) (cron.Schedule, error) {
	sched, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", spec, err)
	}
	return sched, nil
}

// Register adds a task. Tasks can only be added before Start.
func (s *Scheduler) Register(t Task) error {
	if t.Name == "" || t.Run == nil {
		return fmt.Errorf("%w: name and run are required", ErrInvalidTask)
	}
	if t.Interval < 0 {
		return fmt.Errorf("%w: %s has negative interval", ErrInvalidTask, t.Name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("register %s: %w", t.Name, ErrAlreadyStarted)
	}
	for _, existing := range s.tasks {
		if existing.Name == t.Name {
			return fmt.Errorf("%w: duplicate name %s", ErrInvalidTask, t.Name)
		}
	}
	s.tasks = append(s.tasks, t)
	return nil
}

// Names lists registered tasks in registration order.
func (s *Scheduler) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t.Name)
	}
	return out
}

// Start launches every task. Each runs immediately, then on its schedule,
// until ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for _, t := range s.tasks {
		s.wg.Add(1)
		go s.loop(runCtx, t)
	}
	go func() {
		s.wg.Wait()
		close(s.done)
	}()

	logger.Info(ctx, "scheduler", "scheduler.start",
		slog.String("status", "ok"),
		slog.Int("tasks", len(s.tasks)),
	)
	return nil
}

// Stop cancels all loops and waits up to timeout for them to exit.
// It is safe to call more than once and before Start.
func (s *Scheduler) Stop(timeout time.Duration) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	cancel := s.cancel
	s.mu.Unlock()
	cancel()

	// Loops that already exited win over an expired or zero timeout.
	select {
	case <-s.done:
		logger.Info(logger.Background(), "scheduler", "scheduler.stop", slog.String("status", "ok"))
		return nil
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-s.done:
		logger.Info(logger.Background(), "scheduler", "scheduler.stop", slog.String("status", "ok"))
		return nil
	case <-timer.C:
		logger.Warn(logger.Background(), "scheduler", "scheduler.stop",
			slog.String("status", "fail"),
			slog.Duration("timeout", timeout),
		)
		return ErrStopTimeout
	}
}

// Done is closed once every loop has exited after Start.
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

func (s *Scheduler) loop(ctx context.Context, t Task) {
	defer s.wg.Done()
	for {
		s.runOnce(ctx, t)
		wait, ok := s.next(t)
		if !ok {
			return
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (s *Scheduler) next(t Task) (time.Duration, bool) {
	switch {
	case t.Schedule != nil:
		now := s.now()
		next := t.Schedule.Next(now)
		if next.IsZero() {
			return 0, false
		}
		return next.Sub(now), true
	case t.Interval > 0:
		return t.Interval, true
	}
	return 0, false
}

func (s *Scheduler) runOnce(ctx context.Context, t Task) {
	if ctx.Err() != nil {
		return
	}
	runCtx := ctx
	if t.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}

	start := time.Now()
	err := safeRun(runCtx, t)
	took := logger.Took(start)
	if s.OnRun != nil {
		s.OnRun(t.Name, took, err)
	}
	if err != nil {
		logger.Error(ctx, "scheduler", "task.run",
			append([]slog.Attr{
				slog.String("status", "fail"),
				slog.String("task", t.Name),
				slog.Duration("duration", took),
			}, logger.ErrAttrs(err)...)...,
		)
		return
	}
	logger.Debug(ctx, "scheduler", "task.run",
		slog.String("status", "ok"),
		slog.String("task", t.Name),
		slog.Duration("duration", took),
	)
}

func safeRun(ctx context.Context, t Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v\n%s", t.Name, r, debug.Stack())
		}
	}()
	return t.Run(ctx)
}
