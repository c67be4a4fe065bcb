// Package jobs holds the background notification and housekeeping tasks.
package jobs

import (
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/m3rciful/todobot/core/scenario"
	"github.com/m3rciful/todobot/core/scheduler"
	"github.com/m3rciful/todobot/core/service"
	"github.com/m3rciful/todobot/core/telegram/botport"
)

// Task names as they appear in logs, metrics and config.
const (
	NameDeadline      = "deadline"
	NameToday         = "today"
	NameResetScenario = "reset_scenario"
	NameNotification  = "notification"
)

// Notification type prefixes; the full type is unique per user.
const (
	TypeDeadline = "Deadline_"
	TypeToday    = "Today_"
)

// Timing configures when a task runs. Cron, when set, overrides Interval.
type Timing struct {
	Interval time.Duration `yaml:"interval"`
	Cron     string        `yaml:"cron"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Config tunes the background tasks.
type Config struct {
	Deadline      Timing `yaml:"deadline"`
	Today         Timing `yaml:"today"`
	ResetScenario Timing `yaml:"reset_scenario"`
	Notification  Timing `yaml:"notification"`

	// ScenarioTimeout is the age after which an unanswered scenario is reset.
	ScenarioTimeout time.Duration `yaml:"scenario_timeout"`
	// SendPerSecond throttles notification delivery; zero disables throttling.
	SendPerSecond float64 `yaml:"send_per_second"`
}

// DefaultConfig mirrors the intervals the bot has always used.
func DefaultConfig() Config {
	return Config{
		Deadline:        Timing{Interval: time.Hour, Timeout: 5 * time.Minute},
		Today:           Timing{Interval: 24 * time.Hour, Timeout: 5 * time.Minute},
		ResetScenario:   Timing{Interval: time.Hour, Timeout: time.Minute},
		Notification:    Timing{Interval: time.Minute, Timeout: 5 * time.Minute},
		ScenarioTimeout: time.Hour,
		SendPerSecond:   25,
	}
}

// Deps are the collaborators of the background tasks.
type Deps struct {
	Users         *service.UserService
	Tasks         *service.TaskService
	Notifications *service.NotificationService
	Scenarios     scenario.Store
	Bot           botport.Port
}

// Jobs implements the four background tasks.
type Jobs struct {
	deps    Deps
	cfg     Config
	limiter *rate.Limiter
	now     func() time.Time
}

// New builds the background tasks.
func New(deps Deps, cfg Config) *Jobs {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.SendPerSecond > 0 {
		burst := int(cfg.SendPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.SendPerSecond), burst)
	}
	return &Jobs{
		deps:    deps,
		cfg:     cfg,
		limiter: limiter,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Tasks returns the scheduler tasks in a stable order.
func (j *Jobs) Tasks() ([]scheduler.Task, error) {
	specs := []struct {
		name   string
		timing Timing
		run    scheduler.Job
	}{
		{NameDeadline, j.cfg.Deadline, j.Deadlines},
		{NameToday, j.cfg.Today, j.Today},
		{NameResetScenario, j.cfg.ResetScenario, j.ResetScenarios},
		{NameNotification, j.cfg.Notification, j.Deliver},
	}
	out := make([]scheduler.Task, 0, len(specs))
	for _, spec := range specs {
		task := scheduler.Task{
			Name:     spec.name,
			Interval: spec.timing.Interval,
			Timeout:  spec.timing.Timeout,
			Run:      spec.run,
		}
		if spec.timing.Cron != "" {
			sched, err := scheduler.ParseSchedule(spec.timing.Cron)
			if err != nil {
				return nil, fmt.Errorf("jobs: %s: %w", spec.name, err)
			}
			task.Schedule = sched
		}
		out = append(out, task)
	}
	return out, nil
}

// Register adds every task to s.
func (j *Jobs) Register(s *scheduler.Scheduler) error {
	tasks, err := j.Tasks()
	if err != nil {
		return err
	}
	for _, t := range tasks {
		if err := s.Register(t); err != nil {
			return fmt.Errorf("jobs: %w", err)
		}
	}
	return nil
}
