// Package app wires storage, services, scenarios, background jobs and the
// Telegram runtime into a runnable bot.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/todobot/core/bootstrap"
	"github.com/m3rciful/todobot/core/bot"
	"github.com/m3rciful/todobot/core/buildinfo"
	coredatabase "github.com/m3rciful/todobot/core/database"
	"github.com/m3rciful/todobot/core/jobs"
	"github.com/m3rciful/todobot/core/logger"
	"github.com/m3rciful/todobot/core/metrics"
	"github.com/m3rciful/todobot/core/scenario"
	"github.com/m3rciful/todobot/core/scheduler"
	"github.com/m3rciful/todobot/core/service"
	"github.com/m3rciful/todobot/core/storage/memory"
	"github.com/m3rciful/todobot/core/storage/postgres"
	redisstore "github.com/m3rciful/todobot/core/storage/redis"
	tg "github.com/m3rciful/todobot/core/telegram"
	"github.com/m3rciful/todobot/core/telegram/botport"
	"github.com/m3rciful/todobot/core/telegram/router"
	tgsender "github.com/m3rciful/todobot/core/telegram/sender"
	"github.com/m3rciful/todobot/core/telegram/ui"

	tele "gopkg.in/telebot.v4"
)

// Options override infrastructure constructors, mainly for tests.
type Options struct {
	Bootstrap   func(context.Context, bootstrap.Options) (*bootstrap.Result, error)
	RedisClient func(context.Context, redisstore.Config) (redisstore.Client, error)
}

// Services are the business services shared by handlers, scenarios and jobs.
type Services struct {
	Users         *service.UserService
	Tasks         *service.TaskService
	Lists         *service.ListService
	Notifications *service.NotificationService
	Reports       *service.ReportService
}

// App owns the bot's infrastructure for the lifetime of the process.
type App struct {
	cfg      *Config
	db       *sqlx.DB
	redis    redisstore.Client
	Services Services
	Store    scenario.Store
}

// New bootstraps logging and storage according to cfg.
func New(ctx context.Context, cfg *Config, opts Options) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config provided")
	}
	boot := opts.Bootstrap
	if boot == nil {
		boot = bootstrap.Run
	}
	bopts := bootstrap.Options{Config: &cfg.Config}
	if cfg.Storage == StoragePostgres {
		dbCfg := cfg.Database
		bopts.Database = &dbCfg
	}
	res, err := boot(ctx, bopts)
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, db: res.DB}
	a.Services = newServices(cfg, res.DB)

	switch cfg.Scenario.Store {
	case ScenarioStoreRedis:
		connect := opts.RedisClient
		if connect == nil {
			connect = redisstore.NewClient
		}
		client, err := connect(ctx, cfg.Redis)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("app: redis: %w", err)
		}
		a.redis = client
		a.Store = redisstore.NewScenarioStore(client, cfg.Scenario.TTL)
	default:
		a.Store = scenario.NewMemoryStore()
	}

	logger.Info(ctx, "app", "app.storage",
		slog.String("status", "ok"),
		slog.String("storage", cfg.Storage),
		slog.String("scenario_store", cfg.Scenario.Store),
	)
	return a, nil
}

func newServices(cfg *Config, db *sqlx.DB) Services {
	var (
		users service.UserRepository
		tasks service.TaskRepository
		lists service.ListRepository
		notes service.NotificationRepository
	)
	if db != nil {
		users = postgres.NewUserRepo(db)
		tasks = postgres.NewTaskRepo(db)
		lists = postgres.NewListRepo(db)
		notes = postgres.NewNotificationRepo(db)
	} else {
		mu := memory.NewUsers()
		users = mu
		tasks = memory.NewTasks()
		lists = memory.NewLists()
		notes = memory.NewNotifications(mu)
	}
	taskSvc := service.NewTaskService(tasks)
	return Services{
		Users: service.NewUserService(users, service.Limits{
			MaxTaskCount:      cfg.Limits.MaxTaskCount,
			MaxTaskNameLength: cfg.Limits.MaxTaskNameLength,
		}),
		Tasks:         taskSvc,
		Lists:         service.NewListService(lists),
		Notifications: service.NewNotificationService(notes),
		Reports:       service.NewReportService(taskSvc),
	}
}

// Health pings the backing stores.
func (a *App) Health(ctx context.Context) error {
	if a.db != nil {
		if err := coredatabase.Pinger(a.db)(ctx); err != nil {
			return err
		}
	}
	if a.redis != nil {
		if err := a.redis.Ping(ctx); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

// Close releases storage connections.
func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			logger.Warn(logger.Background(), "app", "app.close",
				append([]slog.Attr{slog.String("status", "fail"), slog.String("target", "redis")}, logger.ErrAttrs(err)...)...,
			)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			logger.Warn(logger.Background(), "app", "app.close",
				append([]slog.Attr{slog.String("status", "fail"), slog.String("target", "db")}, logger.ErrAttrs(err)...)...,
			)
		}
	}
}

// Wiring is the update pipeline and background machinery bound to one chat port.
type Wiring struct {
	Registry   *tg.Registry
	Router     *router.Router
	Dispatcher *scenario.Dispatcher
	Jobs       *jobs.Jobs
	Scheduler  *scheduler.Scheduler
}

// Wire builds handlers, scenarios and jobs on top of port.
func (a *App) Wire(port botport.Port) (*Wiring, error) {
	s := a.Services
	disp := scenario.NewDispatcher(a.Store, port, scenario.All(scenario.Deps{
		Users: s.Users,
		Tasks: s.Tasks,
		Lists: s.Lists,
		Bot:   port,
	})...)
	disp.OnUpdateStarted = func(ctx context.Context, text string) {
		logger.Debug(ctx, "scenario", "update.started", slog.String("payload", logger.SanitizeLimit(text, 64)))
	}
	disp.OnUpdateCompleted = func(ctx context.Context, text string) {
		logger.Debug(ctx, "scenario", "update.completed", slog.String("payload", logger.SanitizeLimit(text, 64)))
	}
	disp.OnResult = func(kind scenario.Kind, res scenario.Result) {
		metrics.IncScenarioStep(string(kind), res.String())
	}

	reg := tg.NewRegistry()
	handlers := bot.New(bot.Deps{
		Users:     s.Users,
		Tasks:     s.Tasks,
		Lists:     s.Lists,
		Reports:   s.Reports,
		Scenarios: disp,
		Bot:       port,
		Version:   buildinfo.Short(),
	})
	if err := handlers.Register(reg); err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	j := jobs.New(jobs.Deps{
		Users:         s.Users,
		Tasks:         s.Tasks,
		Notifications: s.Notifications,
		Scenarios:     a.Store,
		Bot:           port,
	}, a.cfg.Jobs)
	sched := scheduler.New()
	sched.OnRun = metrics.ObserveJobRun
	if a.cfg.SchedulerEnabled() {
		if err := j.Register(sched); err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
	}

	return &Wiring{
		Registry:   reg,
		Router:     router.New(reg, disp, s.Users, port),
		Dispatcher: disp,
		Jobs:       j,
		Scheduler:  sched,
	}, nil
}

// TelegramRunOptions builds the telebot runtime: bot client, sender, adapter,
// middleware chain, routes and the lifecycle of the scheduler and ops server.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	core := &a.cfg.Config
	b, err := tg.NewBot(core)
	if err != nil {
		return tg.RunOptions{}, err
	}
	sender := tgsender.NewDispatcher(tgsender.Options{
		Workers:      a.cfg.Sender.Workers,
		QueueSize:    a.cfg.Sender.QueueSize,
		MaxRetries:   a.cfg.Sender.MaxRetries,
		RetryBackoff: a.cfg.Sender.RetryBackoff,
	})
	port := tg.NewAdapter(b, sender)
	w, err := a.Wire(port)
	if err != nil {
		sender.Close()
		return tg.RunOptions{}, err
	}

	var ops *metrics.Server
	if a.cfg.Metrics.Addr != "" {
		ops = metrics.NewServer(a.cfg.Metrics.Addr, a.Health)
	}

	onLimited := func(c tele.Context) error {
		if c.Callback() != nil {
			return c.Respond(&tele.CallbackResponse{Text: ui.MsgSlowDown})
		}
		return nil
	}

	return tg.RunOptions{
		Config:      core,
		Registry:    w.Registry,
		Bot:         b,
		Dispatcher:  sender,
		Middlewares: tg.DefaultMiddlewares(core, onLimited),
		Routes:      router.Routes(w.Router),
		OnStart: func(ctx context.Context, _ tg.Runtime) error {
			if ops != nil {
				ops.Start(ctx)
			}
			if err := w.Scheduler.Start(ctx); err != nil {
				return fmt.Errorf("app: scheduler: %w", err)
			}
			return nil
		},
		OnStop: func(ctx context.Context, _ tg.Runtime) error {
			var errs []error
			if err := w.Scheduler.Stop(a.cfg.Scheduler.StopTimeout); err != nil {
				errs = append(errs, err)
			}
			if ops != nil {
				sctx, cancel := context.WithTimeout(ctx, 5*time.Second)
				defer cancel()
				if err := ops.Shutdown(sctx); err != nil {
					errs = append(errs, err)
				}
			}
			a.Close()
			return errors.Join(errs...)
		},
	}, nil
}
