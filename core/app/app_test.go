package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/todobot/core/bootstrap"
	coreconfig "github.com/m3rciful/todobot/core/config"
	coredatabase "github.com/m3rciful/todobot/core/database"
	"github.com/m3rciful/todobot/core/jobs"
	"github.com/m3rciful/todobot/core/scenario"
	redisstore "github.com/m3rciful/todobot/core/storage/redis"
	"github.com/m3rciful/todobot/core/telegram/botport"
	"github.com/m3rciful/todobot/core/telegram/botport/fakebot"
	"github.com/m3rciful/todobot/core/telegram/ui"
)

func memoryConfig(t *testing.T) *Config {
	t.Helper()
	cfg := &Config{
		Config:  coreconfig.Config{Telegram: coreconfig.TelegramConfig{Token: "1:test"}},
		Storage: StorageMemory,
	}
	require.NoError(t, Normalize(cfg))
	return cfg
}

func postgresDB() coredatabase.Config {
	return coredatabase.Config{Host: "db", Name: "todo", User: "bot"}
}

func skipBootstrap(_ context.Context, opts bootstrap.Options) (*bootstrap.Result, error) {
	if opts.Database != nil {
		return nil, errors.New("unexpected database")
	}
	return &bootstrap.Result{}, nil
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
telegram:
  token: "1:abc"
storage: memory
scenario:
  store: redis
redis:
  addr: localhost:6379
jobs:
  today:
    cron: "0 8 * * *"
  scenario_timeout: 30m
limits:
  max_task_count: 5
metrics:
  addr: ":9090"
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "1:abc", cfg.CoreConfig().Telegram.Token)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, ScenarioStoreRedis, cfg.Scenario.Store)
	assert.Equal(t, "0 8 * * *", cfg.Jobs.Today.Cron)
	assert.Equal(t, jobs.DefaultConfig().Deadline.Interval, cfg.Jobs.Deadline.Interval)
	assert.Equal(t, 30*time.Minute, cfg.Jobs.ScenarioTimeout)
	assert.Equal(t, time.Hour, cfg.Scenario.TTL)
	assert.Equal(t, 5, cfg.Limits.MaxTaskCount)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)
	assert.True(t, cfg.SchedulerEnabled())
}

func TestNormalizeRejects(t *testing.T) {
	base := func() *Config {
		return &Config{Config: coreconfig.Config{Telegram: coreconfig.TelegramConfig{Token: "t"}}}
	}
	cases := map[string]func(*Config){
		"postgres without host": func(*Config) {},
		"unknown storage":       func(c *Config) { c.Storage = "sqlite" },
		"redis without addr":    func(c *Config) { c.Storage = StorageMemory; c.Scenario.Store = ScenarioStoreRedis },
		"unknown store":         func(c *Config) { c.Storage = StorageMemory; c.Scenario.Store = "etcd" },
		"negative rate":         func(c *Config) { c.Storage = StorageMemory; c.Jobs.SendPerSecond = -1 },
		"negative limit":        func(c *Config) { c.Storage = StorageMemory; c.Limits.MaxTaskCount = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := base()
			mutate(cfg)
			assert.Error(t, Normalize(cfg))
		})
	}
}

func TestNormalizePostgresDefaults(t *testing.T) {
	cfg := &Config{
		Config:   coreconfig.Config{Telegram: coreconfig.TelegramConfig{Token: "t"}},
		Database: postgresDB(),
	}
	require.NoError(t, Normalize(cfg))
	assert.Equal(t, StoragePostgres, cfg.Storage)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 10, cfg.Database.MaxConnections)
	assert.Equal(t, 3, cfg.Sender.MaxRetries)
}

func TestNewPassesDatabaseForPostgres(t *testing.T) {
	cfg := &Config{
		Config:   coreconfig.Config{Telegram: coreconfig.TelegramConfig{Token: "t"}},
		Database: postgresDB(),
	}
	require.NoError(t, Normalize(cfg))

	boom := errors.New("db down")
	_, err := New(context.Background(), cfg, Options{
		Bootstrap: func(_ context.Context, opts bootstrap.Options) (*bootstrap.Result, error) {
			require.NotNil(t, opts.Database)
			assert.Equal(t, "todo", opts.Database.Name)
			return nil, boom
		},
	})
	require.ErrorIs(t, err, boom)
}

func TestNewRedisFailure(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Scenario.Store = ScenarioStoreRedis
	cfg.Redis.Addr = "localhost:1"

	boom := errors.New("connection refused")
	_, err := New(context.Background(), cfg, Options{
		Bootstrap: skipBootstrap,
		RedisClient: func(context.Context, redisstore.Config) (redisstore.Client, error) {
			return nil, boom
		},
	})
	require.ErrorIs(t, err, boom)
}

func TestWireServesUpdates(t *testing.T) {
	cfg := memoryConfig(t)
	a, err := New(context.Background(), cfg, Options{Bootstrap: skipBootstrap})
	require.NoError(t, err)
	_, ok := a.Store.(*scenario.MemoryStore)
	assert.True(t, ok)
	require.NoError(t, a.Health(context.Background()))

	bot := fakebot.New()
	w, err := a.Wire(bot)
	require.NoError(t, err)
	assert.Equal(t, []string{jobs.NameDeadline, jobs.NameToday, jobs.NameResetScenario, jobs.NameNotification},
		w.Scheduler.Names())

	upd := botport.Update{UserID: 7, ChatID: 7, Username: "ann", Event: botport.TextMessage{Text: "/start"}}
	require.NoError(t, w.Router.Route(context.Background(), upd))
	last, ok := bot.LastSent()
	require.True(t, ok)
	assert.Equal(t, fmt.Sprintf(ui.MsgWelcome, "ann"), last.Text)

	upd.Event = botport.TextMessage{Text: "/addtask"}
	require.NoError(t, w.Router.Route(context.Background(), upd))
	sc, err := a.Store.Get(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, sc)
	assert.Equal(t, scenario.KindAddTask, sc.Kind)
}

func TestWireWithSchedulerDisabled(t *testing.T) {
	cfg := memoryConfig(t)
	off := false
	cfg.Scheduler.Enabled = &off
	a, err := New(context.Background(), cfg, Options{Bootstrap: skipBootstrap})
	require.NoError(t, err)

	w, err := a.Wire(fakebot.New())
	require.NoError(t, err)
	assert.Empty(t, w.Scheduler.Names())
}

func TestWireRejectsBadCron(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Jobs.Today.Cron = "not a cron"
	a, err := New(context.Background(), cfg, Options{Bootstrap: skipBootstrap})
	require.NoError(t, err)

	_, err = a.Wire(fakebot.New())
	require.Error(t, err)
}
