package app

import (
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/todobot/core/config"
	coredatabase "github.com/m3rciful/todobot/core/database"
	"github.com/m3rciful/todobot/core/jobs"
	redisstore "github.com/m3rciful/todobot/core/storage/redis"
)

// Storage backends for tasks, lists, users and notifications.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Scenario context store backends.
const (
	ScenarioStoreMemory = "memory"
	ScenarioStoreRedis  = "redis"
)

// ScenarioConfig selects where conversation state lives.
type ScenarioConfig struct {
	Store string `yaml:"store" envconfig:"SCENARIO_STORE"`
	// TTL expires Redis contexts the reset job missed; 0 -> twice the scenario timeout.
	TTL time.Duration `yaml:"ttl" envconfig:"SCENARIO_TTL"`
}

// LimitsConfig holds the defaults copied onto new users.
type LimitsConfig struct {
	MaxTaskCount      int `yaml:"max_task_count" envconfig:"MAX_TASK_COUNT"`
	MaxTaskNameLength int `yaml:"max_task_name_length" envconfig:"MAX_TASK_NAME_LENGTH"`
}

// MetricsConfig configures the ops HTTP endpoint; an empty Addr disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr" envconfig:"METRICS_ADDR"`
}

// SchedulerConfig tunes the background task runner.
type SchedulerConfig struct {
	Enabled     *bool         `yaml:"enabled"`
	StopTimeout time.Duration `yaml:"stop_timeout" envconfig:"SCHEDULER_STOP_TIMEOUT"`
}

// SenderConfig tunes outbound Telegram calls.
type SenderConfig struct {
	Workers   int `yaml:"workers"`
	QueueSize int `yaml:"queue_size"`
	// MaxRetries of 0 selects the default; a negative value disables retries.
	MaxRetries   int           `yaml:"max_retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
}

// Config is the full bot configuration. The reusable core sections are inlined
// at the top level of the YAML file.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Storage   string              `yaml:"storage" envconfig:"STORAGE"`
	Database  coredatabase.Config `yaml:"database"`
	Redis     redisstore.Config   `yaml:"redis"`
	Scenario  ScenarioConfig      `yaml:"scenario"`
	Jobs      jobs.Config         `yaml:"jobs"`
	Scheduler SchedulerConfig     `yaml:"scheduler"`
	Limits    LimitsConfig        `yaml:"limits"`
	Metrics   MetricsConfig       `yaml:"metrics"`
	Sender    SenderConfig        `yaml:"sender"`
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// SchedulerEnabled reports whether background tasks should run.
func (c *Config) SchedulerEnabled() bool {
	return c.Scheduler.Enabled == nil || *c.Scheduler.Enabled
}

// Load reads the YAML file at path, applies environment overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{Jobs: jobs.DefaultConfig()}
	if err := coreconfig.LoadFile(path, cfg); err != nil {
		return nil, err
	}
	if err := Normalize(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Normalize validates cfg and fills defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return err
	}

	cfg.Storage = strings.ToLower(strings.TrimSpace(cfg.Storage))
	switch cfg.Storage {
	case "":
		cfg.Storage = StoragePostgres
	case StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("invalid storage %q; allowed: postgres, memory", cfg.Storage)
	}
	if cfg.Storage == StoragePostgres {
		if cfg.Database.Host == "" || cfg.Database.Name == "" {
			return fmt.Errorf("database.host and database.name are required for postgres storage")
		}
		if cfg.Database.Port == "" {
			cfg.Database.Port = "5432"
		}
		if cfg.Database.SSLMode == "" {
			cfg.Database.SSLMode = "disable"
		}
		if cfg.Database.MaxConnections <= 0 {
			cfg.Database.MaxConnections = 10
		}
	}

	cfg.Scenario.Store = strings.ToLower(strings.TrimSpace(cfg.Scenario.Store))
	switch cfg.Scenario.Store {
	case "":
		cfg.Scenario.Store = ScenarioStoreMemory
	case ScenarioStoreMemory:
	case ScenarioStoreRedis:
		if strings.TrimSpace(cfg.Redis.Addr) == "" {
			return fmt.Errorf("redis.addr is required when scenario.store is 'redis'")
		}
	default:
		return fmt.Errorf("invalid scenario.store %q; allowed: memory, redis", cfg.Scenario.Store)
	}

	def := jobs.DefaultConfig()
	fillTiming(&cfg.Jobs.Deadline, def.Deadline)
	fillTiming(&cfg.Jobs.Today, def.Today)
	fillTiming(&cfg.Jobs.ResetScenario, def.ResetScenario)
	fillTiming(&cfg.Jobs.Notification, def.Notification)
	if cfg.Jobs.ScenarioTimeout <= 0 {
		cfg.Jobs.ScenarioTimeout = def.ScenarioTimeout
	}
	if cfg.Jobs.SendPerSecond < 0 {
		return fmt.Errorf("jobs.send_per_second must be >= 0")
	}
	if cfg.Scenario.TTL <= 0 {
		cfg.Scenario.TTL = 2 * cfg.Jobs.ScenarioTimeout
	}
	if cfg.Scheduler.StopTimeout <= 0 {
		cfg.Scheduler.StopTimeout = 10 * time.Second
	}

	if cfg.Sender.MaxRetries == 0 {
		cfg.Sender.MaxRetries = 3
	}

	if cfg.Limits.MaxTaskCount < 0 || cfg.Limits.MaxTaskNameLength < 0 {
		return fmt.Errorf("limits must be >= 0")
	}
	return nil
}

func fillTiming(t *jobs.Timing, def jobs.Timing) {
	if t.Interval <= 0 && strings.TrimSpace(t.Cron) == "" {
		t.Interval = def.Interval
	}
	if t.Timeout <= 0 {
		t.Timeout = def.Timeout
	}
}
