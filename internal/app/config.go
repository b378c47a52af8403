package app

import (
	"errors"
	"time"

	"github.com/hibiken/asynq"
	"github.com/kelseyhightower/envconfig"

	"github.com/artstock/console/internal/platform/cache"
)

// Config holds runtime configuration for the console.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`
	ShutdownTimeout   time.Duration `envconfig:"APP_SHUTDOWN_TIMEOUT" default:"10s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// PGDSN selects the Postgres account directory. Empty keeps accounts in
	// memory.
	PGDSN      string `envconfig:"PG_DSN"`
	PGMaxConns int32  `envconfig:"PG_MAX_CONNS" default:"4"`
	// AccountsFile is a YAML account directory used when PGDSN is empty.
	AccountsFile string `envconfig:"ACCOUNTS_FILE"`
	// DemoPassword is hashed for the built-in demo accounts.
	DemoPassword string `envconfig:"DEMO_PASSWORD" default:"artstock-demo"`
	// DemoAccounts lists the directory on the login page.
	DemoAccounts bool `envconfig:"DEMO_ACCOUNTS" default:"true"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"720h"`
	SessionCookie string        `envconfig:"SESSION_COOKIE" default:"artstock_sid"`

	CSRFSecret string `envconfig:"CSRF_SECRET" required:"true"`

	RateLimitPerMinute  int `envconfig:"RATE_LIMIT_PER_MINUTE" default:"300"`
	LoginLimitPerMinute int `envconfig:"LOGIN_LIMIT_PER_MINUTE" default:"10"`

	FixtureSeed      uint64        `envconfig:"FIXTURE_SEED" default:"42"`
	BadgeTTL         time.Duration `envconfig:"BADGE_TTL" default:"10m"`
	BadgeRefreshCron string        `envconfig:"BADGE_REFRESH_CRON" default:"@every 5m"`

	WorkerConcurrency int `envconfig:"WORKER_CONCURRENCY" default:"2"`
	// WorkerMetricsAddr serves the worker's /metrics; empty disables it.
	WorkerMetricsAddr string `envconfig:"WORKER_METRICS_ADDR" default:":9091"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("session secret must be provided")
	}
	if cfg.CSRFSecret == "" {
		return nil, errors.New("csrf secret must be provided")
	}
	if cfg.PGDSN == "" && cfg.AccountsFile == "" && cfg.DemoPassword == "" {
		return nil, errors.New("an account directory must be configured")
	}
	return &cfg, nil
}

// RedisOptions addresses the shared Redis database.
func (c *Config) RedisOptions() cache.Options {
	return cache.Options{Addr: c.RedisAddr, Password: c.RedisPassword, DB: c.RedisDB}
}

// AsynqRedis addresses the same database for the job queue.
func (c *Config) AsynqRedis() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: c.RedisAddr, Password: c.RedisPassword, DB: c.RedisDB}
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
