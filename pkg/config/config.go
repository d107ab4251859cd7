package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "development"
	AppEnvProd = "production"
)

type Config struct {
	App        AppConfig
	Service    ServiceConfig
	DB         DBConfig
	Redis      RedisConfig
	GCP        GCPConfig
	PubSub     PubSubConfig
	Eventing   EventingConfig
	Migrations MigrationsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BANCORE_APP_ENV" required:"true"`
	Port         string `envconfig:"BANCORE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BANCORE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BANCORE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"BANCORE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"BANCORE_DB_DSN"`
	Driver string `envconfig:"BANCORE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BANCORE_DB_HOST"`
	LegacyPort     int    `envconfig:"BANCORE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BANCORE_DB_USER"`
	LegacyPassword string `envconfig:"BANCORE_DB_PASSWORD"`
	LegacyName     string `envconfig:"BANCORE_DB_NAME"`
	LegacySSLMode  string `envconfig:"BANCORE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BANCORE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BANCORE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BANCORE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BANCORE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if strings.TrimSpace(d.DSN) != "" {
		return nil
	}
	if d.LegacyHost == "" || d.LegacyUser == "" || d.LegacyName == "" {
		return fmt.Errorf("either BANCORE_DB_DSN or BANCORE_DB_HOST/USER/NAME must be set")
	}
	d.DSN = fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(d.LegacyUser),
		url.QueryEscape(d.LegacyPassword),
		d.LegacyHost,
		d.LegacyPort,
		d.LegacyName,
		d.LegacySSLMode,
	)
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"BANCORE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BANCORE_REDIS_ADDR"`
	Password     string        `envconfig:"BANCORE_REDIS_PASSWORD"`
	DB           int           `envconfig:"BANCORE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BANCORE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BANCORE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BANCORE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BANCORE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BANCORE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"BANCORE_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	CustomerSubscription string `envconfig:"BANCORE_PUBSUB_CUSTOMER_SUBSCRIPTION"`
}

// EventingConfig tunes the customer-event consumer.
type EventingConfig struct {
	ConsumerName string        `envconfig:"BANCORE_EVENTING_CONSUMER_NAME" default:"customer-events"`
	DedupTTL     time.Duration `envconfig:"BANCORE_EVENTING_DEDUP_TTL" default:"72h"`
}

type MigrationsConfig struct {
	AutoRun bool   `envconfig:"BANCORE_MIGRATIONS_AUTO_RUN" default:"false"`
	Dir     string `envconfig:"BANCORE_MIGRATIONS_DIR" default:"pkg/migrate/migrations"`
}
