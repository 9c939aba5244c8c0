package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "taskhive"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "TASKHIVE_DB_DSN"
	EnvDBHost = "TASKHIVE_DB_HOST"
	EnvDBUser = "TASKHIVE_DB_USER"
	EnvDBName = "TASKHIVE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Approval     ApprovalConfig
	FeatureFlags FeatureFlagsConfig
	PubSub       PubSubConfig
	GCP          GCPConfig
	Outbox       OutboxConfig
	Cron         CronConfig
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
	Env          string `envconfig:"TASKHIVE_APP_ENV" default:"dev"`
	Port         string `envconfig:"TASKHIVE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"TASKHIVE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TASKHIVE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TASKHIVE_DB_DSN"`
	Driver string `envconfig:"TASKHIVE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TASKHIVE_DB_HOST"`
	LegacyPort     int    `envconfig:"TASKHIVE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TASKHIVE_DB_USER"`
	LegacyPassword string `envconfig:"TASKHIVE_DB_PASSWORD"`
	LegacyName     string `envconfig:"TASKHIVE_DB_NAME"`
	LegacySSLMode  string `envconfig:"TASKHIVE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TASKHIVE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TASKHIVE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TASKHIVE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TASKHIVE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	Address      string        `envconfig:"TASKHIVE_REDIS_ADDR" default:"localhost:6379"`
	Password     string        `envconfig:"TASKHIVE_REDIS_PASSWORD"`
	DB           int           `envconfig:"TASKHIVE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TASKHIVE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TASKHIVE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TASKHIVE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TASKHIVE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TASKHIVE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret string `envconfig:"TASKHIVE_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"TASKHIVE_JWT_ISSUER" default:"taskhive"`
}

// ApprovalConfig tunes the approval engine.
type ApprovalConfig struct {
	MinReasonLength int           `envconfig:"TASKHIVE_APPROVAL_MIN_REASON_LENGTH" default:"5"`
	IdempotencyTTL  time.Duration `envconfig:"TASKHIVE_APPROVAL_IDEMPOTENCY_TTL" default:"24h"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"TASKHIVE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"TASKHIVE_AUTO_MIGRATE" default:"false"`
}

type PubSubConfig struct {
	ApprovalTopic string `envconfig:"TASKHIVE_PUBSUB_APPROVAL_TOPIC" default:"th-approval-events"`
}

type GCPConfig struct {
	ProjectID       string `envconfig:"TASKHIVE_GCP_PROJECT_ID"`
	CredentialsJSON string `envconfig:"TASKHIVE_GCP_CREDENTIALS_JSON"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"TASKHIVE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"TASKHIVE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"TASKHIVE_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type CronConfig struct {
	OutboxRetention time.Duration `envconfig:"TASKHIVE_CRON_OUTBOX_RETENTION" default:"168h"`
	SweepInterval   time.Duration `envconfig:"TASKHIVE_CRON_SWEEP_INTERVAL" default:"1h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.Driver == "sqlite" {
		db.DSN = "file::memory:?cache=shared"
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
