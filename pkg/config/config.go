package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	Service   ServiceConfig
	DB        DBConfig
	Redis     RedisConfig
	Eventing  EventingConfig
	GCP       GCPConfig
	GCS       GCSConfig
	Media     MediaConfig
	PubSub    PubSubConfig
	Sendgrid  SendgridConfig
	Outbox    OutboxConfig
	Scheduler SchedulerConfig
	Orders    OrdersConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if _, err := cfg.Scheduler.Location(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvSchedulerTimezone, err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BETTEREDIBLE_APP_ENV" required:"true"`
	Port         string `envconfig:"BETTEREDIBLE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BETTEREDIBLE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BETTEREDIBLE_LOG_WARN_STACK" default:"false"`
	// PublicURL is linked from notification emails.
	PublicURL   string   `envconfig:"BETTEREDIBLE_APP_PUBLIC_URL" default:"http://localhost:3000"`
	CORSOrigins []string `envconfig:"BETTEREDIBLE_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"BETTEREDIBLE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"BETTEREDIBLE_DB_DSN"`
	Driver string `envconfig:"BETTEREDIBLE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BETTEREDIBLE_DB_HOST"`
	LegacyPort     int    `envconfig:"BETTEREDIBLE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BETTEREDIBLE_DB_USER"`
	LegacyPassword string `envconfig:"BETTEREDIBLE_DB_PASSWORD"`
	LegacyName     string `envconfig:"BETTEREDIBLE_DB_NAME"`
	LegacySSLMode  string `envconfig:"BETTEREDIBLE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BETTEREDIBLE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BETTEREDIBLE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BETTEREDIBLE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BETTEREDIBLE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	AutoMigrate     bool          `envconfig:"BETTEREDIBLE_AUTO_MIGRATE" default:"false"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BETTEREDIBLE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BETTEREDIBLE_REDIS_ADDR"`
	Password     string        `envconfig:"BETTEREDIBLE_REDIS_PASSWORD"`
	DB           int           `envconfig:"BETTEREDIBLE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BETTEREDIBLE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BETTEREDIBLE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BETTEREDIBLE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BETTEREDIBLE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BETTEREDIBLE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"BETTEREDIBLE_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
	OutboxRetention      time.Duration `envconfig:"BETTEREDIBLE_EVENTING_OUTBOX_RETENTION" default:"720h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"BETTEREDIBLE_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"BETTEREDIBLE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"BETTEREDIBLE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName string `envconfig:"BETTEREDIBLE_GCS_BUCKET_NAME" required:"true"`
	// PublicBaseURL overrides https://storage.googleapis.com for asset links (CDN).
	PublicBaseURL string `envconfig:"BETTEREDIBLE_GCS_PUBLIC_BASE_URL"`
}

type MediaConfig struct {
	MaxUploadMB     int    `envconfig:"BETTEREDIBLE_MAX_UPLOAD_MB" default:"20"`
	LabelFolderRoot string `envconfig:"BETTEREDIBLE_LABEL_FOLDER_ROOT" default:"private-labels"`
}

// MaxUploadBytes converts MaxUploadMB into a byte count.
func (m MediaConfig) MaxUploadBytes() int64 {
	if m.MaxUploadMB <= 0 {
		return 20 << 20
	}
	return int64(m.MaxUploadMB) << 20
}

type PubSubConfig struct {
	ClientOrdersTopic        string `envconfig:"BETTEREDIBLE_PUBSUB_CLIENT_ORDERS_TOPIC" required:"true"`
	ClientOrdersSubscription string `envconfig:"BETTEREDIBLE_PUBSUB_CLIENT_ORDERS_SUBSCRIPTION" required:"true"`
	LabelsTopic              string `envconfig:"BETTEREDIBLE_PUBSUB_LABELS_TOPIC" default:"be-label-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"BETTEREDIBLE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"BETTEREDIBLE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"BETTEREDIBLE_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type SendgridConfig struct {
	APIKey      string `envconfig:"BETTEREDIBLE_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"BETTEREDIBLE_SENDGRID_FROM_EMAIL" default:"orders@betteredibles.com"`
	FromName    string `envconfig:"BETTEREDIBLE_SENDGRID_FROM_NAME" default:"Better Edibles"`
}

type SchedulerConfig struct {
	// Spec is a standard 5-field cron expression for the daily production sweep.
	Spec     string `envconfig:"BETTEREDIBLE_SCHEDULER_SPEC" default:"0 6 * * *"`
	Timezone string `envconfig:"BETTEREDIBLE_SCHEDULER_TIMEZONE" default:"America/Los_Angeles"`
}

// Location resolves Timezone, which also defines the business "today".
func (s SchedulerConfig) Location() (*time.Location, error) {
	if strings.TrimSpace(s.Timezone) == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(s.Timezone)
}

type OrdersConfig struct {
	NumberPrefix       string `envconfig:"BETTEREDIBLE_ORDERS_NUMBER_PREFIX" default:"PL-"`
	ProductionLeadDays int    `envconfig:"BETTEREDIBLE_ORDERS_PRODUCTION_LEAD_DAYS" default:"14"`
	ReminderLeadDays   int    `envconfig:"BETTEREDIBLE_ORDERS_REMINDER_LEAD_DAYS" default:"7"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
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
