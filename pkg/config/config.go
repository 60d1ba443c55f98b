package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "keranjangku"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	VerifyCode    VerifyCodeConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	Storage       StorageConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Cron          CronConfig
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
	Env          string `envconfig:"KERANJANGKU_APP_ENV" required:"true"`
	Port         string `envconfig:"KERANJANGKU_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"KERANJANGKU_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"KERANJANGKU_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"KERANJANGKU_DB_DSN"`
	Driver string `envconfig:"KERANJANGKU_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"KERANJANGKU_DB_HOST"`
	Port     int    `envconfig:"KERANJANGKU_DB_PORT" default:"5432"`
	User     string `envconfig:"KERANJANGKU_DB_USER"`
	Password string `envconfig:"KERANJANGKU_DB_PASSWORD"`
	Name     string `envconfig:"KERANJANGKU_DB_NAME"`
	SSLMode  string `envconfig:"KERANJANGKU_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"KERANJANGKU_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"KERANJANGKU_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"KERANJANGKU_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"KERANJANGKU_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// ensureDSN assembles a postgres DSN from discrete parts when one is not provided.
func (d *DBConfig) ensureDSN() error {
	if strings.TrimSpace(d.DSN) != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("database config requires either DSN or host/user/name")
	}
	userInfo := url.User(d.User)
	if d.Password != "" {
		userInfo = url.UserPassword(d.User, d.Password)
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     userInfo,
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.Name,
		RawQuery: url.Values{"sslmode": []string{d.SSLMode}}.Encode(),
	}
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"KERANJANGKU_REDIS_URL" required:"true"`
	Address      string        `envconfig:"KERANJANGKU_REDIS_ADDR"`
	Password     string        `envconfig:"KERANJANGKU_REDIS_PASSWORD"`
	DB           int           `envconfig:"KERANJANGKU_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"KERANJANGKU_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"KERANJANGKU_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"KERANJANGKU_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"KERANJANGKU_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"KERANJANGKU_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"KERANJANGKU_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"KERANJANGKU_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"KERANJANGKU_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"KERANJANGKU_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"KERANJANGKU_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"KERANJANGKU_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"KERANJANGKU_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"KERANJANGKU_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"KERANJANGKU_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"KERANJANGKU_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginUsernameLimit int           `envconfig:"KERANJANGKU_AUTH_RATE_LIMIT_LOGIN_USERNAME_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"KERANJANGKU_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"KERANJANGKU_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterLimit      int           `envconfig:"KERANJANGKU_AUTH_RATE_LIMIT_REGISTER_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"KERANJANGKU_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type VerifyCodeConfig struct {
	TTL        time.Duration `envconfig:"KERANJANGKU_VERIFY_CODE_TTL" default:"10m"`
	CodeLength int           `envconfig:"KERANJANGKU_VERIFY_CODE_LENGTH" default:"6"`
	Retention  time.Duration `envconfig:"KERANJANGKU_VERIFY_CODE_RETENTION" default:"168h"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"KERANJANGKU_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"KERANJANGKU_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"KERANJANGKU_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"KERANJANGKU_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"KERANJANGKU_GOOGLE_APPLICATION_CREDENTIALS"`
}

type StorageConfig struct {
	Bucket        string        `envconfig:"KERANJANGKU_STORAGE_BUCKET"`
	SignedURLTTL  time.Duration `envconfig:"KERANJANGKU_STORAGE_SIGNED_URL_TTL" default:"15m"`
	MaxUploadSize int64         `envconfig:"KERANJANGKU_STORAGE_MAX_UPLOAD_BYTES" default:"10485760"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"KERANJANGKU_PUBSUB_DOMAIN_TOPIC" default:"krj-domain-events"`
	DomainSubscription string `envconfig:"KERANJANGKU_PUBSUB_DOMAIN_SUBSCRIPTION"`
	// BroadcastSubscription feeds the websocket hub in the api process. It is
	// separate from DomainSubscription so fan-out does not steal messages from
	// the notifications consumer.
	BroadcastSubscription string `envconfig:"KERANJANGKU_PUBSUB_BROADCAST_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int           `envconfig:"KERANJANGKU_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int           `envconfig:"KERANJANGKU_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int           `envconfig:"KERANJANGKU_OUTBOX_MAX_ATTEMPTS" default:"10"`
	Retention      time.Duration `envconfig:"KERANJANGKU_OUTBOX_RETENTION" default:"720h"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"KERANJANGKU_CRON_INTERVAL" default:"24h"`
	LockKey  string        `envconfig:"KERANJANGKU_CRON_LOCK_KEY" default:"cron:leader"`
	LockTTL  time.Duration `envconfig:"KERANJANGKU_CRON_LOCK_TTL" default:"25h"`
}
