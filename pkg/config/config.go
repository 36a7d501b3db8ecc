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
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Quotes       QuotesConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"PHARMAQUOTE_APP_ENV" required:"true"`
	Port         string `envconfig:"PHARMAQUOTE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"PHARMAQUOTE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PHARMAQUOTE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"PHARMAQUOTE_DB_DSN"`

	Host     string `envconfig:"PHARMAQUOTE_DB_HOST"`
	Port     int    `envconfig:"PHARMAQUOTE_DB_PORT" default:"5432"`
	User     string `envconfig:"PHARMAQUOTE_DB_USER"`
	Password string `envconfig:"PHARMAQUOTE_DB_PASSWORD"`
	Name     string `envconfig:"PHARMAQUOTE_DB_NAME"`
	SSLMode  string `envconfig:"PHARMAQUOTE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PHARMAQUOTE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PHARMAQUOTE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PHARMAQUOTE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PHARMAQUOTE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if strings.TrimSpace(d.DSN) != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("either PHARMAQUOTE_DB_DSN or host/user/name settings are required")
	}
	userInfo := url.User(d.User)
	if d.Password != "" {
		userInfo = url.UserPassword(d.User, d.Password)
	}
	dsn := url.URL{
		Scheme:   "postgres",
		User:     userInfo,
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.Name,
		RawQuery: "sslmode=" + d.SSLMode,
	}
	d.DSN = dsn.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"PHARMAQUOTE_REDIS_URL"`
	Address      string        `envconfig:"PHARMAQUOTE_REDIS_ADDR"`
	Password     string        `envconfig:"PHARMAQUOTE_REDIS_PASSWORD"`
	DB           int           `envconfig:"PHARMAQUOTE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PHARMAQUOTE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PHARMAQUOTE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PHARMAQUOTE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PHARMAQUOTE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PHARMAQUOTE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"PHARMAQUOTE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PHARMAQUOTE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"PHARMAQUOTE_JWT_EXPIRATION_MINUTES" default:"60"`
}

// QuotesConfig bounds the quote validity window accepted at the boundary.
type QuotesConfig struct {
	DefaultValidityDays int `envconfig:"PHARMAQUOTE_QUOTE_DEFAULT_VALIDITY_DAYS" default:"7"`
	MinValidityDays     int `envconfig:"PHARMAQUOTE_QUOTE_MIN_VALIDITY_DAYS" default:"1"`
	MaxValidityDays     int `envconfig:"PHARMAQUOTE_QUOTE_MAX_VALIDITY_DAYS" default:"90"`
}

type FeatureFlagsConfig struct {
	AutoMigrate       bool          `envconfig:"PHARMAQUOTE_AUTO_MIGRATE" default:"false"`
	AnalyticsCacheTTL time.Duration `envconfig:"PHARMAQUOTE_ANALYTICS_CACHE_TTL" default:"60s"`
}
