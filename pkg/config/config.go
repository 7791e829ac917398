package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "TOKOPOS"

	AppEnvDev  = "development"
	AppEnvProd = "production"
)

type Config struct {
	App      AppConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Upstream UpstreamConfig
	Catalog  CatalogConfig
	Session  SessionConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TOKOPOS_APP_ENV" required:"true"`
	Port         string `envconfig:"TOKOPOS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"TOKOPOS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TOKOPOS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type RedisConfig struct {
	URL          string        `envconfig:"TOKOPOS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TOKOPOS_REDIS_ADDR"`
	Password     string        `envconfig:"TOKOPOS_REDIS_PASSWORD"`
	DB           int           `envconfig:"TOKOPOS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TOKOPOS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TOKOPOS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TOKOPOS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TOKOPOS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TOKOPOS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"TOKOPOS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"TOKOPOS_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"TOKOPOS_JWT_EXPIRATION_MINUTES" default:"720"`
}

// AccessTokenTTL returns the access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type UpstreamConfig struct {
	BaseURL string        `envconfig:"TOKOPOS_UPSTREAM_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"TOKOPOS_UPSTREAM_TIMEOUT" default:"15s"`
}

type CatalogConfig struct {
	RefreshTTL time.Duration `envconfig:"TOKOPOS_CATALOG_REFRESH_TTL" default:"5m"`
}

type SessionConfig struct {
	TTL            time.Duration `envconfig:"TOKOPOS_SESSION_TTL" default:"12h"`
	IdempotencyTTL time.Duration `envconfig:"TOKOPOS_IDEMPOTENCY_TTL" default:"24h"`
}
