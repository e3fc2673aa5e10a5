package config

import (
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/nimasrn/household-ledger/pkg/logger"
	"github.com/pkg/errors"
)

var config *Config

// Config holds every configuration value of the ledger services. Only this
// struct may be used to read configuration; no direct access to env or any
// other config source should be made.
type Config struct {
	AppEnv              string `env:"APP_ENV" default:"dev"`
	AppName             string `env:"APP_NAME" default:"household_ledger"`
	AppDebug            bool   `env:"APP_DEBUG" default:"1"`
	AppDebugMetricsAddr string `env:"APP_DEBUG_METRIC_ADDR"`
	AppDebugMetricsURI  string `env:"APP_DEBUG_METRIC_URI" default:"/metrics"`

	HttpListenAddr         string        `env:"HTTP_LISTEN_ADDR" default:":8080"`
	HttpRequestTimeout     time.Duration `env:"HTTP_REQUEST_TIMEOUT" default:"5s"`
	HttpCORSAllowOrigin    string        `env:"HTTP_CORS_ALLOW_ORIGIN" default:"*"`
	HttpServerReadTimeout  time.Duration `env:"HTTP_SERVER_READ_TIMEOUT"`
	HttpServerWriteTimeout time.Duration `env:"HTTP_SERVER_WRITE_TIMEOUT"`

	PostgresReadHost     string `env:"POSTGRES_READ_HOST"`
	PostgresReadPort     string `env:"POSTGRES_READ_PORT" default:"5432"`
	PostgresReadUser     string `env:"POSTGRES_READ_USER"`
	PostgresReadPassword string `env:"POSTGRES_READ_PASSWORD"`
	PostgresReadDatabase string `env:"POSTGRES_READ_DBNAME"`

	PostgresWriteHost     string `env:"POSTGRES_WRITE_HOST"`
	PostgresWritePort     string `env:"POSTGRES_WRITE_PORT" default:"5432"`
	PostgresWriteUser     string `env:"POSTGRES_WRITE_USER"`
	PostgresWritePassword string `env:"POSTGRES_WRITE_PASSWORD"`
	PostgresWriteDatabase string `env:"POSTGRES_WRITE_DBNAME"`
	PostgresSSLMode       string `env:"POSTGRES_SSLMODE" default:"disable"`

	RedisAddr               string `env:"REDIS_ADDR"`
	RedisUsername           string `env:"REDIS_USER"`
	RedisPassword           string `env:"REDIS_PASS"`
	RedisDatabase           int    `env:"REDIS_DATABASE"`
	RedisUniversalKeyPrefix string `env:"REDIS_UNIVERSAL_KEY_PREFIX" default:"ledger:"`

	PromNamespace string `env:"PROM_NAMESPACE" default:"household_ledger"`

	// ConfirmLockTTL bounds how long one confirmation may hold the
	// per-occurrence lock.
	ConfirmLockTTL time.Duration `env:"CONFIRM_LOCK_TTL" default:"15s"`
	// ConfirmBestEffortCardLink commits a confirmation even when the linked
	// card transaction cannot be written.
	ConfirmBestEffortCardLink bool `env:"CONFIRM_BEST_EFFORT_CARD_LINK"`

	AdminListenAddr   string        `env:"ADMIN_LISTEN_ADDR" default:":8090"`
	AdminAPIToken     string        `env:"ADMIN_API_TOKEN"`
	IdentityBaseURL   string        `env:"IDENTITY_BASE_URL"`
	IdentityAPIKey    string        `env:"IDENTITY_API_KEY"`
	IdentityTimeout   time.Duration `env:"IDENTITY_TIMEOUT" default:"10s"`
	IdentityInviteURL string        `env:"IDENTITY_INVITE_REDIRECT_URL"`
}

func (c *Config) IsDev() bool {
	return c.AppEnv == "dev"
}

func Load(path string) error {
	logger.Info("loading configs..", "path", path)
	c := &Config{}
	if path != "" {
		logger.Info("trying to publish env from file", "path", path)
		if err := godotenv.Load(path); err != nil {
			return errors.Wrapf(err, "failed to load configuration file %s", path)
		}
	}

	if _, err := env.UnmarshalFromEnviron(c); err != nil {
		return errors.Wrap(err, "failed to map env variables to Configuration object")
	}

	config = c
	return nil
}

func Get() *Config {
	if config == nil {
		logger.Panic("Config is not initialized")
	}
	return config
}

// Set replaces the loaded configuration; used by tests.
func Set(c *Config) {
	config = c
}
