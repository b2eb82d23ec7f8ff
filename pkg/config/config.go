package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Checkout     CheckoutConfig
	Authz        AuthzConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ECOREACT_APP_ENV" required:"true"`
	Port         string `envconfig:"ECOREACT_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"ECOREACT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ECOREACT_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"ECOREACT_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ECOREACT_DB_DSN"`
	Driver string `envconfig:"ECOREACT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ECOREACT_DB_HOST"`
	LegacyPort     int    `envconfig:"ECOREACT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ECOREACT_DB_USER"`
	LegacyPassword string `envconfig:"ECOREACT_DB_PASSWORD"`
	LegacyName     string `envconfig:"ECOREACT_DB_NAME"`
	LegacySSLMode  string `envconfig:"ECOREACT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ECOREACT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ECOREACT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ECOREACT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ECOREACT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ECOREACT_REDIS_URL"`
	Address      string        `envconfig:"ECOREACT_REDIS_ADDR"`
	Password     string        `envconfig:"ECOREACT_REDIS_PASSWORD"`
	DB           int           `envconfig:"ECOREACT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ECOREACT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ECOREACT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ECOREACT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ECOREACT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ECOREACT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"ECOREACT_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"ECOREACT_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"ECOREACT_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"ECOREACT_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

// CheckoutConfig bounds the checkout transaction.
type CheckoutConfig struct {
	TxTimeout time.Duration `envconfig:"ECOREACT_CHECKOUT_TX_TIMEOUT" default:"10s"`
}

// AuthzConfig tunes the permission cache.
type AuthzConfig struct {
	CacheTTL time.Duration `envconfig:"ECOREACT_AUTHZ_CACHE_TTL" default:"5m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ECOREACT_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		"ECOREACT_DB_HOST": db.LegacyHost,
		"ECOREACT_DB_USER": db.LegacyUser,
		"ECOREACT_DB_NAME": db.LegacyName,
	}
	for _, key := range []string{"ECOREACT_DB_HOST", "ECOREACT_DB_USER", "ECOREACT_DB_NAME"} {
		if legacyValues[key] == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either ECOREACT_DB_DSN or %s are required", strings.Join(missing, ", "))
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
