package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	RateLimit    RateLimitConfig
	Inventory    InventoryConfig
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
	Env          string `envconfig:"IMS_APP_ENV" required:"true"`
	Port         string `envconfig:"IMS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"IMS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"IMS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"IMS_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"IMS_DB_DSN"`
	Driver string `envconfig:"IMS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"IMS_DB_HOST"`
	LegacyPort     int    `envconfig:"IMS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"IMS_DB_USER"`
	LegacyPassword string `envconfig:"IMS_DB_PASSWORD"`
	LegacyName     string `envconfig:"IMS_DB_NAME"`
	LegacySSLMode  string `envconfig:"IMS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"IMS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"IMS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"IMS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"IMS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"IMS_REDIS_URL"`
	Address      string        `envconfig:"IMS_REDIS_ADDR"`
	Password     string        `envconfig:"IMS_REDIS_PASSWORD"`
	DB           int           `envconfig:"IMS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"IMS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"IMS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"IMS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"IMS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"IMS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured at all. Redis is
// optional for the IMS API; without it the idempotency middleware is a no-op.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

// RateLimitConfig throttles the mutation surface. Limits count requests per
// window; zero disables the corresponding counter.
type RateLimitConfig struct {
	WriteWindow     time.Duration `envconfig:"IMS_RATE_LIMIT_WRITE_WINDOW" default:"1m"`
	WriteIPLimit    int           `envconfig:"IMS_RATE_LIMIT_WRITE_IP_LIMIT" default:"240"`
	WriteActorLimit int           `envconfig:"IMS_RATE_LIMIT_WRITE_ACTOR_LIMIT" default:"120"`
}

// InventoryConfig carries warehouse-level tunables.
type InventoryConfig struct {
	// StagingAreaPrefix is the bin-code prefix used for inbound staging
	// slots (IS.1, IS.2, ...).
	StagingAreaPrefix string `envconfig:"IMS_STAGING_AREA_PREFIX" default:"IS."`
	// LowStockRatio is the current/initial threshold below which a bin is
	// reported as "low" by the bin search.
	LowStockRatio float64 `envconfig:"IMS_LOW_STOCK_RATIO" default:"0.25"`
	// BatchTimeout bounds a single stock batch operation end to end.
	BatchTimeout time.Duration `envconfig:"IMS_BATCH_TIMEOUT" default:"30s"`
	// ReportWindowDays is the default cycle count report lookback.
	ReportWindowDays int `envconfig:"IMS_REPORT_WINDOW_DAYS" default:"7"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"IMS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"IMS_AUTO_MIGRATE" default:"false"`
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
