package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App         AppConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Catalog     CatalogConfig
	OrderIntake OrderIntakeConfig
	Checkout    CheckoutConfig
	Session     SessionConfig
	Jobs        JobsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"FOODCART_APP_ENV" required:"true"`
	Port         string   `envconfig:"FOODCART_APP_PORT" default:"8080"`
	LogLevel     string   `envconfig:"FOODCART_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"FOODCART_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"FOODCART_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// RedisConfig is optional; leaving both URL and address empty disables the catalog cache.
type RedisConfig struct {
	URL          string        `envconfig:"FOODCART_REDIS_URL"`
	Address      string        `envconfig:"FOODCART_REDIS_ADDR"`
	Password     string        `envconfig:"FOODCART_REDIS_PASSWORD"`
	DB           int           `envconfig:"FOODCART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FOODCART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FOODCART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FOODCART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FOODCART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FOODCART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret string `envconfig:"FOODCART_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"FOODCART_JWT_ISSUER" required:"true"`
}

type CatalogConfig struct {
	BaseURL  string        `envconfig:"FOODCART_CATALOG_BASE_URL" required:"true"`
	Timeout  time.Duration `envconfig:"FOODCART_CATALOG_TIMEOUT" default:"10s"`
	CacheTTL time.Duration `envconfig:"FOODCART_CATALOG_CACHE_TTL" default:"5m"`
}

type OrderIntakeConfig struct {
	BaseURL         string        `envconfig:"FOODCART_ORDERS_BASE_URL" required:"true"`
	Timeout         time.Duration `envconfig:"FOODCART_ORDERS_TIMEOUT" default:"10s"`
	IdempotencyKeys bool          `envconfig:"FOODCART_ORDERS_IDEMPOTENCY_KEYS" default:"false"`
}

type CheckoutConfig struct {
	MaxConcurrentSubmissions int    `envconfig:"FOODCART_CHECKOUT_MAX_CONCURRENT" default:"4"`
	FallbackRestaurantName   string `envconfig:"FOODCART_CHECKOUT_FALLBACK_RESTAURANT_NAME" default:"Unknown Restaurant"`
}

type SessionConfig struct {
	CookieName   string        `envconfig:"FOODCART_SESSION_COOKIE" default:"foodcart_session"`
	CookieSecure bool          `envconfig:"FOODCART_SESSION_COOKIE_SECURE" default:"true"`
	IdleTTL      time.Duration `envconfig:"FOODCART_SESSION_IDLE_TTL" default:"2h"`
}

type JobsConfig struct {
	Interval time.Duration `envconfig:"FOODCART_JOBS_INTERVAL" default:"5m"`
}

func (c *Config) validate() error {
	if c.Checkout.MaxConcurrentSubmissions <= 0 {
		return fmt.Errorf("%s must be positive", EnvCheckoutMaxConcurrent)
	}
	if strings.TrimSpace(c.Checkout.FallbackRestaurantName) == "" {
		return fmt.Errorf("%s must not be blank", EnvCheckoutFallbackName)
	}
	if c.Session.IdleTTL <= 0 {
		return fmt.Errorf("%s must be positive", EnvSessionIdleTTL)
	}
	return nil
}
