package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	IdentityMemory   = "memory"
	IdentityRedis    = "redis"
	IdentityPostgres = "postgres"
)

type Config struct {
	Port            string        `yaml:"port"`
	LogLevel        string        `yaml:"logLevel"`
	LogFormat       string        `yaml:"logFormat"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`

	// Remote product API
	ProductAPIURL   string        `yaml:"productApiUrl"`
	CatalogPath     string        `yaml:"catalogPath"`
	CartPath        string        `yaml:"cartPath"`
	UpstreamTimeout time.Duration `yaml:"upstreamTimeout"`

	// Storefront
	CatalogLimit int           `yaml:"catalogLimit"`
	Locale       string        `yaml:"locale"`
	Currency     string        `yaml:"currency"`
	ShareBaseURL string        `yaml:"shareBaseUrl"`
	LoginDelay   time.Duration `yaml:"loginDelay"`
	SessionIdle  time.Duration `yaml:"sessionIdle"`
	MaxSessions  int           `yaml:"maxSessions"`

	// Identity store
	IdentityBackend string        `yaml:"identityBackend"`
	RedisAddr       string        `yaml:"redisAddr"`
	RedisPassword   string        `yaml:"redisPassword"`
	RedisDB         int           `yaml:"redisDb"`
	IdentityTTL     time.Duration `yaml:"identityTtl"`
	DatabaseURL     string        `yaml:"databaseUrl"`

	// Events; no URL means events are dropped
	RabbitMQURL string `yaml:"rabbitmqUrl"`

	TracingEnabled bool `yaml:"tracingEnabled"`

	// CORS
	CORSAllowOrigins []string `yaml:"corsAllowOrigins"`
}

func Defaults() Config {
	return Config{
		Port:             "8080",
		LogLevel:         "info",
		LogFormat:        "json",
		ShutdownTimeout:  10 * time.Second,
		ProductAPIURL:    "https://dummyjson.com",
		CatalogPath:      "/products",
		CartPath:         "/carts",
		UpstreamTimeout:  10 * time.Second,
		CatalogLimit:     30,
		Locale:           "pt-BR",
		Currency:         "BRL",
		ShareBaseURL:     "https://seusite.com/produto",
		LoginDelay:       1500 * time.Millisecond,
		SessionIdle:      30 * time.Minute,
		MaxSessions:      10000,
		IdentityBackend:  IdentityMemory,
		RedisAddr:        "redis:6379",
		IdentityTTL:      0,
		CORSAllowOrigins: []string{"*"},
	}
}

// Load reads .env (if present), then the optional YAML file named by
// STOREFRONT_CONFIG, then the environment. Later sources win.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if path := strings.TrimSpace(os.Getenv("STOREFRONT_CONFIG")); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg.Port = getenv("PORT", cfg.Port)
	cfg.LogLevel = getenv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getenv("LOG_FORMAT", cfg.LogFormat)
	cfg.ShutdownTimeout = parseDuration(getenv("SHUTDOWN_TIMEOUT", ""), cfg.ShutdownTimeout)

	cfg.ProductAPIURL = getenv("PRODUCT_API_URL", cfg.ProductAPIURL)
	cfg.CatalogPath = getenv("CATALOG_PATH", cfg.CatalogPath)
	cfg.CartPath = getenv("CART_PATH", cfg.CartPath)
	cfg.UpstreamTimeout = parseDuration(getenv("UPSTREAM_TIMEOUT", ""), cfg.UpstreamTimeout)

	cfg.CatalogLimit = parseInt(getenv("CATALOG_LIMIT", ""), cfg.CatalogLimit)
	cfg.Locale = getenv("LOCALE", cfg.Locale)
	cfg.Currency = getenv("CURRENCY", cfg.Currency)
	cfg.ShareBaseURL = getenv("SHARE_BASE_URL", cfg.ShareBaseURL)
	cfg.LoginDelay = parseDuration(getenv("LOGIN_DELAY", ""), cfg.LoginDelay)
	cfg.SessionIdle = parseDuration(getenv("SESSION_IDLE", ""), cfg.SessionIdle)
	cfg.MaxSessions = parseInt(getenv("MAX_SESSIONS", ""), cfg.MaxSessions)

	cfg.IdentityBackend = strings.ToLower(getenv("IDENTITY_BACKEND", cfg.IdentityBackend))
	cfg.RedisAddr = getenv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = getenv("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisDB = parseInt(getenv("REDIS_DB", ""), cfg.RedisDB)
	cfg.IdentityTTL = parseDuration(getenv("IDENTITY_TTL", ""), cfg.IdentityTTL)
	cfg.DatabaseURL = getenv("DATABASE_URL", cfg.DatabaseURL)

	cfg.RabbitMQURL = getenv("RABBITMQ_URL", cfg.RabbitMQURL)
	cfg.TracingEnabled = parseBool(getenv("TRACING_ENABLED", ""), cfg.TracingEnabled)

	if v := getenv("CORS_ALLOW_ORIGINS", ""); v != "" {
		cfg.CORSAllowOrigins = splitCSV(v)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Validate rejects settings the service cannot start with.
func (c Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if u, err := url.Parse(c.ProductAPIURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("PRODUCT_API_URL %q is not an absolute URL", c.ProductAPIURL))
	}
	if c.UpstreamTimeout <= 0 {
		errs = append(errs, errors.New("UPSTREAM_TIMEOUT must be positive"))
	}
	if c.CatalogLimit <= 0 {
		errs = append(errs, errors.New("CATALOG_LIMIT must be positive"))
	}
	if c.LoginDelay < 0 {
		errs = append(errs, errors.New("LOGIN_DELAY must not be negative"))
	}
	if c.SessionIdle < 0 || c.MaxSessions < 0 {
		errs = append(errs, errors.New("SESSION_IDLE and MAX_SESSIONS must not be negative"))
	}

	switch c.IdentityBackend {
	case IdentityMemory:
	case IdentityRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required for the redis identity backend"))
		}
	case IdentityPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres identity backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("IDENTITY_BACKEND %q is not one of memory, redis, postgres", c.IdentityBackend))
	}

	return errors.Join(errs...)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func parseDuration(v string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func parseInt(v string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

func parseBool(v string, def bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return b
}
