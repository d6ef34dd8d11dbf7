// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"

	"storefront/internal/storage"
)

// Config holds every setting the server reads at startup.
type Config struct {
	Addr    string `default:":8000"`
	DevMode bool   `default:"false"`
	GinMode string `default:"release"`

	MySQLDSN     string
	TiDBCA       string `default:"/etc/ssl/certs/ca-certificates.crt"`
	MaxOpenConns int    `default:"16"`

	StorageDriver string `default:"cloudinary"`
	CloudinaryURL string
	S3Endpoint    string
	S3Bucket      string `default:"storefront"`
	S3Region      string `default:"us-east-1"`
	S3AccessKey   string
	S3SecretKey   string
	S3UseSSL      bool          `default:"true"`
	SignedURLTTL  time.Duration `default:"30m"`

	SessionSecret string

	RateLimitRequests int           `default:"120"`
	RateLimitWindow   time.Duration `default:"1m"`

	ErrorLogDir string `default:"logs"`
	CORSOrigins []string
}

// Load reads .env when present, applies defaults and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from defaults and lookup.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	e := env{lookup: lookup}
	e.str("ADDR", &cfg.Addr)
	e.boolean("DEV_MODE", &cfg.DevMode)
	e.str("GIN_MODE", &cfg.GinMode)
	e.str("MYSQL_DSN", &cfg.MySQLDSN)
	e.str("TIDB_CA", &cfg.TiDBCA)
	e.integer("DB_MAX_OPEN_CONNS", &cfg.MaxOpenConns)
	e.str("STORAGE_DRIVER", &cfg.StorageDriver)
	e.str("CLOUDINARY_URL", &cfg.CloudinaryURL)
	e.str("S3_ENDPOINT", &cfg.S3Endpoint)
	e.str("S3_BUCKET", &cfg.S3Bucket)
	e.str("S3_REGION", &cfg.S3Region)
	e.str("S3_ACCESS_KEY", &cfg.S3AccessKey)
	e.str("S3_SECRET_KEY", &cfg.S3SecretKey)
	e.boolean("S3_USE_SSL", &cfg.S3UseSSL)
	e.duration("SIGNED_URL_TTL", &cfg.SignedURLTTL)
	e.str("SESSION_SECRET", &cfg.SessionSecret)
	e.integer("RATE_LIMIT_REQUESTS", &cfg.RateLimitRequests)
	e.duration("RATE_LIMIT_WINDOW", &cfg.RateLimitWindow)
	e.str("ERROR_LOG_DIR", &cfg.ErrorLogDir)
	e.list("CORS_ORIGINS", &cfg.CORSOrigins)
	if e.err != nil {
		return nil, e.err
	}

	if cfg.DevMode {
		cfg.StorageDriver = storage.DriverMemory
		cfg.GinMode = "debug"
		if cfg.SessionSecret == "" {
			cfg.SessionSecret = "dev-session-secret"
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports missing settings. Dev mode needs none.
func (c *Config) Validate() error {
	if c.MaxOpenConns < 1 {
		return errors.New("DB_MAX_OPEN_CONNS must be at least 1")
	}
	if c.RateLimitRequests < 1 || c.RateLimitWindow <= 0 {
		return errors.New("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
	}
	if c.DevMode {
		return nil
	}
	var missing []string
	if c.MySQLDSN == "" {
		missing = append(missing, "MYSQL_DSN")
	}
	if c.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}
	switch c.StorageDriver {
	case storage.DriverCloudinary:
		if c.CloudinaryURL == "" {
			missing = append(missing, "CLOUDINARY_URL")
		}
	case storage.DriverS3:
		for name, v := range map[string]string{"S3_ENDPOINT": c.S3Endpoint, "S3_ACCESS_KEY": c.S3AccessKey, "S3_SECRET_KEY": c.S3SecretKey} {
			if v == "" {
				missing = append(missing, name)
			}
		}
	case storage.DriverMemory:
	default:
		return fmt.Errorf("STORAGE_DRIVER must be cloudinary, s3 or memory, got %q", c.StorageDriver)
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("env %s must be set (or set DEV_MODE=true to run without external services)", strings.Join(missing, ", "))
	}
	return nil
}

// Storage returns the object storage options.
func (c *Config) Storage() storage.Options {
	return storage.Options{
		Driver:        c.StorageDriver,
		CloudinaryURL: c.CloudinaryURL,
		MediaPath:     "/media",
		S3: storage.S3Options{
			Endpoint:  c.S3Endpoint,
			Bucket:    c.S3Bucket,
			Region:    c.S3Region,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			UseSSL:    c.S3UseSSL,
			URLTTL:    c.SignedURLTTL,
		},
	}
}

type env struct {
	lookup func(string) (string, bool)
	err    error
}

func (e *env) get(key string) (string, bool) {
	v, ok := e.lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func (e *env) fail(key, v string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("env %s=%q: %w", key, v, err)
	}
}

func (e *env) str(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

func (e *env) boolean(key string, dst *bool) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(strings.ToLower(v))
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = b
}

func (e *env) integer(key string, dst *int) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = n
}

func (e *env) duration(key string, dst *time.Duration) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = d
}

func (e *env) list(key string, dst *[]string) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*dst = out
}
