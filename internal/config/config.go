package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port           int           `yaml:"port"`
	SiteURL        string        `yaml:"site_url"` // public site base for provider redirect URLs
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // trace|debug|info|warn|error
	Format string `yaml:"format"` // json|console
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

type MidtransConfig struct {
	ServerKey string        `yaml:"server_key"`
	Sandbox   bool          `yaml:"sandbox"`
	Timeout   time.Duration `yaml:"timeout"`
}

type XenditConfig struct {
	SecretKey       string        `yaml:"secret_key"`
	CallbackToken   string        `yaml:"callback_token"`
	InvoiceDuration time.Duration `yaml:"invoice_duration"`
	Timeout         time.Duration `yaml:"timeout"`
}

type PaymentConfig struct {
	Midtrans MidtransConfig `yaml:"midtrans"`
	Xendit   XenditConfig   `yaml:"xendit"`
}

type CheckoutConfig struct {
	RequireAuth     bool   `yaml:"require_auth"`
	DefaultProvider string `yaml:"default_provider"` // midtrans|xendit
}

type AdminConfig struct {
	PasswordBcrypt string        `yaml:"password_bcrypt"` // preferred
	Password       string        `yaml:"password"`        // deprecated plaintext fallback
	SessionSecret  string        `yaml:"session_secret"`  // HMAC key for admin JWTs
	SessionTTL     time.Duration `yaml:"session_ttl"`
	MaxAttempts    int           `yaml:"max_attempts"`
	LockoutWindow  time.Duration `yaml:"lockout_window"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Payment  PaymentConfig  `yaml:"payment"`
	Checkout CheckoutConfig `yaml:"checkout"`
	Admin    AdminConfig    `yaml:"admin"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Runtime.Dev = dev

	// defaults
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RequestTimeout <= 0 {
		cfg.Server.RequestTimeout = 30 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Redis.CacheTTL <= 0 {
		cfg.Redis.CacheTTL = 5 * time.Minute
	}
	if cfg.Payment.Midtrans.Timeout <= 0 {
		cfg.Payment.Midtrans.Timeout = 15 * time.Second
	}
	if cfg.Payment.Xendit.Timeout <= 0 {
		cfg.Payment.Xendit.Timeout = 15 * time.Second
	}
	if cfg.Payment.Xendit.InvoiceDuration <= 0 {
		cfg.Payment.Xendit.InvoiceDuration = 24 * time.Hour
	}
	if cfg.Checkout.DefaultProvider == "" {
		cfg.Checkout.DefaultProvider = "midtrans"
	}
	if cfg.Admin.SessionTTL <= 0 {
		cfg.Admin.SessionTTL = 30 * time.Minute
	}
	if cfg.Admin.MaxAttempts <= 0 {
		cfg.Admin.MaxAttempts = 5
	}
	if cfg.Admin.LockoutWindow <= 0 {
		cfg.Admin.LockoutWindow = 15 * time.Minute
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return errors.New("database.url is required")
	}
	if c.Server.SiteURL == "" {
		return errors.New("server.site_url is required")
	}
	if c.Payment.Midtrans.ServerKey == "" && c.Payment.Xendit.SecretKey == "" {
		return errors.New("at least one payment provider must be configured")
	}
	if c.Admin.PasswordBcrypt == "" && c.Admin.Password == "" {
		return errors.New("admin.password_bcrypt (or the deprecated admin.password) is required")
	}
	if c.Admin.SessionSecret == "" {
		return errors.New("admin.session_secret is required")
	}
	return nil
}
