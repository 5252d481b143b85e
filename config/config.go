package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	AES      AESConfig      `mapstructure:"aes"`
	Log      LogConfig      `mapstructure:"log"`
	PayFast  PayFastConfig  `mapstructure:"payfast"`
	Queue    QueueConfig    `mapstructure:"queue"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	Kitchen  KitchenConfig  `mapstructure:"kitchen"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

// Addr returns the HTTP listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`

	// StatementTimeout bounds every query; the order row lock waits under it.
	StatementTimeout time.Duration `mapstructure:"statement_timeout"`
	AutoMigrate      bool          `mapstructure:"auto_migrate"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`

	// Timeouts apply per command. The receipt cache and rate limiter fail
	// open, so these stay short.
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

type AESConfig struct {
	Key string `mapstructure:"key"` // 32-byte hex-encoded key for AES-256
}

type LogConfig struct {
	Level      string `mapstructure:"level"`  // debug, info, warn, error
	Pretty     bool   `mapstructure:"pretty"` // human-readable output (dev only)
	File       string `mapstructure:"file"`   // optional rotating log file
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// Sandbox merchant credentials published by PayFast for integration testing.
const (
	SandboxMerchantID  = "10000100"
	SandboxMerchantKey = "46f0cd694581a"
)

const (
	liveHost    = "https://www.payfast.co.za"
	sandboxHost = "https://sandbox.payfast.co.za"
)

// PayFastConfig is the merchant configuration shared by the checkout builder
// and the notification verifier.
type PayFastConfig struct {
	MerchantID         string        `mapstructure:"merchant_id"`
	MerchantKey        string        `mapstructure:"merchant_key"`
	Passphrase         string        `mapstructure:"passphrase"`
	Sandbox            bool          `mapstructure:"sandbox"`
	PublicBaseURL      string        `mapstructure:"public_base_url"`
	ReturnURL          string        `mapstructure:"return_url"`
	CancelURL          string        `mapstructure:"cancel_url"`
	NotifyURL          string        `mapstructure:"notify_url"`
	ValidHosts         []string      `mapstructure:"valid_hosts"`
	AmountTolerance    float64       `mapstructure:"amount_tolerance"`
	ServerConfirmation bool          `mapstructure:"server_confirmation"`
	ValidateTimeout    time.Duration `mapstructure:"validate_timeout"`
	ValidateRetries    int           `mapstructure:"validate_retries"`
}

func (p PayFastConfig) host() string {
	if p.Sandbox {
		return sandboxHost
	}
	return liveHost
}

// ProcessURL is where the buyer's browser posts the signed payment request.
func (p PayFastConfig) ProcessURL() string {
	return p.host() + "/eng/process"
}

// ValidateURL is the server-to-server confirmation endpoint for notifications.
func (p PayFastConfig) ValidateURL() string {
	return p.host() + "/eng/query/validate"
}

// Callbacks returns the return, cancel and notify URLs. Explicit overrides win
// over URLs derived from the public base URL.
func (p PayFastConfig) Callbacks() (returnURL, cancelURL, notifyURL string) {
	base := strings.TrimRight(p.PublicBaseURL, "/")
	returnURL = firstNonEmpty(p.ReturnURL, base+"/payment/success")
	cancelURL = firstNonEmpty(p.CancelURL, base+"/payment/cancel")
	notifyURL = firstNonEmpty(p.NotifyURL, base+"/api/v1/payfast/notify")
	return returnURL, cancelURL, notifyURL
}

// Validate rejects merchant settings that are unsafe to run with.
func (p PayFastConfig) Validate() error {
	if strings.TrimSpace(p.MerchantID) == "" || strings.TrimSpace(p.MerchantKey) == "" {
		return errors.New("payfast: merchant_id and merchant_key are required")
	}
	if p.AmountTolerance <= 0 {
		return errors.New("payfast: amount_tolerance must be positive")
	}
	if strings.TrimSpace(p.PublicBaseURL) == "" && (p.ReturnURL == "" || p.CancelURL == "" || p.NotifyURL == "") {
		return errors.New("payfast: public_base_url or explicit callback urls are required")
	}
	if !p.Sandbox {
		if !p.ServerConfirmation {
			return errors.New("payfast: server_confirmation cannot be disabled in live mode")
		}
		if p.MerchantID == SandboxMerchantID {
			return errors.New("payfast: sandbox merchant id used in live mode")
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// Validate checks the settings the binaries cannot start without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return errors.New("jwt: secret is required")
	}
	if len(c.AES.Key) != 64 {
		return errors.New("aes: key must be 32 bytes hex-encoded")
	}
	return c.PayFast.Validate()
}

type QueueConfig struct {
	Concurrency int    `mapstructure:"concurrency"`
	Queue       string `mapstructure:"queue"`
	MaxRetry    int    `mapstructure:"max_retry"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// KitchenConfig points at the kitchen display system that receives paid orders.
type KitchenConfig struct {
	WebhookURL string        `mapstructure:"webhook_url"`
	Secret     string        `mapstructure:"secret"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: POS_.
// Nested keys use underscore: POS_DATABASE_HOST, POS_PAYFAST_PASSPHRASE, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "restaurant_pos")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.statement_timeout", "15s")
	v.SetDefault("database.auto_migrate", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 20)
	v.SetDefault("redis.dial_timeout", "2s")
	v.SetDefault("redis.read_timeout", "500ms")
	v.SetDefault("redis.write_timeout", "500ms")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "12h")
	v.SetDefault("jwt.issuer", "restaurant-pos")
	v.SetDefault("aes.key", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)

	v.SetDefault("payfast.merchant_id", SandboxMerchantID)
	v.SetDefault("payfast.merchant_key", SandboxMerchantKey)
	v.SetDefault("payfast.passphrase", "")
	v.SetDefault("payfast.sandbox", true)
	v.SetDefault("payfast.public_base_url", "http://localhost:8080")
	v.SetDefault("payfast.valid_hosts", []string{
		"www.payfast.co.za",
		"sandbox.payfast.co.za",
		"w1w.payfast.co.za",
		"w2w.payfast.co.za",
	})
	v.SetDefault("payfast.amount_tolerance", 0.01)
	v.SetDefault("payfast.server_confirmation", true)
	v.SetDefault("payfast.validate_timeout", "5s")
	v.SetDefault("payfast.validate_retries", 2)

	v.SetDefault("queue.concurrency", 10)
	v.SetDefault("queue.queue", "payments")
	v.SetDefault("queue.max_retry", 5)
	v.SetDefault("smtp.host", "localhost")
	v.SetDefault("smtp.port", 1025)
	v.SetDefault("smtp.from", "receipts@restaurant-pos.local")
	v.SetDefault("kitchen.timeout", "10s")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// POS_PAYFAST_MERCHANT_ID -> payfast.merchant_id
	v.SetEnvPrefix("POS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
