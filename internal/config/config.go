// Package config defines the top-level configuration for the stocklens
// service and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by STOCKLENS_* environment variables.
type Config struct {
	Providers ProvidersConfig `toml:"providers"`
	Postgres  PostgresConfig  `toml:"postgres"`
	Redis     RedisConfig     `toml:"redis"`
	S3        S3Config        `toml:"s3"`
	Scan      ScanConfig      `toml:"scan"`
	Backtest  BacktestConfig  `toml:"backtest"`
	Feed      FeedConfig      `toml:"feed"`
	Server    ServerConfig    `toml:"server"`
	Notify    NotifyConfig    `toml:"notify"`
	Mode      string          `toml:"mode"`
	LogLevel  string          `toml:"log_level"`
}

// ProvidersConfig holds the upstream market-data provider settings. The Order
// list controls the fallback chain; the first healthy provider wins.
type ProvidersConfig struct {
	Order          []string `toml:"order"`
	FinnhubAPIKey  string   `toml:"finnhub_api_key"`
	FinnhubBaseURL string   `toml:"finnhub_base_url"`
	StooqBaseURL   string   `toml:"stooq_base_url"`
}

// PostgresConfig holds PostgreSQL connection parameters. Persistence is
// optional; with Enabled false the service runs without run history or
// watchlists.
type PostgresConfig struct {
	Enabled       bool   `toml:"enabled"`
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters for backtest run
// archival. Optional; with Enabled false runs are not archived.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// ScanConfig holds the scan board parameters.
type ScanConfig struct {
	// Symbols is the default watchlist scanned when a request names neither
	// an explicit symbol list nor a saved watchlist.
	Symbols []string `toml:"symbols"`

	// Concurrency caps parallel per-symbol fetches during a scan.
	Concurrency int `toml:"concurrency"`

	// AlertThreshold raises a notification when a symbol's signal score
	// reaches this value. Zero disables alerting.
	AlertThreshold int `toml:"alert_threshold"`

	// Interval is how often scan mode re-runs the board. Zero means run
	// once and exit.
	Interval duration `toml:"interval"`
}

// BacktestConfig caps the parameter space accepted by the backtest endpoint.
type BacktestConfig struct {
	// MaxSlowPeriod is the largest slow SMA window a request may ask for.
	MaxSlowPeriod int `toml:"max_slow_period"`

	// MaxFeeBps is the largest per-trade fee a request may ask for.
	MaxFeeBps float64 `toml:"max_fee_bps"`
}

// FeedConfig holds the background quote poller parameters.
type FeedConfig struct {
	Enabled  bool     `toml:"enabled"`
	Interval duration `toml:"interval"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	APIKey      string   `toml:"api_key"`
	RateLimit   int      `toml:"rate_limit"`
	RateWindow  duration `toml:"rate_window"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Providers: ProvidersConfig{
			Order:          []string{"stooq", "finnhub"},
			FinnhubBaseURL: "https://finnhub.io/api/v1",
			StooqBaseURL:   "https://stooq.com",
		},
		Postgres: PostgresConfig{
			Enabled:       false,
			Host:          "localhost",
			Port:          5432,
			Database:      "stocklens",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		S3: S3Config{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "stocklens-data",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		Scan: ScanConfig{
			Symbols:        []string{"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA", "META", "TSLA"},
			Concurrency:    4,
			AlertThreshold: 80,
			Interval:       duration{5 * time.Minute},
		},
		Backtest: BacktestConfig{
			MaxSlowPeriod: 250,
			MaxFeeBps:     100,
		},
		Feed: FeedConfig{
			Enabled:  true,
			Interval: duration{15 * time.Second},
		},
		Server: ServerConfig{
			Enabled:     true,
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
			RateLimit:   120,
			RateWindow:  duration{time.Minute},
		},
		Notify: NotifyConfig{
			Events: []string{"signal.strong", "error"},
		},
		Mode:     "full",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"server": true,
	"scan":   true,
	"full":   true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validProviders enumerates the provider names accepted in providers.order.
var validProviders = map[string]bool{
	"stooq":   true,
	"finnhub": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	// Mode
	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: server, scan, full)", c.Mode))
	}

	// LogLevel
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Providers
	if len(c.Providers.Order) == 0 {
		errs = append(errs, "providers: order must name at least one provider")
	}
	for _, name := range c.Providers.Order {
		if !validProviders[strings.ToLower(name)] {
			errs = append(errs, fmt.Sprintf("providers: unknown provider %q (valid: stooq, finnhub)", name))
		}
	}
	if containsProvider(c.Providers.Order, "finnhub") && c.Providers.FinnhubAPIKey == "" {
		errs = append(errs, "providers: finnhub_api_key is required when finnhub is in the order list")
	}

	// Postgres
	if c.Postgres.Enabled {
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			if c.Postgres.Host == "" {
				errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
			}
			if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
				errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
			}
			if c.Postgres.Database == "" {
				errs = append(errs, "postgres: database must not be empty")
			}
		}
		if c.Postgres.PoolMaxConns < 1 {
			errs = append(errs, "postgres: pool_max_conns must be >= 1")
		}
		if c.Postgres.PoolMinConns < 0 {
			errs = append(errs, "postgres: pool_min_conns must be >= 0")
		}
		if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
		}
	}

	// Redis
	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}
	if c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	// S3
	if c.S3.Enabled {
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty")
		}
		if c.S3.Region == "" {
			errs = append(errs, "s3: region must not be empty")
		}
	}

	// Scan
	if c.Scan.Concurrency < 1 {
		errs = append(errs, "scan: concurrency must be >= 1")
	}
	if c.Scan.AlertThreshold < 0 || c.Scan.AlertThreshold > 100 {
		errs = append(errs, fmt.Sprintf("scan: alert_threshold must be 0-100, got %d", c.Scan.AlertThreshold))
	}
	if c.Scan.Interval.Duration < 0 {
		errs = append(errs, "scan: interval must not be negative")
	}

	// Backtest
	if c.Backtest.MaxSlowPeriod < 3 {
		errs = append(errs, fmt.Sprintf("backtest: max_slow_period must be >= 3, got %d", c.Backtest.MaxSlowPeriod))
	}
	if c.Backtest.MaxFeeBps < 0 {
		errs = append(errs, "backtest: max_fee_bps must be >= 0")
	}

	// Feed
	if c.Feed.Enabled && c.Feed.Interval.Duration < time.Second {
		errs = append(errs, "feed: interval must be at least 1s when the poller is enabled")
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
		if c.Server.RateLimit < 0 {
			errs = append(errs, "server: rate_limit must be >= 0")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func containsProvider(order []string, name string) bool {
	for _, p := range order {
		if strings.EqualFold(p, name) {
			return true
		}
	}
	return false
}
