package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies STOCKLENS_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known STOCKLENS_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Providers ──
	setStringSlice(&cfg.Providers.Order, "STOCKLENS_PROVIDERS_ORDER")
	setStr(&cfg.Providers.FinnhubAPIKey, "STOCKLENS_FINNHUB_API_KEY")
	setStr(&cfg.Providers.FinnhubBaseURL, "STOCKLENS_FINNHUB_BASE_URL")
	setStr(&cfg.Providers.StooqBaseURL, "STOCKLENS_STOOQ_BASE_URL")

	// ── Postgres ──
	setBool(&cfg.Postgres.Enabled, "STOCKLENS_POSTGRES_ENABLED")
	setStr(&cfg.Postgres.DSN, "STOCKLENS_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "STOCKLENS_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "STOCKLENS_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "STOCKLENS_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "STOCKLENS_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "STOCKLENS_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "STOCKLENS_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "STOCKLENS_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "STOCKLENS_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "STOCKLENS_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "STOCKLENS_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "STOCKLENS_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "STOCKLENS_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "STOCKLENS_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "STOCKLENS_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "STOCKLENS_REDIS_TLS_ENABLED")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "STOCKLENS_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "STOCKLENS_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "STOCKLENS_S3_REGION")
	setStr(&cfg.S3.Bucket, "STOCKLENS_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "STOCKLENS_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "STOCKLENS_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "STOCKLENS_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "STOCKLENS_S3_FORCE_PATH_STYLE")

	// ── Scan ──
	setStringSlice(&cfg.Scan.Symbols, "STOCKLENS_SCAN_SYMBOLS")
	setInt(&cfg.Scan.Concurrency, "STOCKLENS_SCAN_CONCURRENCY")
	setInt(&cfg.Scan.AlertThreshold, "STOCKLENS_SCAN_ALERT_THRESHOLD")
	setDuration(&cfg.Scan.Interval, "STOCKLENS_SCAN_INTERVAL")

	// Backtest
	setInt(&cfg.Backtest.MaxSlowPeriod, "STOCKLENS_BACKTEST_MAX_SLOW_PERIOD")
	setFloat(&cfg.Backtest.MaxFeeBps, "STOCKLENS_BACKTEST_MAX_FEE_BPS")

	// ── Feed ──
	setBool(&cfg.Feed.Enabled, "STOCKLENS_FEED_ENABLED")
	setDuration(&cfg.Feed.Interval, "STOCKLENS_FEED_INTERVAL")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "STOCKLENS_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "STOCKLENS_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "STOCKLENS_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "STOCKLENS_SERVER_API_KEY")
	setInt(&cfg.Server.RateLimit, "STOCKLENS_SERVER_RATE_LIMIT")
	setDuration(&cfg.Server.RateWindow, "STOCKLENS_SERVER_RATE_WINDOW")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "STOCKLENS_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "STOCKLENS_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "STOCKLENS_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "STOCKLENS_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "STOCKLENS_MODE")
	setStr(&cfg.LogLevel, "STOCKLENS_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
