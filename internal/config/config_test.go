package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadMode(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "turbo"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestValidateFinnhubNeedsKey(t *testing.T) {
	cfg := Defaults()
	cfg.Providers.Order = []string{"finnhub"}
	cfg.Providers.FinnhubAPIKey = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "finnhub_api_key")
}

func TestValidatePostgresOnlyWhenEnabled(t *testing.T) {
	cfg := Defaults()
	cfg.Postgres.Enabled = false
	cfg.Postgres.Host = ""
	assert.NoError(t, cfg.Validate(), "disabled postgres should not be validated")

	cfg.Postgres.Enabled = true
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: host")
}

func TestValidateCollectsMultipleErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "bogus"
	cfg.LogLevel = "loud"
	cfg.Redis.Addr = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
	assert.Contains(t, err.Error(), "unknown log_level")
	assert.Contains(t, err.Error(), "redis: addr")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("STOCKLENS_REDIS_ADDR", "redis.internal:6380")
	t.Setenv("STOCKLENS_SCAN_SYMBOLS", "IBM, ORCL")
	t.Setenv("STOCKLENS_FEED_INTERVAL", "30s")
	t.Setenv("STOCKLENS_SERVER_PORT", "9100")

	cfg := Defaults()
	applyEnvOverrides(&cfg)

	assert.Equal(t, "redis.internal:6380", cfg.Redis.Addr)
	assert.Equal(t, []string{"IBM", "ORCL"}, cfg.Scan.Symbols)
	assert.Equal(t, 30*time.Second, cfg.Feed.Interval.Duration)
	assert.Equal(t, 9100, cfg.Server.Port)
}

func TestRedactedConfigMasksSecrets(t *testing.T) {
	cfg := Defaults()
	cfg.Providers.FinnhubAPIKey = "super-secret"
	cfg.Postgres.Password = "hunter2"
	cfg.S3.SecretKey = "aws-secret"
	cfg.Server.APIKey = "api-key"

	red := RedactedConfig(&cfg)

	assert.Equal(t, "***", red.Providers.FinnhubAPIKey)
	assert.Equal(t, "***", red.Postgres.Password)
	assert.Equal(t, "***", red.S3.SecretKey)
	assert.Equal(t, "***", red.Server.APIKey)

	// Originals untouched.
	assert.Equal(t, "super-secret", cfg.Providers.FinnhubAPIKey)
}

func TestValidateBacktestLimits(t *testing.T) {
	cfg := Defaults()
	cfg.Backtest.MaxSlowPeriod = 2

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_slow_period")

	cfg = Defaults()
	cfg.Backtest.MaxFeeBps = -1
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_fee_bps")
}
