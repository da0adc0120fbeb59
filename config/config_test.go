package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func setCredentials(t *testing.T) {
	t.Helper()
	t.Setenv("APCA_API_KEY_ID", "test-key")
	t.Setenv("APCA_API_SECRET_KEY", "test-secret")
}

func TestLoad_DefaultsApplied(t *testing.T) {
	setCredentials(t)
	path := writeConfig(t, "trading: {}\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.02, cfg.Trading.RiskPerTrade)
	assert.Equal(t, 0.35, cfg.Trading.StopLossPct)
	assert.Equal(t, 30*time.Minute, cfg.TradeInterval())
	assert.Equal(t, 30*time.Minute, cfg.RiskInterval())
	assert.Equal(t, 10, cfg.Universe.TopN)
	assert.Equal(t, 3.0, cfg.Universe.MinPrice)
	assert.Equal(t, 50.0, cfg.Universe.MaxPrice)
	assert.Equal(t, int64(1_000_000), cfg.Universe.MinVolume)
	assert.Equal(t, []string{"NYSE", "NASDAQ"}, cfg.Universe.Exchanges)
	assert.Equal(t, 3, cfg.Options.MinDaysToExpiry)
	assert.Equal(t, 0.50, cfg.Options.MinPrice)
	assert.Equal(t, int64(50), cfg.Options.MinVolume)
	assert.Equal(t, "09:45", cfg.Schedule.UniverseRefresh)
	assert.Equal(t, "20:00", cfg.Schedule.DailySummary)
	assert.Equal(t, "https://paper-api.alpaca.markets", cfg.API.TradingBase)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	setCredentials(t)
	path := writeConfig(t, `
trading:
  risk_per_trade: 0.05
  trade_interval_minutes: 15
universe:
  top_n: 5
  exchanges: [NYSE]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.05, cfg.Trading.RiskPerTrade)
	assert.Equal(t, 15*time.Minute, cfg.TradeInterval())
	assert.Equal(t, 5, cfg.Universe.TopN)
	assert.Equal(t, []string{"NYSE"}, cfg.Universe.Exchanges)
	// lo no tocado conserva el default
	assert.Equal(t, 0.35, cfg.Trading.StopLossPct)
}

func TestLoad_EnvOverrides(t *testing.T) {
	setCredentials(t)
	t.Setenv("APCA_API_BASE_URL", "http://localhost:9999")
	t.Setenv("DISCORD_WEBHOOK_URL", "http://localhost:9998/hook")
	t.Setenv("LOG_LEVEL", "debug")
	path := writeConfig(t, "trading: {}\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "test-key", cfg.API.KeyID)
	assert.Equal(t, "test-secret", cfg.API.SecretKey)
	assert.Equal(t, "http://localhost:9999", cfg.API.TradingBase)
	assert.Equal(t, "http://localhost:9998/hook", cfg.Notify.WebhookURL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_MissingCredentials(t *testing.T) {
	t.Setenv("APCA_API_KEY_ID", "")
	t.Setenv("APCA_API_SECRET_KEY", "")
	path := writeConfig(t, "trading: {}\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APCA_API_KEY_ID")
}

func TestLoad_InvalidScheduleTime(t *testing.T) {
	setCredentials(t)
	path := writeConfig(t, "schedule:\n  universe_refresh: \"25:99\"\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "25:99")
}

func TestLoad_MissingFile(t *testing.T) {
	setCredentials(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
