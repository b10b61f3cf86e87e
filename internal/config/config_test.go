package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docanalyzer/internal/config"
)

func TestAnalyzerConfig_PrimaryConfig_LegacyFallback(t *testing.T) {
	cfg := config.AnalyzerConfig{
		Provider:     "openai",
		APIKey:       "sk-legacy",
		DefaultModel: "gpt-4o-mini",
		MaxRetries:   3,
		TimeoutSecs:  30,
	}

	primary := cfg.PrimaryConfig()

	assert.Equal(t, "openai", primary.Provider)
	assert.Equal(t, "sk-legacy", primary.APIKey)
	assert.Equal(t, "gpt-4o-mini", primary.DefaultModel)
	assert.Equal(t, 3, primary.MaxRetries)
	assert.Equal(t, 30, primary.TimeoutSecs)
}

func TestAnalyzerConfig_PrimaryConfig_ExplicitPrimary(t *testing.T) {
	cfg := config.AnalyzerConfig{
		Provider: "legacy-should-be-ignored",
		Primary: config.AnalyzerProviderConfig{
			Provider:     "gemini",
			APIKey:       "gk-primary",
			DefaultModel: "gemini-2.0-flash",
		},
	}

	primary := cfg.PrimaryConfig()

	assert.Equal(t, "gemini", primary.Provider)
	assert.Equal(t, "gk-primary", primary.APIKey)
	assert.Equal(t, "gemini-2.0-flash", primary.DefaultModel)
}

func TestAnalyzerConfig_SecondaryAndTertiary(t *testing.T) {
	cfg := config.AnalyzerConfig{Provider: "openai", APIKey: "sk"}
	assert.Nil(t, cfg.SecondaryConfig())
	assert.Nil(t, cfg.TertiaryConfig())

	cfg.Secondary = config.AnalyzerProviderConfig{Provider: "gemini", APIKey: "gk"}
	cfg.Tertiary = config.AnalyzerProviderConfig{Provider: "claude", APIKey: "ck"}

	require.NotNil(t, cfg.SecondaryConfig())
	require.NotNil(t, cfg.TertiaryConfig())
	assert.Equal(t, "gemini", cfg.SecondaryConfig().Provider)
	assert.Equal(t, "claude", cfg.TertiaryConfig().Provider)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "fallback", cfg.Analyzer.Mode)
	assert.Equal(t, "usd", cfg.Stripe.Currency)
	assert.False(t, cfg.Stripe.Enabled())
	assert.Equal(t, int64(1999), cfg.Pricing.Prices["summary"])
	assert.Equal(t, int64(4999), cfg.Pricing.Prices["comprehensive"])
	assert.InDelta(t, 1.5, cfg.Pricing.UrgentMultiplier, 0.0001)
	assert.Equal(t, 5*time.Minute, cfg.Analysis.Timeout)
	assert.Equal(t, 24*time.Hour, cfg.Analysis.CacheTTL)
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DOCANALYZER_ANALYZER_PRIMARY_PROVIDER", "claude")
	t.Setenv("DOCANALYZER_ANALYZER_PRIMARY_API_KEY", "ck-env")
	t.Setenv("DOCANALYZER_PRICING_PRICES_SUMMARY", "999")
	t.Setenv("DOCANALYZER_STRIPE_SECRET_KEY", "sk_test_123")
	t.Setenv("DOCANALYZER_STRIPE_CURRENCY", "EUR")
	t.Setenv("DOCANALYZER_CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := config.Load()
	require.NoError(t, err)

	primary := cfg.Analyzer.PrimaryConfig()
	assert.Equal(t, "claude", primary.Provider)
	assert.Equal(t, "ck-env", primary.APIKey)
	assert.Equal(t, int64(999), cfg.Pricing.Prices["summary"])
	assert.True(t, cfg.Stripe.Enabled())
	assert.Equal(t, "eur", cfg.Stripe.Currency)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_PortEnvOverride(t *testing.T) {
	t.Setenv("PORT", "9090")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Port)
}

func TestDBConfig_DSN(t *testing.T) {
	db := config.DBConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/n?sslmode=disable", db.DSN())
}
