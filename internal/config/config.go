package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	DB       DBConfig
	JWT      JWTConfig
	S3       S3Config
	Log      LogConfig
	Analyzer AnalyzerConfig
	Analysis AnalysisConfig
	CORS     CORSConfig
	Queue    QueueConfig
	Email    EmailConfig
	Stripe   StripeConfig
	Redis    RedisConfig
	Pricing  PricingConfig
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	FrontendURL string `mapstructure:"frontend_url"`
}

// QueueConfig holds analysis queue worker settings.
type QueueConfig struct {
	PollIntervalSecs int `mapstructure:"poll_interval_secs"`
	MaxRetries       int `mapstructure:"max_retries"`
	Concurrency      int `mapstructure:"concurrency"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// StripeConfig holds payment processor credentials.
type StripeConfig struct {
	SecretKey     string `mapstructure:"secret_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
	Currency      string `mapstructure:"currency"`
}

// Enabled reports whether payment intents can be created.
func (s *StripeConfig) Enabled() bool {
	return s.SecretKey != ""
}

// RedisConfig holds result cache settings. An empty Addr selects the in-process cache.
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// AnalysisConfig holds settings for the per-document analysis pipeline.
type AnalysisConfig struct {
	MaxTextChars int           `mapstructure:"max_text_chars"`
	Timeout      time.Duration `mapstructure:"timeout"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
}

// PricingConfig holds order prices in minor currency units.
type PricingConfig struct {
	Prices           map[string]int64 `mapstructure:"prices"`
	UrgentMultiplier float64          `mapstructure:"urgent_multiplier"`
}

// AnalyzerProviderConfig holds settings for a single LLM provider.
type AnalyzerProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// AnalyzerConfig holds LLM analyzer settings with multi-provider support.
type AnalyzerConfig struct {
	// Mode is one of "single", "fallback" or "dual".
	Mode string `mapstructure:"mode"`

	// Legacy flat fields
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`

	Primary   AnalyzerProviderConfig `mapstructure:"primary"`
	Secondary AnalyzerProviderConfig `mapstructure:"secondary"`
	Tertiary  AnalyzerProviderConfig `mapstructure:"tertiary"`
}

// PrimaryConfig returns the primary provider config, falling back to legacy flat fields.
func (a *AnalyzerConfig) PrimaryConfig() *AnalyzerProviderConfig {
	if a.Primary.Provider != "" {
		return &a.Primary
	}
	return &AnalyzerProviderConfig{
		Provider:     a.Provider,
		APIKey:       a.APIKey,
		DefaultModel: a.DefaultModel,
		MaxRetries:   a.MaxRetries,
		TimeoutSecs:  a.TimeoutSecs,
	}
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (a *AnalyzerConfig) SecondaryConfig() *AnalyzerProviderConfig {
	if a.Secondary.Provider != "" {
		return &a.Secondary
	}
	return nil
}

// TertiaryConfig returns the tertiary provider config, or nil if not configured.
func (a *AnalyzerConfig) TertiaryConfig() *AnalyzerProviderConfig {
	if a.Tertiary.Provider != "" {
		return &a.Tertiary
	}
	return nil
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	Environment    string        `mapstructure:"environment"`
	SwaggerEnabled bool          `mapstructure:"swagger_enabled"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpiry  time.Duration `mapstructure:"access_expiry"`
	RefreshTokenExpiry time.Duration `mapstructure:"refresh_expiry"`
	Issuer             string        `mapstructure:"issuer"`
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// analysisTypes lists the keys of the pricing table.
var analysisTypes = []string{
	"sentiment", "entities", "summary", "classification", "translation", "keywords", "comprehensive",
}

// Load reads configuration from environment variables with the DOCANALYZER_ prefix.
// A .env file in the working directory is loaded first when present; variables
// already set in the environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("DOCANALYZER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.swagger_enabled", true)

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "docanalyzer")
	v.SetDefault("db.password", "docanalyzer_secret")
	v.SetDefault("db.name", "docanalyzer_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "15m")
	v.SetDefault("jwt.refresh_expiry", "168h")
	v.SetDefault("jwt.issuer", "docanalyzer")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "docanalyzer-uploads")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 50)
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Queue defaults
	v.SetDefault("queue.poll_interval_secs", 10)
	v.SetDefault("queue.max_retries", 5)
	v.SetDefault("queue.concurrency", 5)

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "eu-central-1")
	v.SetDefault("email.from_address", "noreply@docanalyzer.app")
	v.SetDefault("email.from_name", "DocAnalyzer")
	v.SetDefault("email.frontend_url", "http://localhost:3000")

	// Stripe defaults
	v.SetDefault("stripe.secret_key", "")
	v.SetDefault("stripe.webhook_secret", "")
	v.SetDefault("stripe.currency", "usd")

	// Redis defaults
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "docanalyzer:")

	// Analysis pipeline defaults
	v.SetDefault("analysis.max_text_chars", 100000)
	v.SetDefault("analysis.timeout", "5m")
	v.SetDefault("analysis.cache_ttl", "24h")

	// Pricing defaults (cents)
	v.SetDefault("pricing.prices.summary", 1999)
	v.SetDefault("pricing.prices.sentiment", 1999)
	v.SetDefault("pricing.prices.keywords", 1999)
	v.SetDefault("pricing.prices.entities", 2999)
	v.SetDefault("pricing.prices.classification", 2999)
	v.SetDefault("pricing.prices.translation", 4999)
	v.SetDefault("pricing.prices.comprehensive", 4999)
	v.SetDefault("pricing.urgent_multiplier", 1.5)

	// Analyzer defaults (legacy flat)
	v.SetDefault("analyzer.mode", "fallback")
	v.SetDefault("analyzer.provider", "openai")
	v.SetDefault("analyzer.api_key", "")
	v.SetDefault("analyzer.default_model", "")
	v.SetDefault("analyzer.max_retries", 2)
	v.SetDefault("analyzer.timeout_secs", 120)

	for _, slot := range []string{"primary", "secondary", "tertiary"} {
		v.SetDefault("analyzer."+slot+".provider", "")
		v.SetDefault("analyzer."+slot+".api_key", "")
		v.SetDefault("analyzer."+slot+".default_model", "")
		v.SetDefault("analyzer."+slot+".max_retries", 2)
		v.SetDefault("analyzer."+slot+".timeout_secs", 120)
	}

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":              "DOCANALYZER_SERVER_PORT",
		"server.read_timeout":      "DOCANALYZER_SERVER_READ_TIMEOUT",
		"server.write_timeout":     "DOCANALYZER_SERVER_WRITE_TIMEOUT",
		"server.environment":       "DOCANALYZER_SERVER_ENVIRONMENT",
		"server.swagger_enabled":   "DOCANALYZER_SERVER_SWAGGER_ENABLED",
		"db.host":                  "DOCANALYZER_DB_HOST",
		"db.port":                  "DOCANALYZER_DB_PORT",
		"db.user":                  "DOCANALYZER_DB_USER",
		"db.password":              "DOCANALYZER_DB_PASSWORD",
		"db.name":                  "DOCANALYZER_DB_NAME",
		"db.sslmode":               "DOCANALYZER_DB_SSLMODE",
		"db.max_open":              "DOCANALYZER_DB_MAX_OPEN",
		"db.max_idle":              "DOCANALYZER_DB_MAX_IDLE",
		"jwt.secret":               "DOCANALYZER_JWT_SECRET",
		"jwt.access_expiry":        "DOCANALYZER_JWT_ACCESS_EXPIRY",
		"jwt.refresh_expiry":       "DOCANALYZER_JWT_REFRESH_EXPIRY",
		"jwt.issuer":               "DOCANALYZER_JWT_ISSUER",
		"s3.region":                "DOCANALYZER_S3_REGION",
		"s3.bucket":                "DOCANALYZER_S3_BUCKET",
		"s3.endpoint":              "DOCANALYZER_S3_ENDPOINT",
		"s3.access_key":            "DOCANALYZER_S3_ACCESS_KEY",
		"s3.secret_key":            "DOCANALYZER_S3_SECRET_KEY",
		"s3.max_file_size_mb":      "DOCANALYZER_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":        "DOCANALYZER_S3_PRESIGN_EXPIRY",
		"log.level":                "DOCANALYZER_LOG_LEVEL",
		"log.format":               "DOCANALYZER_LOG_FORMAT",
		"cors.allowed_origins":     "DOCANALYZER_CORS_ALLOWED_ORIGINS",
		"queue.poll_interval_secs": "DOCANALYZER_QUEUE_POLL_INTERVAL_SECS",
		"queue.max_retries":        "DOCANALYZER_QUEUE_MAX_RETRIES",
		"queue.concurrency":        "DOCANALYZER_QUEUE_CONCURRENCY",
		"email.provider":           "DOCANALYZER_EMAIL_PROVIDER",
		"email.region":             "DOCANALYZER_EMAIL_REGION",
		"email.from_address":       "DOCANALYZER_EMAIL_FROM_ADDRESS",
		"email.from_name":          "DOCANALYZER_EMAIL_FROM_NAME",
		"email.frontend_url":       "DOCANALYZER_EMAIL_FRONTEND_URL",
		"stripe.secret_key":        "DOCANALYZER_STRIPE_SECRET_KEY",
		"stripe.webhook_secret":    "DOCANALYZER_STRIPE_WEBHOOK_SECRET",
		"stripe.currency":          "DOCANALYZER_STRIPE_CURRENCY",
		"redis.addr":               "DOCANALYZER_REDIS_ADDR",
		"redis.password":           "DOCANALYZER_REDIS_PASSWORD",
		"redis.db":                 "DOCANALYZER_REDIS_DB",
		"redis.key_prefix":         "DOCANALYZER_REDIS_KEY_PREFIX",
		"analysis.max_text_chars":  "DOCANALYZER_ANALYSIS_MAX_TEXT_CHARS",
		"analysis.timeout":         "DOCANALYZER_ANALYSIS_TIMEOUT",
		"analysis.cache_ttl":       "DOCANALYZER_ANALYSIS_CACHE_TTL",
		"analyzer.mode":            "DOCANALYZER_ANALYZER_MODE",
		"analyzer.provider":        "DOCANALYZER_ANALYZER_PROVIDER",
		"analyzer.api_key":         "DOCANALYZER_ANALYZER_API_KEY",
		"analyzer.default_model":   "DOCANALYZER_ANALYZER_DEFAULT_MODEL",
		"analyzer.max_retries":     "DOCANALYZER_ANALYZER_MAX_RETRIES",
		"analyzer.timeout_secs":    "DOCANALYZER_ANALYZER_TIMEOUT_SECS",
	}
	for _, slot := range []string{"primary", "secondary", "tertiary"} {
		for _, field := range []string{"provider", "api_key", "default_model", "max_retries", "timeout_secs"} {
			key := "analyzer." + slot + "." + field
			envBindings[key] = "DOCANALYZER_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		}
	}
	envBindings["pricing.urgent_multiplier"] = "DOCANALYZER_PRICING_URGENT_MULTIPLIER"
	for _, t := range analysisTypes {
		key := "pricing.prices." + t
		envBindings[key] = "DOCANALYZER_PRICING_PRICES_" + strings.ToUpper(t)
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if DOCANALYZER_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("DOCANALYZER_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:           serverPort,
		ReadTimeout:    v.GetDuration("server.read_timeout"),
		WriteTimeout:   v.GetDuration("server.write_timeout"),
		Environment:    v.GetString("server.environment"),
		SwaggerEnabled: v.GetBool("server.swagger_enabled"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret:             v.GetString("jwt.secret"),
		AccessTokenExpiry:  v.GetDuration("jwt.access_expiry"),
		RefreshTokenExpiry: v.GetDuration("jwt.refresh_expiry"),
		Issuer:             v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitCSV(v.GetString("cors.allowed_origins")),
	}

	cfg.Analyzer = AnalyzerConfig{
		Mode:         v.GetString("analyzer.mode"),
		Provider:     v.GetString("analyzer.provider"),
		APIKey:       v.GetString("analyzer.api_key"),
		DefaultModel: v.GetString("analyzer.default_model"),
		MaxRetries:   v.GetInt("analyzer.max_retries"),
		TimeoutSecs:  v.GetInt("analyzer.timeout_secs"),
		Primary:      providerConfig(v, "primary"),
		Secondary:    providerConfig(v, "secondary"),
		Tertiary:     providerConfig(v, "tertiary"),
	}
	cfg.Analysis = AnalysisConfig{
		MaxTextChars: v.GetInt("analysis.max_text_chars"),
		Timeout:      v.GetDuration("analysis.timeout"),
		CacheTTL:     v.GetDuration("analysis.cache_ttl"),
	}

	cfg.Queue = QueueConfig{
		PollIntervalSecs: v.GetInt("queue.poll_interval_secs"),
		MaxRetries:       v.GetInt("queue.max_retries"),
		Concurrency:      v.GetInt("queue.concurrency"),
	}

	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		FrontendURL: v.GetString("email.frontend_url"),
	}
	cfg.Stripe = StripeConfig{
		SecretKey:     v.GetString("stripe.secret_key"),
		WebhookSecret: v.GetString("stripe.webhook_secret"),
		Currency:      strings.ToLower(v.GetString("stripe.currency")),
	}
	cfg.Redis = RedisConfig{
		Addr:      v.GetString("redis.addr"),
		Password:  v.GetString("redis.password"),
		DB:        v.GetInt("redis.db"),
		KeyPrefix: v.GetString("redis.key_prefix"),
	}

	prices := make(map[string]int64, len(analysisTypes))
	for _, t := range analysisTypes {
		prices[t] = v.GetInt64("pricing.prices." + t)
	}
	cfg.Pricing = PricingConfig{
		Prices:           prices,
		UrgentMultiplier: v.GetFloat64("pricing.urgent_multiplier"),
	}

	return cfg, nil
}

func providerConfig(v *viper.Viper, slot string) AnalyzerProviderConfig {
	prefix := "analyzer." + slot + "."
	return AnalyzerProviderConfig{
		Provider:     v.GetString(prefix + "provider"),
		APIKey:       v.GetString(prefix + "api_key"),
		DefaultModel: v.GetString(prefix + "default_model"),
		MaxRetries:   v.GetInt(prefix + "max_retries"),
		TimeoutSecs:  v.GetInt(prefix + "timeout_secs"),
	}
}

// splitCSV parses a comma-separated list, dropping empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
