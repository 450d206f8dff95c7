package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	CORS      CORSConfig
	Budget    BudgetConfig
	Extractor GatewayConfig
	Scorer    GatewayConfig
	Upload    UploadConfig
	S3        S3Config
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// BudgetConfig holds the daily AI spend cap shared by both gateway stages.
type BudgetConfig struct {
	DailyLimitUSD float64 `mapstructure:"daily_limit_usd"`
}

// GatewayConfig holds settings for a single AI gateway (extraction or
// scoring), including the per-million-token pricing used for cost accounting.
type GatewayConfig struct {
	Provider         string  `mapstructure:"provider"`
	APIKey           string  `mapstructure:"api_key"`
	DefaultModel     string  `mapstructure:"default_model"`
	TimeoutSecs      int     `mapstructure:"timeout_secs"`
	InputPerMillion  float64 `mapstructure:"input_per_million"`
	OutputPerMillion float64 `mapstructure:"output_per_million"`
}

// UploadConfig holds document upload limits.
type UploadConfig struct {
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
}

// S3Config holds AWS S3 settings for optional document archival. Archival is
// enabled when a bucket is configured.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// ArchiveEnabled reports whether analyzed documents should be archived.
func (s *S3Config) ArchiveEnabled() bool {
	return s.Bucket != ""
}

// Load reads configuration from environment variables with the BILLSCAN_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BILLSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "development")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173,http://127.0.0.1:5173")

	// Budget defaults
	v.SetDefault("budget.daily_limit_usd", 5.0)

	// Extractor defaults (the expensive, vision-capable model)
	v.SetDefault("extractor.provider", "claude")
	v.SetDefault("extractor.api_key", "")
	v.SetDefault("extractor.default_model", "claude-sonnet-4-20250514")
	v.SetDefault("extractor.timeout_secs", 120)
	v.SetDefault("extractor.input_per_million", 3.0)
	v.SetDefault("extractor.output_per_million", 15.0)

	// Scorer defaults (deliberately a cheaper model than extraction)
	v.SetDefault("scorer.provider", "gemini")
	v.SetDefault("scorer.api_key", "")
	v.SetDefault("scorer.default_model", "gemini-2.0-flash")
	v.SetDefault("scorer.timeout_secs", 60)
	v.SetDefault("scorer.input_per_million", 0.10)
	v.SetDefault("scorer.output_per_million", 0.40)

	// Upload defaults
	v.SetDefault("upload.max_file_size_mb", 20)

	// S3 defaults (archival disabled unless a bucket is set)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                  "BILLSCAN_SERVER_PORT",
		"server.read_timeout":          "BILLSCAN_SERVER_READ_TIMEOUT",
		"server.write_timeout":         "BILLSCAN_SERVER_WRITE_TIMEOUT",
		"server.environment":           "BILLSCAN_SERVER_ENVIRONMENT",
		"log.level":                    "BILLSCAN_LOG_LEVEL",
		"log.format":                   "BILLSCAN_LOG_FORMAT",
		"cors.allowed_origins":         "BILLSCAN_CORS_ALLOWED_ORIGINS",
		"budget.daily_limit_usd":       "BILLSCAN_BUDGET_DAILY_LIMIT_USD",
		"extractor.provider":           "BILLSCAN_EXTRACTOR_PROVIDER",
		"extractor.api_key":            "BILLSCAN_EXTRACTOR_API_KEY",
		"extractor.default_model":      "BILLSCAN_EXTRACTOR_DEFAULT_MODEL",
		"extractor.timeout_secs":       "BILLSCAN_EXTRACTOR_TIMEOUT_SECS",
		"extractor.input_per_million":  "BILLSCAN_EXTRACTOR_INPUT_PER_MILLION",
		"extractor.output_per_million": "BILLSCAN_EXTRACTOR_OUTPUT_PER_MILLION",
		"scorer.provider":              "BILLSCAN_SCORER_PROVIDER",
		"scorer.api_key":               "BILLSCAN_SCORER_API_KEY",
		"scorer.default_model":         "BILLSCAN_SCORER_DEFAULT_MODEL",
		"scorer.timeout_secs":          "BILLSCAN_SCORER_TIMEOUT_SECS",
		"scorer.input_per_million":     "BILLSCAN_SCORER_INPUT_PER_MILLION",
		"scorer.output_per_million":    "BILLSCAN_SCORER_OUTPUT_PER_MILLION",
		"upload.max_file_size_mb":      "BILLSCAN_UPLOAD_MAX_FILE_SIZE_MB",
		"s3.region":                    "BILLSCAN_S3_REGION",
		"s3.bucket":                    "BILLSCAN_S3_BUCKET",
		"s3.endpoint":                  "BILLSCAN_S3_ENDPOINT",
		"s3.access_key":                "BILLSCAN_S3_ACCESS_KEY",
		"s3.secret_key":                "BILLSCAN_S3_SECRET_KEY",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if BILLSCAN_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("BILLSCAN_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Budget = BudgetConfig{
		DailyLimitUSD: v.GetFloat64("budget.daily_limit_usd"),
	}
	cfg.Extractor = GatewayConfig{
		Provider:         v.GetString("extractor.provider"),
		APIKey:           v.GetString("extractor.api_key"),
		DefaultModel:     v.GetString("extractor.default_model"),
		TimeoutSecs:      v.GetInt("extractor.timeout_secs"),
		InputPerMillion:  v.GetFloat64("extractor.input_per_million"),
		OutputPerMillion: v.GetFloat64("extractor.output_per_million"),
	}
	cfg.Scorer = GatewayConfig{
		Provider:         v.GetString("scorer.provider"),
		APIKey:           v.GetString("scorer.api_key"),
		DefaultModel:     v.GetString("scorer.default_model"),
		TimeoutSecs:      v.GetInt("scorer.timeout_secs"),
		InputPerMillion:  v.GetFloat64("scorer.input_per_million"),
		OutputPerMillion: v.GetFloat64("scorer.output_per_million"),
	}
	cfg.Upload = UploadConfig{
		MaxFileSizeMB: v.GetInt64("upload.max_file_size_mb"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}

	return cfg, nil
}
