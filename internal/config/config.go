package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Auth      AuthConfig
	S3        S3Config
	Log       LogConfig
	Generator GeneratorConfig
	Infer     InferConfig
	Fill      FillConfig
	CORS      CORSConfig
	Queue     QueueConfig
	Email     EmailConfig
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	FrontendURL string `mapstructure:"frontend_url"`
}

// QueueConfig holds fill queue worker settings.
type QueueConfig struct {
	PollIntervalSecs int `mapstructure:"poll_interval_secs"`
	MaxRetries       int `mapstructure:"max_retries"`
	Concurrency      int `mapstructure:"concurrency"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// GeneratorProviderConfig holds settings for a single LLM text provider.
type GeneratorProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// GeneratorConfig holds LLM text generator settings with multi-provider support.
type GeneratorConfig struct {
	// Flat fields configure a single provider without the primary/secondary nesting.
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`

	// Multi-provider fields
	Primary   GeneratorProviderConfig `mapstructure:"primary"`
	Secondary GeneratorProviderConfig `mapstructure:"secondary"`
	Tertiary  GeneratorProviderConfig `mapstructure:"tertiary"`
}

// PrimaryConfig returns the primary provider config, falling back to the flat fields.
func (g *GeneratorConfig) PrimaryConfig() *GeneratorProviderConfig {
	if g.Primary.Provider != "" {
		return &g.Primary
	}
	return &GeneratorProviderConfig{
		Provider:     g.Provider,
		APIKey:       g.APIKey,
		DefaultModel: g.DefaultModel,
		TimeoutSecs:  g.TimeoutSecs,
	}
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (g *GeneratorConfig) SecondaryConfig() *GeneratorProviderConfig {
	if g.Secondary.Provider != "" {
		return &g.Secondary
	}
	return nil
}

// TertiaryConfig returns the tertiary provider config, or nil if not configured.
func (g *GeneratorConfig) TertiaryConfig() *GeneratorProviderConfig {
	if g.Tertiary.Provider != "" {
		return &g.Tertiary
	}
	return nil
}

// InferConfig holds structure inference tuning knobs and the vocabulary
// word lists the heuristics match against. The list fields are read as
// comma-separated strings from the environment.
type InferConfig struct {
	InstructionalMinRunes int  `mapstructure:"instructional_min_runes"`
	ShortLabelMaxRunes    int  `mapstructure:"short_label_max_runes"`
	ContextLookup         bool `mapstructure:"context_lookup"`
	PhaseRowCap           int  `mapstructure:"phase_row_cap"`

	MatrixHeaders  []string `mapstructure:"matrix_headers"`
	PhaseTokens    []string `mapstructure:"phase_tokens"`
	DefaultPhase   string   `mapstructure:"default_phase"`
	SectionHeaders []string `mapstructure:"section_headers"`
	Stoplist       []string `mapstructure:"stoplist"`
	Boilerplate    []string `mapstructure:"boilerplate"`
}

// FillConfig holds generation orchestration settings.
type FillConfig struct {
	BatchSize  int `mapstructure:"batch_size"`
	MaxRetries int `mapstructure:"max_retries"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
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

// AuthConfig holds API key and download token settings.
type AuthConfig struct {
	APIKeyHash  string        `mapstructure:"api_key_hash"`
	TokenSecret string        `mapstructure:"token_secret"`
	TokenTTL    time.Duration `mapstructure:"token_ttl"`
	Issuer      string        `mapstructure:"issuer"`
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

// Load reads configuration from environment variables with the PLANFILL_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PLANFILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "300s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "planfill")
	v.SetDefault("db.password", "planfill_secret")
	v.SetDefault("db.name", "planfill_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// Auth defaults
	v.SetDefault("auth.api_key_hash", "")
	v.SetDefault("auth.token_secret", "change-me-in-production")
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("auth.issuer", "planfill")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "planfill-runs")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 20)
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Queue defaults
	v.SetDefault("queue.poll_interval_secs", 10)
	v.SetDefault("queue.max_retries", 3)
	v.SetDefault("queue.concurrency", 2)

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "noreply@planfill.local")
	v.SetDefault("email.from_name", "Planfill")
	v.SetDefault("email.frontend_url", "http://localhost:3000")

	// Inference defaults
	v.SetDefault("infer.instructional_min_runes", 60)
	v.SetDefault("infer.short_label_max_runes", 10)
	v.SetDefault("infer.context_lookup", true)
	v.SetDefault("infer.phase_row_cap", 0)
	v.SetDefault("infer.matrix_headers", "teaching content,instructor activity,teacher activity,student activity,design rationale,design intent")
	v.SetDefault("infer.phase_tokens", "before class,during class,after class,reinforcement")
	v.SetDefault("infer.default_phase", "process")
	v.SetDefault("infer.section_headers", "basic information,learner analysis,teaching objectives,objectives,teaching resources,resources,teaching reflection,reflection")
	v.SetDefault("infer.stoplist", "content,notes,remarks,other")
	v.SetDefault("infer.boilerplate", "fill in,please complete,as appropriate,for example")

	// Fill defaults
	v.SetDefault("fill.batch_size", 45)
	v.SetDefault("fill.max_retries", 2)

	// Generator defaults (flat, single provider)
	v.SetDefault("generator.provider", "deepseek")
	v.SetDefault("generator.api_key", "")
	v.SetDefault("generator.default_model", "deepseek-chat")
	v.SetDefault("generator.timeout_secs", 120)

	// Generator primary/secondary/tertiary defaults
	v.SetDefault("generator.primary.provider", "")
	v.SetDefault("generator.primary.api_key", "")
	v.SetDefault("generator.primary.default_model", "")
	v.SetDefault("generator.primary.timeout_secs", 120)
	v.SetDefault("generator.secondary.provider", "")
	v.SetDefault("generator.secondary.api_key", "")
	v.SetDefault("generator.secondary.default_model", "")
	v.SetDefault("generator.secondary.timeout_secs", 120)
	v.SetDefault("generator.tertiary.provider", "")
	v.SetDefault("generator.tertiary.api_key", "")
	v.SetDefault("generator.tertiary.default_model", "")
	v.SetDefault("generator.tertiary.timeout_secs", 120)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                       "PLANFILL_SERVER_PORT",
		"server.read_timeout":               "PLANFILL_SERVER_READ_TIMEOUT",
		"server.write_timeout":              "PLANFILL_SERVER_WRITE_TIMEOUT",
		"server.environment":                "PLANFILL_SERVER_ENVIRONMENT",
		"db.host":                           "PLANFILL_DB_HOST",
		"db.port":                           "PLANFILL_DB_PORT",
		"db.user":                           "PLANFILL_DB_USER",
		"db.password":                       "PLANFILL_DB_PASSWORD",
		"db.name":                           "PLANFILL_DB_NAME",
		"db.sslmode":                        "PLANFILL_DB_SSLMODE",
		"db.max_open":                       "PLANFILL_DB_MAX_OPEN",
		"db.max_idle":                       "PLANFILL_DB_MAX_IDLE",
		"auth.api_key_hash":                 "PLANFILL_AUTH_API_KEY_HASH",
		"auth.token_secret":                 "PLANFILL_AUTH_TOKEN_SECRET",
		"auth.token_ttl":                    "PLANFILL_AUTH_TOKEN_TTL",
		"auth.issuer":                       "PLANFILL_AUTH_ISSUER",
		"s3.region":                         "PLANFILL_S3_REGION",
		"s3.bucket":                         "PLANFILL_S3_BUCKET",
		"s3.endpoint":                       "PLANFILL_S3_ENDPOINT",
		"s3.access_key":                     "PLANFILL_S3_ACCESS_KEY",
		"s3.secret_key":                     "PLANFILL_S3_SECRET_KEY",
		"s3.max_file_size_mb":               "PLANFILL_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":                 "PLANFILL_S3_PRESIGN_EXPIRY",
		"log.level":                         "PLANFILL_LOG_LEVEL",
		"log.format":                        "PLANFILL_LOG_FORMAT",
		"cors.allowed_origins":              "PLANFILL_CORS_ALLOWED_ORIGINS",
		"queue.poll_interval_secs":          "PLANFILL_QUEUE_POLL_INTERVAL_SECS",
		"queue.max_retries":                 "PLANFILL_QUEUE_MAX_RETRIES",
		"queue.concurrency":                 "PLANFILL_QUEUE_CONCURRENCY",
		"infer.instructional_min_runes":     "PLANFILL_INFER_INSTRUCTIONAL_MIN_RUNES",
		"infer.short_label_max_runes":       "PLANFILL_INFER_SHORT_LABEL_MAX_RUNES",
		"infer.context_lookup":              "PLANFILL_INFER_CONTEXT_LOOKUP",
		"infer.phase_row_cap":               "PLANFILL_INFER_PHASE_ROW_CAP",
		"infer.matrix_headers":              "PLANFILL_INFER_MATRIX_HEADERS",
		"infer.phase_tokens":                "PLANFILL_INFER_PHASE_TOKENS",
		"infer.default_phase":               "PLANFILL_INFER_DEFAULT_PHASE",
		"infer.section_headers":             "PLANFILL_INFER_SECTION_HEADERS",
		"infer.stoplist":                    "PLANFILL_INFER_STOPLIST",
		"infer.boilerplate":                 "PLANFILL_INFER_BOILERPLATE",
		"fill.batch_size":                   "PLANFILL_FILL_BATCH_SIZE",
		"fill.max_retries":                  "PLANFILL_FILL_MAX_RETRIES",
		"generator.provider":                "PLANFILL_GENERATOR_PROVIDER",
		"generator.api_key":                 "PLANFILL_GENERATOR_API_KEY",
		"generator.default_model":           "PLANFILL_GENERATOR_DEFAULT_MODEL",
		"generator.timeout_secs":            "PLANFILL_GENERATOR_TIMEOUT_SECS",
		"generator.primary.provider":        "PLANFILL_GENERATOR_PRIMARY_PROVIDER",
		"generator.primary.api_key":         "PLANFILL_GENERATOR_PRIMARY_API_KEY",
		"generator.primary.default_model":   "PLANFILL_GENERATOR_PRIMARY_DEFAULT_MODEL",
		"generator.primary.timeout_secs":    "PLANFILL_GENERATOR_PRIMARY_TIMEOUT_SECS",
		"generator.secondary.provider":      "PLANFILL_GENERATOR_SECONDARY_PROVIDER",
		"generator.secondary.api_key":       "PLANFILL_GENERATOR_SECONDARY_API_KEY",
		"generator.secondary.default_model": "PLANFILL_GENERATOR_SECONDARY_DEFAULT_MODEL",
		"generator.secondary.timeout_secs":  "PLANFILL_GENERATOR_SECONDARY_TIMEOUT_SECS",
		"generator.tertiary.provider":       "PLANFILL_GENERATOR_TERTIARY_PROVIDER",
		"generator.tertiary.api_key":        "PLANFILL_GENERATOR_TERTIARY_API_KEY",
		"generator.tertiary.default_model":  "PLANFILL_GENERATOR_TERTIARY_DEFAULT_MODEL",
		"generator.tertiary.timeout_secs":   "PLANFILL_GENERATOR_TERTIARY_TIMEOUT_SECS",
		"email.provider":                    "PLANFILL_EMAIL_PROVIDER",
		"email.region":                      "PLANFILL_EMAIL_REGION",
		"email.from_address":                "PLANFILL_EMAIL_FROM_ADDRESS",
		"email.from_name":                   "PLANFILL_EMAIL_FROM_NAME",
		"email.frontend_url":                "PLANFILL_EMAIL_FRONTEND_URL",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if PLANFILL_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("PLANFILL_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
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
	cfg.Auth = AuthConfig{
		APIKeyHash:  v.GetString("auth.api_key_hash"),
		TokenSecret: v.GetString("auth.token_secret"),
		TokenTTL:    v.GetDuration("auth.token_ttl"),
		Issuer:      v.GetString("auth.issuer"),
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

	cfg.Generator = GeneratorConfig{
		Provider:     v.GetString("generator.provider"),
		APIKey:       v.GetString("generator.api_key"),
		DefaultModel: v.GetString("generator.default_model"),
		TimeoutSecs:  v.GetInt("generator.timeout_secs"),
		Primary: GeneratorProviderConfig{
			Provider:     v.GetString("generator.primary.provider"),
			APIKey:       v.GetString("generator.primary.api_key"),
			DefaultModel: v.GetString("generator.primary.default_model"),
			TimeoutSecs:  v.GetInt("generator.primary.timeout_secs"),
		},
		Secondary: GeneratorProviderConfig{
			Provider:     v.GetString("generator.secondary.provider"),
			APIKey:       v.GetString("generator.secondary.api_key"),
			DefaultModel: v.GetString("generator.secondary.default_model"),
			TimeoutSecs:  v.GetInt("generator.secondary.timeout_secs"),
		},
		Tertiary: GeneratorProviderConfig{
			Provider:     v.GetString("generator.tertiary.provider"),
			APIKey:       v.GetString("generator.tertiary.api_key"),
			DefaultModel: v.GetString("generator.tertiary.default_model"),
			TimeoutSecs:  v.GetInt("generator.tertiary.timeout_secs"),
		},
	}

	cfg.Infer = InferConfig{
		InstructionalMinRunes: v.GetInt("infer.instructional_min_runes"),
		ShortLabelMaxRunes:    v.GetInt("infer.short_label_max_runes"),
		ContextLookup:         v.GetBool("infer.context_lookup"),
		PhaseRowCap:           v.GetInt("infer.phase_row_cap"),
		MatrixHeaders:         splitCSV(v.GetString("infer.matrix_headers")),
		PhaseTokens:           splitCSV(v.GetString("infer.phase_tokens")),
		DefaultPhase:          v.GetString("infer.default_phase"),
		SectionHeaders:        splitCSV(v.GetString("infer.section_headers")),
		Stoplist:              splitCSV(v.GetString("infer.stoplist")),
		Boilerplate:           splitCSV(v.GetString("infer.boilerplate")),
	}

	cfg.Fill = FillConfig{
		BatchSize:  v.GetInt("fill.batch_size"),
		MaxRetries: v.GetInt("fill.max_retries"),
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

	return cfg, nil
}

// splitCSV splits a comma-separated environment value into trimmed,
// non-empty entries.
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
