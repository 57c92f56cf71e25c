package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port     string
	LogLevel string

	LLMName         string
	OpenAIAPIKey    string
	OpenAIModel     string
	GeminiAPIKey    string
	GeminiModel     string
	AnthropicAPIKey string
	AnthropicModel  string

	AnalyzeTimeout     time.Duration
	MaxUploadBytes     int64
	BreakerMaxFailures uint32
	BreakerTimeout     time.Duration

	BlobBackend       string // s3 | redis | memory
	BlobPublicBaseURL string
	S3Endpoint        string
	S3Region          string
	S3AccessKey       string
	S3SecretKey       string
	S3Bucket          string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int

	IndexBackend     string // postgres | blob
	DatabaseURL      string
	PostgresUser     string
	PostgresPassword string
	PostgresHost     string
	PostgresPort     string
	PostgresDB       string

	AffiliateTag     string
	CookieSecure     bool
	TelegramBotToken string
	WebhookURL       string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8000")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("LLM_NAME", "gpt")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("ANTHROPIC_MODEL", "claude-3-5-haiku-latest")

	v.SetDefault("ANALYZE_TIMEOUT", "60s")
	v.SetDefault("MAX_UPLOAD_BYTES", 10<<20)
	v.SetDefault("BREAKER_MAX_FAILURES", 5)
	v.SetDefault("BREAKER_TIMEOUT", "30s")

	v.SetDefault("BLOB_BACKEND", "s3")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("INDEX_BACKEND", "postgres")
	v.SetDefault("POSTGRES_USER", "petmood")
	v.SetDefault("PGHOST", "db")
	v.SetDefault("PGPORT", "5432")
	v.SetDefault("POSTGRES_DB", "petmood")

	v.SetDefault("AFFILIATE_TAG", "petmoodai-20")
	v.SetDefault("COOKIE_SECURE", false)
}

// Load reads .env (when present) and the process environment.
func Load() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return &Config{
		Port:     strings.TrimSpace(v.GetString("PORT")),
		LogLevel: v.GetString("LOG_LEVEL"),

		LLMName:         strings.ToLower(strings.TrimSpace(v.GetString("LLM_NAME"))),
		OpenAIAPIKey:    strings.TrimSpace(v.GetString("OPENAI_API_KEY")),
		OpenAIModel:     v.GetString("OPENAI_MODEL"),
		GeminiAPIKey:    strings.TrimSpace(v.GetString("GEMINI_API_KEY")),
		GeminiModel:     v.GetString("GEMINI_MODEL"),
		AnthropicAPIKey: strings.TrimSpace(v.GetString("ANTHROPIC_API_KEY")),
		AnthropicModel:  v.GetString("ANTHROPIC_MODEL"),

		AnalyzeTimeout:     v.GetDuration("ANALYZE_TIMEOUT"),
		MaxUploadBytes:     v.GetInt64("MAX_UPLOAD_BYTES"),
		BreakerMaxFailures: v.GetUint32("BREAKER_MAX_FAILURES"),
		BreakerTimeout:     v.GetDuration("BREAKER_TIMEOUT"),

		BlobBackend:       strings.ToLower(strings.TrimSpace(v.GetString("BLOB_BACKEND"))),
		BlobPublicBaseURL: strings.TrimRight(v.GetString("BLOB_PUBLIC_BASE_URL"), "/"),
		S3Endpoint:        v.GetString("S3_ENDPOINT"),
		S3Region:          v.GetString("S3_REGION"),
		S3AccessKey:       v.GetString("S3_ACCESS_KEY"),
		S3SecretKey:       v.GetString("S3_SECRET_KEY"),
		S3Bucket:          v.GetString("S3_BUCKET"),
		RedisAddr:         v.GetString("REDIS_ADDR"),
		RedisPassword:     v.GetString("REDIS_PASSWORD"),
		RedisDB:           v.GetInt("REDIS_DB"),

		IndexBackend:     strings.ToLower(strings.TrimSpace(v.GetString("INDEX_BACKEND"))),
		DatabaseURL:      strings.TrimSpace(v.GetString("DATABASE_URL")),
		PostgresUser:     v.GetString("POSTGRES_USER"),
		PostgresPassword: v.GetString("POSTGRES_PASSWORD"),
		PostgresHost:     v.GetString("PGHOST"),
		PostgresPort:     v.GetString("PGPORT"),
		PostgresDB:       v.GetString("POSTGRES_DB"),

		AffiliateTag:     v.GetString("AFFILIATE_TAG"),
		CookieSecure:     v.GetBool("COOKIE_SECURE"),
		TelegramBotToken: strings.TrimSpace(v.GetString("TELEGRAM_BOT_TOKEN")),
		WebhookURL:       strings.TrimSpace(v.GetString("WEBHOOK_URL")),
	}
}

// Validate checks the settings the analyze pipeline cannot run without.
func (c *Config) Validate() error {
	var errs []error

	switch c.LLMName {
	case "gpt", "openai":
		if c.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("missing required env OPENAI_API_KEY"))
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			errs = append(errs, errors.New("missing required env GEMINI_API_KEY"))
		}
	case "claude", "anthropic":
		if c.AnthropicAPIKey == "" {
			errs = append(errs, errors.New("missing required env ANTHROPIC_API_KEY"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown LLM_NAME %q; use gpt, gemini or claude", c.LLMName))
	}

	switch c.BlobBackend {
	case "s3":
		if c.S3Bucket == "" {
			errs = append(errs, errors.New("missing required env S3_BUCKET"))
		}
	case "redis":
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("missing required env REDIS_ADDR"))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("unknown BLOB_BACKEND %q; use s3, redis or memory", c.BlobBackend))
	}

	switch c.IndexBackend {
	case "postgres", "blob":
	default:
		errs = append(errs, fmt.Errorf("unknown INDEX_BACKEND %q; use postgres or blob", c.IndexBackend))
	}

	if c.AnalyzeTimeout <= 0 {
		errs = append(errs, errors.New("ANALYZE_TIMEOUT must be positive"))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}
	return errors.Join(errs...)
}

// DSN prefers DATABASE_URL and otherwise builds one from POSTGRES_* / PG*.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.PostgresUser, c.PostgresPassword),
		Host:     net.JoinHostPort(c.PostgresHost, c.PostgresPort),
		Path:     "/" + c.PostgresDB,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}
