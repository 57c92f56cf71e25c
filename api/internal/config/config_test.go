package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("S3_BUCKET", "pets")

	cfg := Load()
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "gpt", cfg.LLMName)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	assert.Equal(t, 60*time.Second, cfg.AnalyzeTimeout)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.Equal(t, uint32(5), cfg.BreakerMaxFailures)
	assert.Equal(t, "s3", cfg.BlobBackend)
	assert.Equal(t, "petmoodai-20", cfg.AffiliateTag)
	assert.Equal(t, "postgres", cfg.IndexBackend)
	require.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("LLM_NAME", " Gemini ")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("BLOB_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("ANALYZE_TIMEOUT", "15s")
	t.Setenv("BLOB_PUBLIC_BASE_URL", "https://cdn.example.com/")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("INDEX_BACKEND", "Blob")

	cfg := Load()
	assert.Equal(t, "gemini", cfg.LLMName)
	assert.Equal(t, "redis", cfg.BlobBackend)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 15*time.Second, cfg.AnalyzeTimeout)
	assert.Equal(t, "https://cdn.example.com", cfg.BlobPublicBaseURL)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, "blob", cfg.IndexBackend)
	require.NoError(t, cfg.Validate())
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := &Config{
		LLMName:        "claude",
		BlobBackend:    "s3",
		AnalyzeTimeout: 0,
		MaxUploadBytes: 1,
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")
	assert.Contains(t, err.Error(), "S3_BUCKET")
	assert.Contains(t, err.Error(), "ANALYZE_TIMEOUT")

	cfg = &Config{LLMName: "llama", BlobBackend: "ftp", AnalyzeTimeout: time.Second, MaxUploadBytes: 1}
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown LLM_NAME")
	assert.Contains(t, err.Error(), "unknown BLOB_BACKEND")
	assert.Contains(t, err.Error(), "unknown INDEX_BACKEND")
}

func TestDSN(t *testing.T) {
	cfg := &Config{DatabaseURL: "postgres://u:p@h:1/db"}
	assert.Equal(t, "postgres://u:p@h:1/db", cfg.DSN())

	cfg = &Config{
		PostgresUser:     "petmood",
		PostgresPassword: "s3cret",
		PostgresHost:     "db",
		PostgresPort:     "5432",
		PostgresDB:       "petmood",
	}
	assert.Equal(t, "postgres://petmood:s3cret@db:5432/petmood?sslmode=disable", cfg.DSN())
}
