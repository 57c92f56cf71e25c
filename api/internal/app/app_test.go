package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-mood/api/internal/config"
	"pet-mood/api/internal/store"
)

func memoryConfig() *config.Config {
	return &config.Config{
		LLMName:            "gpt",
		OpenAIAPIKey:       "sk-test",
		OpenAIModel:        "gpt-4o-mini",
		AnalyzeTimeout:     time.Second,
		MaxUploadBytes:     1 << 20,
		BreakerMaxFailures: 3,
		BreakerTimeout:     time.Second,
		BlobBackend:        "memory",
		IndexBackend:       "blob",
		AffiliateTag:       "tag-20",
	}
}

func TestNew_MemoryBackends(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log, _ := test.NewNullLogger()

	a, err := New(context.Background(), memoryConfig(), log)
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.DB)
	assert.IsType(t, &store.BlobIndex{}, a.Uploads.Index)
	assert.Equal(t, "gpt", a.Uploads.Engine.Name())

	h := a.Handler()
	for _, path := range []string{"/healthz", "/api/analyze", "/api/event", "/metrics"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	log, _ := test.NewNullLogger()
	cfg := memoryConfig()
	cfg.OpenAIAPIKey = ""
	_, err := New(context.Background(), cfg, log)
	assert.ErrorContains(t, err, "OPENAI_API_KEY")
}

func TestNewEngines_OnlyConfigured(t *testing.T) {
	e := NewEngines(&config.Config{GeminiAPIKey: "g", GeminiModel: "gemini-2.5-flash"})
	assert.Nil(t, e.OpenAI)
	assert.Nil(t, e.Claude)
	require.NotNil(t, e.Gemini)
	assert.Equal(t, "gemini-2.5-flash", e.Gemini.GetModel())

	_, err := e.GetEngine("claude")
	assert.Error(t, err)
}

func TestBlobOptions(t *testing.T) {
	cfg := memoryConfig()
	cfg.BlobBackend = "s3"
	cfg.S3Bucket = "pets"
	cfg.BlobPublicBaseURL = "https://cdn.example.com"
	cfg.RedisAddr = "r:6379"
	o := BlobOptions(cfg)
	assert.Equal(t, "pets", o.S3.Bucket)
	assert.Equal(t, "https://cdn.example.com", o.S3.PublicBase)
	assert.Equal(t, "r:6379", o.Redis.Addr)
}
