// Package app assembles the analyze pipeline from configuration. Both the
// HTTP server and the Telegram bot run on it.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"pet-mood/api/internal/blob"
	"pet-mood/api/internal/config"
	"pet-mood/api/internal/events"
	"pet-mood/api/internal/handle"
	"pet-mood/api/internal/httpserver"
	"pet-mood/api/internal/inference"
	"pet-mood/api/internal/inference/claude"
	"pet-mood/api/internal/inference/gemini"
	"pet-mood/api/internal/inference/gpt"
	"pet-mood/api/internal/metrics"
	"pet-mood/api/internal/mood"
	"pet-mood/api/internal/shop"
	"pet-mood/api/internal/store"
	"pet-mood/api/internal/upload"
)

const historyLimit = 50

type App struct {
	Config  *config.Config
	Log     *logrus.Logger
	Blobs   blob.Store
	Uploads *upload.Service
	Events  *events.Recorder

	// DB is nil when the upload index lives in the blob store.
	DB          *sql.DB
	Subscribers *store.SubscriberRepo
}

// NewEngines builds a client for every model that has an API key.
func NewEngines(cfg *config.Config) *inference.Engines {
	e := &inference.Engines{}
	if cfg.OpenAIAPIKey != "" {
		e.OpenAI = gpt.New(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}
	if cfg.GeminiAPIKey != "" {
		e.Gemini = gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel)
	}
	if cfg.AnthropicAPIKey != "" {
		e.Claude = claude.New(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	}
	return e
}

func BlobOptions(cfg *config.Config) blob.Options {
	return blob.Options{
		Backend:    cfg.BlobBackend,
		PublicBase: cfg.BlobPublicBaseURL,
		S3: blob.S3Config{
			Endpoint:   cfg.S3Endpoint,
			Region:     cfg.S3Region,
			AccessKey:  cfg.S3AccessKey,
			SecretKey:  cfg.S3SecretKey,
			Bucket:     cfg.S3Bucket,
			PublicBase: cfg.BlobPublicBaseURL,
		},
		Redis: &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		},
	}
}

func New(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	metrics.Register()

	eng, err := NewEngines(cfg).GetEngine(cfg.LLMName)
	if err != nil {
		return nil, err
	}
	eng = inference.Guard(eng, cfg.BreakerMaxFailures, cfg.BreakerTimeout)

	blobs, err := blob.Open(ctx, BlobOptions(cfg))
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Log: log, Blobs: blobs}

	var index store.UploadIndex
	switch cfg.IndexBackend {
	case "postgres":
		dsn := cfg.DSN()
		db, err := store.Open(ctx, dsn)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		log.WithField("dsn", store.SafeDSNSummary(dsn)).Info("db connected")
		a.DB = db
		a.Subscribers = store.NewSubscriberRepo(db)
		index = store.NewUploadRepo(db)
	default:
		index = store.NewBlobIndex(blobs)
	}

	a.Uploads = &upload.Service{
		Engine:     eng,
		Normalizer: mood.New(mood.DefaultPolicy()),
		Blobs:      blobs,
		Index:      index,
		Links:      shop.NewLinker(cfg.AffiliateTag),
		Log:        log,
		Timeout:    cfg.AnalyzeTimeout,
		MaxBytes:   cfg.MaxUploadBytes,
	}
	a.Events = events.NewRecorder(blobs, log)

	log.WithFields(logrus.Fields{
		"engine": eng.Name(),
		"model":  eng.GetModel(),
		"blob":   cfg.BlobBackend,
		"index":  cfg.IndexBackend,
	}).Info("pipeline ready")
	return a, nil
}

// Handler returns the HTTP API.
func (a *App) Handler() http.Handler {
	opts := handle.Options{
		Uploads:        a.Uploads,
		Events:         a.Events,
		Blobs:          a.Blobs,
		Log:            a.Log,
		CookieSecure:   a.Config.CookieSecure,
		MaxUploadBytes: a.Config.MaxUploadBytes,
		HistoryLimit:   historyLimit,
	}
	if a.DB != nil {
		opts.DB = a.DB
		opts.Subscribers = a.Subscribers
	}
	return httpserver.NewRouter(handle.New(opts), a.Log)
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
