package handle

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"pet-mood/api/internal/blob"
	"pet-mood/api/internal/events"
	"pet-mood/api/internal/mood"
	"pet-mood/api/internal/upload"
)

// Subscribers records captured emails.
type Subscribers interface {
	Upsert(ctx context.Context, email, emailHash, userAgent string) error
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handle struct {
	uploads     *upload.Service
	events      *events.Recorder
	blobs       blob.Store
	subscribers Subscribers
	db          Pinger
	log         *logrus.Logger

	cookieSecure   bool
	maxUploadBytes int64
	historyLimit   int
	now            func() time.Time
}

type Options struct {
	Uploads *upload.Service
	Events  *events.Recorder
	Blobs   blob.Store
	// Subscribers and DB may be nil when no database is configured.
	Subscribers    Subscribers
	DB             Pinger
	Log            *logrus.Logger
	CookieSecure   bool
	MaxUploadBytes int64
	HistoryLimit   int
}

func New(o Options) *Handle {
	return &Handle{
		uploads:        o.Uploads,
		events:         o.Events,
		blobs:          o.Blobs,
		subscribers:    o.Subscribers,
		db:             o.DB,
		log:            o.Log,
		cookieSecure:   o.CookieSecure,
		maxUploadBytes: o.MaxUploadBytes,
		historyLimit:   o.HistoryLimit,
		now:            time.Now,
	}
}

func writeError(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{"error": msg})
}

// writeAnalyzeError maps pipeline errors to responses. Everything that is
// not the caller's fault is "Analyze failed".
func (h *Handle) writeAnalyzeError(c *gin.Context, err error) {
	var rej *upload.RejectedError
	switch {
	case errors.As(err, &rej):
		writeError(c, http.StatusBadRequest, rej.Reason)
	case errors.Is(err, upload.ErrEmptyImage):
		writeError(c, http.StatusBadRequest, "No image")
	case errors.Is(err, upload.ErrNotImage):
		writeError(c, http.StatusBadRequest, "Unsupported image type")
	case errors.Is(err, upload.ErrTooLarge):
		writeError(c, http.StatusRequestEntityTooLarge, "Image too large")
	default:
		entry := h.log.WithError(err)
		if errors.Is(err, mood.ErrUnparseable) {
			entry = entry.WithField("cause", "unparseable")
		}
		entry.Error("analyze failed")
		writeError(c, http.StatusInternalServerError, "Analyze failed")
	}
}
