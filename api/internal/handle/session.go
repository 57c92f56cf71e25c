package handle

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"pet-mood/api/internal/session"
)

type sessionRequest struct {
	Email string `json:"email"`
}

type emailLog struct {
	Email     string `json:"email"`
	UserAgent string `json:"userAgent"`
	Timestamp string `json:"timestamp"`
}

// CreateSession passes the email gate. Failing to record the address never
// fails the request.
func (h *Handle) CreateSession(c *gin.Context) {
	var req sessionRequest
	_ = c.ShouldBindJSON(&req)
	email := strings.TrimSpace(req.Email)
	if !session.ValidEmail(email) {
		writeError(c, http.StatusBadRequest, "Valid email required")
		return
	}

	session.SetEmail(c, email, h.cookieSecure)

	ua := c.GetHeader("User-Agent")
	if ua == "" {
		ua = "unknown"
	}
	ctx := c.Request.Context()
	log := h.log.WithField("email_hash", session.EmailHash(email))

	if h.subscribers != nil {
		if err := h.subscribers.Upsert(ctx, email, session.EmailHash(email), ua); err != nil {
			log.WithError(err).Error("failed to store subscriber")
		}
	}

	now := h.now().UTC()
	rec, _ := json.MarshalIndent(emailLog{Email: email, UserAgent: ua, Timestamp: now.Format(time.RFC3339Nano)}, "", "  ")
	key := fmt.Sprintf("emails/%d-%s.json", now.UnixMilli(), strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
	if _, err := h.blobs.Put(ctx, key, rec, "application/json"); err != nil {
		log.WithError(err).Error("failed to store email log")
	} else {
		log.WithFields(logrus.Fields{"key": key}).Debug("email captured")
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handle) DeleteSession(c *gin.Context) {
	session.ClearEmail(c, h.cookieSecure)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
