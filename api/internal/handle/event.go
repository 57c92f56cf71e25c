package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pet-mood/api/internal/events"
	"pet-mood/api/internal/session"
)

// CreateEvent logs a client-reported event. A body that is not a JSON
// object is recorded as an empty event.
func (h *Handle) CreateEvent(c *gin.Context) {
	sid := session.EnsureSID(c, h.cookieSecure)

	raw := map[string]any{}
	if err := c.ShouldBindJSON(&raw); err != nil {
		raw = map[string]any{}
	}
	p, err := events.Decode(raw)
	if err != nil {
		h.log.WithError(err).Warn("event payload")
	}

	if _, err := h.events.Record(c.Request.Context(), sid, c.GetHeader("User-Agent"), p); err != nil {
		h.log.WithError(err).Error("event log error")
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handle) EventStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
