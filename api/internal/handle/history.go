package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pet-mood/api/internal/session"
)

func (h *Handle) MyAnalyses(c *gin.Context) {
	email := session.Email(c)
	if email == "" {
		writeError(c, http.StatusUnauthorized, "Email required")
		return
	}
	hash := session.EmailHash(email)

	items, err := h.uploads.History(c.Request.Context(), hash, h.historyLimit)
	if err != nil {
		h.log.WithError(err).WithField("email_hash", hash).Error("list analyses failed")
		writeError(c, http.StatusInternalServerError, "Failed to load analyses")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"emailHash": hash,
		"count":     len(items),
		"items":     items,
	})
}
