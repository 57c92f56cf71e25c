package handle

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pet-mood/api/internal/blob"
	"pet-mood/api/internal/util"
)

// Files serves uploaded images when no public base URL fronts the store.
// Only keys directly under uploads/ are reachable; metadata, email logs and
// events stay private.
func (h *Handle) Files(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	name, ok := strings.CutPrefix(key, "uploads/")
	if !ok || name == "" || strings.Contains(name, "/") || !blob.ValidKey(key) {
		c.Status(http.StatusNotFound)
		return
	}

	data, err := h.blobs.Get(c.Request.Context(), key)
	if errors.Is(err, blob.ErrNotFound) {
		c.Status(http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.WithError(err).WithField("key", key).Error("read blob failed")
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Data(http.StatusOK, util.PickMIME("", data), data)
}
