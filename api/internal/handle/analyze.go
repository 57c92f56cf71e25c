package handle

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"pet-mood/api/internal/mood"
	"pet-mood/api/internal/session"
	"pet-mood/api/internal/shop"
	"pet-mood/api/internal/upload"
)

// multipart envelope allowance on top of the image limit
const formOverhead = 1 << 20

type AnalyzeResponse struct {
	mood.Result
	UploadID string      `json:"uploadId"`
	ImageURL string      `json:"imageUrl"`
	CTALinks []shop.Link `json:"cta_links"`
}

func (h *Handle) Analyze(c *gin.Context) {
	email := session.Email(c)
	if email == "" {
		writeError(c, http.StatusUnauthorized, "Email required")
		return
	}

	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+formOverhead)
	}
	fh, err := c.FormFile("image")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(c, http.StatusRequestEntityTooLarge, "Image too large")
			return
		}
		writeError(c, http.StatusBadRequest, "No image")
		return
	}
	if h.maxUploadBytes > 0 && fh.Size > h.maxUploadBytes {
		writeError(c, http.StatusRequestEntityTooLarge, "Image too large")
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(c, http.StatusBadRequest, "No image")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		writeError(c, http.StatusBadRequest, "No image")
		return
	}

	a, err := h.uploads.Analyze(c.Request.Context(), upload.Identity{Email: email}, data, fh.Header.Get("Content-Type"))
	if err != nil {
		h.writeAnalyzeError(c, err)
		return
	}

	links := a.CTALinks
	if links == nil {
		links = []shop.Link{}
	}
	c.JSON(http.StatusOK, AnalyzeResponse{
		Result:   a.Record.Result,
		UploadID: a.Record.ID,
		ImageURL: a.Record.ImageURL,
		CTALinks: links,
	})
}

func (h *Handle) AnalyzeStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
