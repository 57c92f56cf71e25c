// Package session carries the two cookies the app uses: the captured email
// (an access gate, not authentication) and an anonymous attribution id.
package session

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	EmailCookie = "pm_email"
	SIDCookie   = "pm_sid"

	maxAge = 180 * 24 * 60 * 60
)

var reEmail = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func ValidEmail(s string) bool { return reEmail.MatchString(s) }

// EmailHash is the hex sha256 of the lower-cased address; it keys the
// upload index so raw emails stay out of object paths.
func EmailHash(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(email)))
	return hex.EncodeToString(sum[:])
}

// NewID returns "<unix ms>-<8 hex chars>", which sorts by creation time.
func NewID(now time.Time) string {
	return fmt.Sprintf("%d-%s", now.UnixMilli(), strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// Email returns the captured email, or "" when the gate was not passed.
func Email(c *gin.Context) string {
	v, err := c.Cookie(EmailCookie)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(v)
}

func SetEmail(c *gin.Context, email string, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(EmailCookie, email, maxAge, "/", "", secure, true)
}

func ClearEmail(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(EmailCookie, "", -1, "/", "", secure, true)
}

// EnsureSID returns the anonymous session id, issuing one if absent. The
// cookie is readable by scripts so client-side attribution can use it.
func EnsureSID(c *gin.Context, secure bool) string {
	if v, err := c.Cookie(SIDCookie); err == nil && strings.TrimSpace(v) != "" {
		return v
	}
	sid := NewID(time.Now())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SIDCookie, sid, maxAge, "/", "", secure, false)
	return sid
}
