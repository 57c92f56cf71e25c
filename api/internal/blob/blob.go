// Package blob is a flat key→bytes store with slash-separated keys.
// Objects are written whole and never updated in place.
package blob

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"
)

var ErrNotFound = errors.New("blob: not found")

type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

type Store interface {
	// Put stores data under key and returns the URL clients use to fetch it.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	// List returns objects whose key starts with prefix, ordered by key.
	List(ctx context.Context, prefix string) ([]Object, error)
	// URL is the address Put returns for key, known before the write.
	URL(key string) string
}

// FilesPath is where the HTTP server serves blobs when no public base URL
// is configured.
const FilesPath = "/files/"

// PublicURL joins base and key. An empty base yields a server-relative URL
// under FilesPath.
func PublicURL(base, key string) string {
	parts := strings.Split(strings.TrimLeft(key, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	escaped := strings.Join(parts, "/")
	base = strings.TrimRight(base, "/")
	if base == "" {
		return FilesPath + escaped
	}
	return base + "/" + escaped
}

// ValidKey rejects keys that could escape their prefix.
func ValidKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return false
	}
	for _, p := range strings.Split(key, "/") {
		if p == "" || p == "." || p == ".." {
			return false
		}
	}
	return true
}
