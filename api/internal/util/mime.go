package util

import (
	"net/http"
	"strings"
)

func SniffMimeHTTP(b []byte) string {
	if len(b) >= 2 && b[0] == 0xFF && b[1] == 0xD8 {
		return "image/jpeg"
	}
	if len(b) >= 8 &&
		b[0] == 0x89 && b[1] == 0x50 && b[2] == 0x4E && b[3] == 0x47 &&
		b[4] == 0x0D && b[5] == 0x0A && b[6] == 0x1A && b[7] == 0x0A {
		return "image/png"
	}
	return "application/octet-stream"
}

// PickMIME prefers the declared type, then sniffs the bytes, then falls back to JPEG.
func PickMIME(declared string, data []byte) string {
	if d := strings.ToLower(strings.TrimSpace(declared)); d != "" && d != "application/octet-stream" {
		if semi := strings.IndexByte(d, ';'); semi >= 0 {
			d = strings.TrimSpace(d[:semi])
		}
		return d
	}
	if len(data) > 0 {
		if m := SniffMimeHTTP(data); m != "application/octet-stream" {
			return m
		}
		if m := http.DetectContentType(data); strings.HasPrefix(m, "image/") {
			return m
		}
	}
	return "image/jpeg"
}

// IsImageMIME reports whether the hosted vision models accept the type.
func IsImageMIME(m string) bool {
	switch strings.ToLower(strings.TrimSpace(m)) {
	case "image/jpeg", "image/jpg", "image/png", "image/webp", "image/gif":
		return true
	}
	return false
}

// ExtFor maps an image MIME type to the object-key extension.
func ExtFor(m string) string {
	switch strings.ToLower(strings.TrimSpace(m)) {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".jpg"
	}
}

func MakeDataURL(mime, b64 string) string {
	return "data:" + mime + ";base64," + b64
}
