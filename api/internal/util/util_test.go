package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"fence mid text", "Here you go:\n```\n{\"a\":1}\n```\nEnjoy", `{"a":1}`},
		{"chatty", `Sure! {"a":{"b":2}} hope it helps`, `{"a":{"b":2}}`},
		{"no braces", "  sorry  ", "sorry"},
		{"valid with backticks in value", "{\"a\":\"Say ```sit``` then reward\"}", "{\"a\":\"Say ```sit``` then reward\"}"},
		{"fence then prose", "```json\n{\"a\":1}\n```\nLet me know if you need anything else.", `{"a":1}`},
		{"unclosed fence", "```json\n{\"a\":1}", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSON(tt.in))
		})
	}
}

func TestClampRunes(t *testing.T) {
	assert.Equal(t, "héll", ClampRunes("héllo", 4))
	assert.Equal(t, "hi", ClampRunes("hi", 10))
	assert.Equal(t, "", ClampRunes("hi", 0))
}

func TestCollapseSpaces(t *testing.T) {
	assert.Equal(t, "a b c", CollapseSpaces("  a \t b\n\nc "))
}

func TestPickMIME(t *testing.T) {
	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	assert.Equal(t, "image/webp", PickMIME("Image/WebP; charset=x", nil))
	assert.Equal(t, "image/png", PickMIME("application/octet-stream", png))
	assert.Equal(t, "image/jpeg", PickMIME("", []byte{0xFF, 0xD8, 0xFF}))
	assert.Equal(t, "image/jpeg", PickMIME("", []byte("plain text")))
}

func TestImageHelpers(t *testing.T) {
	assert.True(t, IsImageMIME("image/png"))
	assert.False(t, IsImageMIME("image/bmp"))
	assert.Equal(t, ".png", ExtFor("image/png"))
	assert.Equal(t, ".jpg", ExtFor("image/jpeg"))
	assert.Equal(t, ".jpg", ExtFor("whatever"))
	assert.Equal(t, "data:image/png;base64,AAA", MakeDataURL("image/png", "AAA"))
}
