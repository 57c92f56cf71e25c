package util

import (
	"regexp"
	"strings"

	"github.com/valyala/fastjson"
)

var reFenced = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)```")

// ExtractJSON pulls the JSON payload out of a model completion. Text that
// already parses is returned as is; otherwise the first fenced block, then
// the outermost {...} span. Text without braces is returned trimmed so the
// caller's parser reports the failure.
func ExtractJSON(s string) string {
	s = strings.TrimSpace(s)
	if fastjson.Validate(s) == nil {
		return s
	}
	if m := reFenced.FindStringSubmatch(s); m != nil {
		if body := strings.TrimSpace(m[1]); fastjson.Validate(body) == nil {
			return body
		}
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return strings.TrimSpace(s[start : end+1])
	}
	return s
}

// ClampRunes ensures a string does not exceed max runes.
func ClampRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

// CollapseSpaces trims s and folds inner whitespace runs into one space.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
