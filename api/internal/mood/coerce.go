package mood

import (
	"math"
	"strconv"
	"strings"

	"github.com/valyala/fastjson"
)

// field returns obj[key], or nil when obj is missing or not an object.
func field(obj *fastjson.Value, key string) *fastjson.Value {
	if obj == nil || obj.Type() != fastjson.TypeObject {
		return nil
	}
	return obj.Get(key)
}

func isNullish(v *fastjson.Value) bool {
	return v == nil || v.Type() == fastjson.TypeNull
}

// CoerceText renders any JSON value as text. Missing and null values yield
// fallback; arrays and objects come back as compact JSON.
func CoerceText(v *fastjson.Value, fallback string) string {
	if isNullish(v) {
		return fallback
	}
	if v.Type() == fastjson.TypeString {
		b, _ := v.StringBytes()
		return string(b)
	}
	return v.String()
}

// CoerceUnitInterval reads a number (or numeric string) and clamps it into
// [0,1]. Anything else yields fallback, also clamped.
func CoerceUnitInterval(v *fastjson.Value, fallback float64) float64 {
	n, ok := toNumber(v)
	if !ok {
		n = fallback
	}
	return clamp01(n)
}

func toNumber(v *fastjson.Value) (float64, bool) {
	if isNullish(v) {
		return 0, false
	}
	var (
		n   float64
		err error
	)
	switch v.Type() {
	case fastjson.TypeNumber:
		n, err = v.Float64()
	case fastjson.TypeString:
		b, _ := v.StringBytes()
		n, err = strconv.ParseFloat(strings.TrimSpace(string(b)), 64)
	default:
		return 0, false
	}
	if err != nil || math.IsNaN(n) {
		return 0, false
	}
	return n, true
}

func clamp01(n float64) float64 {
	if math.IsNaN(n) || n < 0 {
		return 0
	}
	if n > 1 {
		return 1
	}
	return n
}

// CoerceDistinctPair keeps at most two distinct, non-blank entries of an
// array in first-seen order. Non-arrays yield an empty slice.
func CoerceDistinctPair(v *fastjson.Value) []string {
	return coerceDistinct(v, MaxToyIdeas)
}

func coerceDistinct(v *fastjson.Value, limit int) []string {
	out := []string{}
	if isNullish(v) || v.Type() != fastjson.TypeArray {
		return out
	}
	items, _ := v.Array()
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if len(out) >= limit {
			break
		}
		s := strings.TrimSpace(CoerceText(it, ""))
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// truthy follows loose JSON truthiness, except that the strings "false",
// "0" and "no" count as false.
func truthy(v *fastjson.Value) bool {
	if isNullish(v) {
		return false
	}
	switch v.Type() {
	case fastjson.TypeTrue, fastjson.TypeObject, fastjson.TypeArray:
		return true
	case fastjson.TypeNumber:
		n, err := v.Float64()
		return err == nil && n != 0 && !math.IsNaN(n)
	case fastjson.TypeString:
		b, _ := v.StringBytes()
		switch strings.ToLower(strings.TrimSpace(string(b))) {
		case "", "false", "0", "no":
			return false
		}
		return true
	}
	return false
}
