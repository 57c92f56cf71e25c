// Package events records first-party analytics events (page views, CTA
// clicks, variant exposure) as one JSON blob per event.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"

	"pet-mood/api/internal/blob"
	"pet-mood/api/internal/metrics"
	"pet-mood/api/internal/util"
)

const maxFieldRunes = 512

// Payload is what the client reports. Every field arrives loosely typed.
type Payload struct {
	Type     string `mapstructure:"type"`
	Variant  string `mapstructure:"variant"`
	UploadID string `mapstructure:"uploadId"`
	Label    string `mapstructure:"label"`
	URL      string `mapstructure:"url"`
	Price    string `mapstructure:"price"`
}

type Event struct {
	TS       string `json:"ts"`
	SID      string `json:"sid"`
	Type     string `json:"type"`
	Variant  string `json:"variant"`
	UploadID string `json:"uploadId"`
	Label    string `json:"label"`
	URL      string `json:"url"`
	Price    string `json:"price"`
	UA       string `json:"ua"`
}

// stringify renders scalars the way a browser would print them and
// containers as JSON.
func stringify(from reflect.Kind, to reflect.Kind, data any) (any, error) {
	if to != reflect.String {
		return data, nil
	}
	switch from {
	case reflect.Bool:
		return strconv.FormatBool(data.(bool)), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(reflect.ValueOf(data).Float(), 'f', -1, 64), nil
	case reflect.Map, reflect.Slice:
		b, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	}
	return data, nil
}

func isFalsy(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case bool:
		return !x
	case string:
		return x == ""
	case float64:
		return x == 0
	case int:
		return x == 0
	case json.Number:
		f, err := x.Float64()
		return err == nil && f == 0
	}
	return false
}

// Decode coerces a loosely typed JSON object into a Payload. Falsy values
// (null, false, 0, "") become empty strings; unknown keys are ignored.
func Decode(raw map[string]any) (Payload, error) {
	clean := make(map[string]any, len(raw))
	for k, v := range raw {
		if !isFalsy(v) {
			clean[k] = v
		}
	}
	var p Payload
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.DecodeHookFuncKind(stringify),
		WeaklyTypedInput: true,
		Result:           &p,
	})
	if err != nil {
		return Payload{}, err
	}
	if err := dec.Decode(clean); err != nil {
		return Payload{}, fmt.Errorf("decode event: %w", err)
	}
	return p, nil
}

// pathSegment keeps event types safe to use as a key segment.
func pathSegment(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := util.ClampRunes(b.String(), 64)
	if out == "" {
		return "unknown"
	}
	return out
}

// Key returns events/<type>/<YYYY-MM-DD>/<unix ms>-<nonce>.json.
func Key(eventType string, at time.Time, nonce string) string {
	at = at.UTC()
	return fmt.Sprintf("events/%s/%s/%d-%s.json", pathSegment(eventType), at.Format("2006-01-02"), at.UnixMilli(), nonce)
}

type Recorder struct {
	Blobs blob.Store
	Log   *logrus.Logger
	Now   func() time.Time
}

func NewRecorder(b blob.Store, log *logrus.Logger) *Recorder {
	return &Recorder{Blobs: b, Log: log, Now: time.Now}
}

// Record stores one event and returns its key.
func (r *Recorder) Record(ctx context.Context, sid, userAgent string, p Payload) (string, error) {
	now := r.Now().UTC()
	ev := Event{
		TS:       now.Format(time.RFC3339Nano),
		SID:      sid,
		Type:     util.ClampRunes(p.Type, maxFieldRunes),
		Variant:  util.ClampRunes(p.Variant, maxFieldRunes),
		UploadID: util.ClampRunes(p.UploadID, maxFieldRunes),
		Label:    util.ClampRunes(p.Label, maxFieldRunes),
		URL:      util.ClampRunes(p.URL, maxFieldRunes),
		Price:    util.ClampRunes(p.Price, maxFieldRunes),
		UA:       util.ClampRunes(userAgent, maxFieldRunes),
	}
	js, err := json.Marshal(ev)
	if err != nil {
		return "", err
	}

	nonce := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	key := Key(ev.Type, now, nonce)
	if _, err := r.Blobs.Put(ctx, key, js, "application/json"); err != nil {
		return "", fmt.Errorf("store event: %w", err)
	}

	metrics.EventsTotal.WithLabelValues(pathSegment(ev.Type)).Inc()
	r.Log.WithFields(logrus.Fields{"key": key, "type": ev.Type, "variant": ev.Variant}).Debug("event recorded")
	return key, nil
}
