package blob

import (
	"context"

	"pet-mood/api/internal/metrics"
)

type instrumented struct {
	Store
	backend string
}

// WithMetrics counts Put outcomes per backend.
func WithMetrics(s Store, backend string) Store {
	return &instrumented{Store: s, backend: backend}
}

func (i *instrumented) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	u, err := i.Store.Put(ctx, key, data, contentType)
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.BlobWritesTotal.WithLabelValues(i.backend, result).Inc()
	return u, err
}
