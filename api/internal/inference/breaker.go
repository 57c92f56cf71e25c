package inference

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"pet-mood/api/internal/metrics"
)

type guarded struct {
	Engine
	breaker *gobreaker.CircuitBreaker
}

// Guard wraps an engine with a circuit breaker that opens after maxFailures
// consecutive errors and records call latency. A cancelled caller does not
// count as a provider failure.
func Guard(e Engine, maxFailures uint32, timeout time.Duration) Engine {
	settings := gobreaker.Settings{
		Name:        e.Name(),
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}
	return &guarded{Engine: e, breaker: gobreaker.NewCircuitBreaker(settings)}
}

func (g *guarded) Analyze(ctx context.Context, image []byte, mime string) (string, error) {
	start := time.Now()
	out, err := g.breaker.Execute(func() (interface{}, error) {
		return g.Engine.Analyze(ctx, image, mime)
	})

	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.InferenceDurationSeconds.WithLabelValues(g.Name(), result).Observe(time.Since(start).Seconds())

	if err != nil {
		return "", fmt.Errorf("breaker (%s): %w", g.breaker.Name(), err)
	}
	text, _ := out.(string)
	return text, nil
}
