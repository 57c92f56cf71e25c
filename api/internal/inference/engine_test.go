package inference

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEngine struct {
	name  string
	text  string
	err   error
	calls int
}

func (s *stubEngine) Name() string     { return s.name }
func (s *stubEngine) GetModel() string { return "stub-1" }
func (s *stubEngine) Analyze(ctx context.Context, _ []byte, _ string) (string, error) {
	s.calls++
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.text, s.err
}

func TestEngines_GetEngine(t *testing.T) {
	gpt := &stubEngine{name: "gpt"}
	claude := &stubEngine{name: "claude"}
	engs := &Engines{OpenAI: gpt, Claude: claude}

	for _, name := range []string{"gpt", "openai", " GPT "} {
		e, err := engs.GetEngine(name)
		require.NoError(t, err, name)
		assert.Same(t, gpt, e)
	}
	e, err := engs.GetEngine("anthropic")
	require.NoError(t, err)
	assert.Same(t, claude, e)

	_, err = engs.GetEngine("gemini")
	assert.ErrorContains(t, err, "not configured")

	_, err = engs.GetEngine("llama")
	assert.ErrorContains(t, err, "unknown llm_name")
}

func TestGuard_PassesThrough(t *testing.T) {
	s := &stubEngine{name: "gpt", text: `{"blocked":false}`}
	g := Guard(s, 3, time.Minute)

	out, err := g.Analyze(context.Background(), []byte("img"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, `{"blocked":false}`, out)
	assert.Equal(t, "gpt", g.Name())
	assert.Equal(t, "stub-1", g.GetModel())
}

func TestGuard_OpensAfterConsecutiveFailures(t *testing.T) {
	boom := errors.New("upstream 503")
	s := &stubEngine{name: "gemini", err: boom}
	g := Guard(s, 2, time.Minute)

	for i := 0; i < 2; i++ {
		_, err := g.Analyze(context.Background(), nil, "image/png")
		assert.ErrorIs(t, err, boom)
	}
	_, err := g.Analyze(context.Background(), nil, "image/png")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, s.calls, "open breaker must not reach the provider")
}

func TestGuard_CancellationDoesNotTrip(t *testing.T) {
	s := &stubEngine{name: "claude", text: "{}"}
	g := Guard(s, 1, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := g.Analyze(ctx, nil, "image/jpeg")
	assert.ErrorIs(t, err, context.Canceled)

	out, err := g.Analyze(context.Background(), nil, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "{}", out)
}
