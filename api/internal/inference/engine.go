// Package inference sends a pet photo with fixed instructions to a hosted
// multimodal model and returns the raw completion text.
package inference

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// SystemPrompt asks the model to either reject the photo or fill the
// analysis schema. Its output is still treated as untrusted.
const SystemPrompt = `You first decide if the image clearly shows an ANIMAL (any species).
If it does NOT, return ONLY:
{"blocked": true, "reason": "Please upload a clear photo of a pet or animal."}

If it DOES show an animal, return ONE JSON object ONLY (no extra text):
{
  "emotion": { "label": one of ["Happy","Excited","Relaxed","Content","Curious","Playful","Alert","Bored","Anxious","Stressed","Fearful","Sad","Angry","Tired"], "confidence": [0,1] },
  "activity_suggestion": string,
  "breed_guess": { "label": string, "confidence": [0,1] },
  "toy_ideas": string[],
  "recommended_treat": string,
  "care": { "teeth": string, "paws": string, "eyes": string }
}
Rules:
- NO positivity bias; choose negative labels when warranted.
- Breed/species: single plausible guess (never "unknown"); lower confidence if unsure.
- "toy_ideas": only 2, distinct, each formatted "Toy - why it fits"; vary phrasing across runs.
- "care": exactly one actionable tip per field; if a region isn't visible, say "Not Clearly Visible".
- Keep text concise, factual, JSON only.
- Vary wording naturally based on visible cues; avoid repeating stock phrases.`

const UserPrompt = "Analyze or block as instructed; return JSON only."

var ErrEmptyResponse = errors.New("inference: empty response")

type Engine interface {
	Name() string
	GetModel() string
	// Analyze returns the model's text, expected (not guaranteed) to be JSON.
	Analyze(ctx context.Context, image []byte, mime string) (string, error)
}

type Engines struct {
	OpenAI Engine
	Gemini Engine
	Claude Engine
}

func (e *Engines) GetEngine(llmName string) (Engine, error) {
	var eng Engine
	switch strings.ToLower(strings.TrimSpace(llmName)) {
	case "gpt", "openai":
		eng = e.OpenAI
	case "gemini":
		eng = e.Gemini
	case "claude", "anthropic":
		eng = e.Claude
	default:
		return nil, errors.New("unknown llm_name; use 'gpt', 'gemini' or 'claude'")
	}
	if eng == nil {
		return nil, fmt.Errorf("llm %q is not configured", llmName)
	}
	return eng, nil
}
