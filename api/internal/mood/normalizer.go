// Package mood turns the free-form JSON a vision model returns for a pet
// photo into a bounded, fully populated Result.
package mood

import (
	"errors"
	"math"
	"regexp"
	"strings"

	"github.com/valyala/fastjson"

	"pet-mood/api/internal/util"
)

// ErrUnparseable means the model text was not JSON at all. It is a failed
// analysis, not a rejection of the photo.
var ErrUnparseable = errors.New("mood: model output is not valid JSON")

type Emotion struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

type BreedGuess struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

type Care struct {
	Teeth string `json:"teeth"`
	Paws  string `json:"paws"`
	Eyes  string `json:"eyes"`
}

type Result struct {
	Emotion            Emotion    `json:"emotion"`
	ActivitySuggestion string     `json:"activity_suggestion"`
	BreedGuess         BreedGuess `json:"breed_guess"`
	ToyIdeas           []string   `json:"toy_ideas"`
	RecommendedTreat   string     `json:"recommended_treat"`
	Care               Care       `json:"care"`
}

// Outcome is either a rejection with a user-facing reason or a Result.
type Outcome struct {
	Rejected bool
	Reason   string
	Result   Result
}

type Normalizer struct {
	policy   Policy
	emotions map[string]struct{}
	hedge    *regexp.Regexp
}

func New(p Policy) *Normalizer {
	p = p.clone()
	set := make(map[string]struct{}, len(p.Emotions))
	for _, e := range p.Emotions {
		set[e] = struct{}{}
	}
	return &Normalizer{
		policy:   p,
		emotions: set,
		hedge:    hedgePattern(p.HedgeWords),
	}
}

func hedgePattern(words []string) *regexp.Regexp {
	alts := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		parts := strings.Fields(w)
		for i := range parts {
			parts[i] = regexp.QuoteMeta(parts[i])
		}
		alts = append(alts, strings.Join(parts, `\s*`))
	}
	if len(alts) == 0 {
		return nil
	}
	return regexp.MustCompile(`(?i)(?:` + strings.Join(alts, "|") + `)`)
}

// Policy returns a copy of the policy the normalizer was built with.
func (n *Normalizer) Policy() Policy { return n.policy.clone() }

// IsEmotion reports whether label is one of the canonical labels.
func (n *Normalizer) IsEmotion(label string) bool {
	_, ok := n.emotions[label]
	return ok
}

// NormalizeText parses a raw completion and normalizes it. Only a parse
// failure is an error; everything else degrades to defaults.
func (n *Normalizer) NormalizeText(text string) (Outcome, error) {
	v, err := fastjson.Parse(util.ExtractJSON(text))
	if err != nil {
		return Outcome{}, errors.Join(ErrUnparseable, err)
	}
	return n.Normalize(v), nil
}

func (n *Normalizer) Normalize(raw *fastjson.Value) Outcome {
	if reason, blocked := n.ClassifyBlock(raw); blocked {
		return Outcome{Rejected: true, Reason: reason}
	}
	return Outcome{Result: n.AssembleResult(raw)}
}

// ClassifyBlock must run before any analysis field is read: a blocked
// completion usually carries nothing else.
func (n *Normalizer) ClassifyBlock(raw *fastjson.Value) (string, bool) {
	if !truthy(field(raw, "blocked")) {
		return "", false
	}
	reason := util.CollapseSpaces(CoerceText(field(raw, "reason"), ""))
	if reason == "" {
		reason = n.policy.BlockedReason
	}
	return util.ClampRunes(reason, MaxReasonRunes), true
}

func (n *Normalizer) CanonicalizeEmotion(label string) string {
	t := strings.TrimSpace(label)
	if _, ok := n.emotions[t]; ok {
		return t
	}
	lower := strings.ToLower(t)
	if lower != "" {
		for _, r := range n.policy.EmotionRules {
			for _, kw := range r.Keywords {
				if strings.Contains(lower, kw) {
					return r.Label
				}
			}
		}
	}
	return n.policy.DefaultEmotion
}

// StripBreedDisclaimers removes hedge words until none are left, so a
// removal that glues a new hedge word together is caught as well. An empty
// result means the caller must fall back to the breed sentinel.
func (n *Normalizer) StripBreedDisclaimers(label string) string {
	s := label
	if n.hedge != nil {
		for {
			next := n.hedge.ReplaceAllString(s, "")
			if next == s {
				break
			}
			s = next
		}
	}
	s = util.ClampRunes(util.CollapseSpaces(s), MaxBreedRunes)
	return strings.TrimSpace(s)
}

func (n *Normalizer) AssembleResult(raw *fastjson.Value) Result {
	p := n.policy

	emotion := field(raw, "emotion")
	breed := field(raw, "breed_guess")
	care := field(raw, "care")

	res := Result{
		Emotion: Emotion{
			Label:      n.CanonicalizeEmotion(CoerceText(field(emotion, "label"), "")),
			Confidence: CoerceUnitInterval(field(emotion, "confidence"), p.DefaultConfidence),
		},
		ActivitySuggestion: util.ClampRunes(CoerceText(field(raw, "activity_suggestion"), ""), MaxActivityRunes),
		BreedGuess: BreedGuess{
			Label:      n.StripBreedDisclaimers(CoerceText(field(breed, "label"), "")),
			Confidence: CoerceUnitInterval(field(breed, "confidence"), p.DefaultConfidence),
		},
		ToyIdeas: CoerceDistinctPair(field(raw, "toy_ideas")),
		Care: Care{
			Teeth: n.careText(field(care, "teeth")),
			Paws:  n.careText(field(care, "paws")),
			Eyes:  n.careText(field(care, "eyes")),
		},
	}

	if res.BreedGuess.Label == "" {
		res.BreedGuess.Label = p.BreedSentinel
		res.BreedGuess.Confidence = math.Min(res.BreedGuess.Confidence, p.BreedUnsureCap)
	}

	treat := field(raw, "recommended_treat")
	if isNullish(treat) {
		treat = field(raw, "favorite_treat")
	}
	res.RecommendedTreat = util.ClampRunes(CoerceText(treat, ""), MaxTreatRunes)

	return res
}

func (n *Normalizer) careText(v *fastjson.Value) string {
	s := util.ClampRunes(CoerceText(v, n.policy.CareSentinel), MaxCareRunes)
	if strings.TrimSpace(s) == "" {
		return n.policy.CareSentinel
	}
	return s
}
