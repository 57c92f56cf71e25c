package mood

// Rule maps any of its keywords (matched as lower-case substrings) to Label.
type Rule struct {
	Keywords []string
	Label    string
}

// Policy is the fixed data the Normalizer works from. A Normalizer copies it
// at construction, so later changes to a Policy value do not leak in.
type Policy struct {
	Emotions       []string
	EmotionRules   []Rule // checked in order; first hit wins
	DefaultEmotion string

	// HedgeWords are removed from breed labels. Multi-word phrases match any
	// run of whitespace between words; list longer phrases first.
	HedgeWords []string

	BreedSentinel     string
	BreedUnsureCap    float64
	CareSentinel      string
	BlockedReason     string
	DefaultConfidence float64
}

const (
	MaxActivityRunes = 120
	MaxBreedRunes    = 60
	MaxTreatRunes    = 60
	MaxCareRunes     = 80
	MaxReasonRunes   = 200
	MaxToyIdeas      = 2
)

func DefaultPolicy() Policy {
	return Policy{
		Emotions: []string{
			"Happy", "Excited", "Relaxed", "Content", "Curious", "Playful", "Alert",
			"Bored", "Anxious", "Stressed", "Fearful", "Sad", "Angry", "Tired",
		},
		EmotionRules: []Rule{
			{Keywords: []string{"angry", "mad", "furious", "fury"}, Label: "Angry"},
			{Keywords: []string{"sad"}, Label: "Sad"},
			{Keywords: []string{"fear", "scared", "afraid"}, Label: "Fearful"},
			{Keywords: []string{"stress"}, Label: "Stressed"},
			{Keywords: []string{"anx", "nervous"}, Label: "Anxious"},
			{Keywords: []string{"bored"}, Label: "Bored"},
			{Keywords: []string{"tired", "sleep"}, Label: "Tired"},
			{Keywords: []string{"alert"}, Label: "Alert"},
			{Keywords: []string{"play"}, Label: "Playful"},
			{Keywords: []string{"curio"}, Label: "Curious"},
			{Keywords: []string{"content"}, Label: "Content"},
			{Keywords: []string{"relax", "calm"}, Label: "Relaxed"},
			{Keywords: []string{"excite"}, Label: "Excited"},
			{Keywords: []string{"happy", "joy"}, Label: "Happy"},
		},
		DefaultEmotion:    "Alert",
		HedgeWords:        []string{"breed mix", "mixed breed", "unidentifiable", "unknown", "mixed"},
		BreedSentinel:     "Best Guess",
		BreedUnsureCap:    0.5,
		CareSentinel:      "Not Clearly Visible",
		BlockedReason:     "Please upload a clear photo of your pet.",
		DefaultConfidence: 0.5,
	}
}

func (p Policy) clone() Policy {
	out := p
	out.Emotions = append([]string(nil), p.Emotions...)
	out.HedgeWords = append([]string(nil), p.HedgeWords...)
	out.EmotionRules = make([]Rule, len(p.EmotionRules))
	for i, r := range p.EmotionRules {
		out.EmotionRules[i] = Rule{Keywords: append([]string(nil), r.Keywords...), Label: r.Label}
	}
	return out
}
