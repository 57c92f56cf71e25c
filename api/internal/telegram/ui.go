package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"pet-mood/api/internal/shop"
	"pet-mood/api/internal/upload"
)

// CTAKeyboard renders shopping links as URL buttons, one per row.
func CTAKeyboard(links []shop.Link) *tgbotapi.InlineKeyboardMarkup {
	if len(links) == 0 {
		return nil
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(links))
	for _, l := range links {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL("🛒 "+l.Label, l.URL)))
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}

func percent(f float64) string { return fmt.Sprintf("%d%%", int(f*100+0.5)) }

// FormatReading is the Markdown reply for one analysis.
func FormatReading(rec upload.Record) string {
	res := rec.Result
	var b strings.Builder
	fmt.Fprintf(&b, "*Mood:* %s (%s)\n", esc(res.Emotion.Label), percent(res.Emotion.Confidence))
	fmt.Fprintf(&b, "*Breed guess:* %s (%s)\n", esc(res.BreedGuess.Label), percent(res.BreedGuess.Confidence))
	if s := strings.TrimSpace(res.ActivitySuggestion); s != "" {
		fmt.Fprintf(&b, "*Try:* %s\n", esc(s))
	}
	if len(res.ToyIdeas) > 0 {
		b.WriteString("\n*Toy ideas*\n")
		for _, t := range res.ToyIdeas {
			fmt.Fprintf(&b, "• %s\n", esc(t))
		}
	}
	if s := strings.TrimSpace(res.RecommendedTreat); s != "" {
		fmt.Fprintf(&b, "\n*Treat:* %s\n", esc(s))
	}
	b.WriteString("\n*Care*\n")
	fmt.Fprintf(&b, "Teeth: %s\nPaws: %s\nEyes: %s", esc(res.Care.Teeth), esc(res.Care.Paws), esc(res.Care.Eyes))
	return b.String()
}

func FormatHistory(recs []upload.Record) string {
	if len(recs) == 0 {
		return "No readings yet. Send a photo to get started."
	}
	var b strings.Builder
	b.WriteString("*Your recent readings*\n")
	for _, r := range recs {
		fmt.Fprintf(&b, "%s: %s, %s\n", r.CreatedAt.Format("2006-01-02"), esc(r.Result.Emotion.Label), esc(r.Result.BreedGuess.Label))
	}
	return strings.TrimRight(b.String(), "\n")
}

// esc escapes legacy Markdown control characters.
func esc(s string) string {
	s = strings.ReplaceAll(s, "`", "'")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "[", "\\[")
	return s
}
