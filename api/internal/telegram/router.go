package telegram

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"pet-mood/api/internal/upload"
)

// Bot is the part of *tgbotapi.BotAPI the router uses.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFile(cfg tgbotapi.FileConfig) (tgbotapi.File, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, who upload.Identity, image []byte, mime string) (*upload.Analysis, error)
	History(ctx context.Context, emailHash string, limit int) ([]upload.Record, error)
}

type Router struct {
	Bot     Bot
	Token   string
	Uploads Analyzer
	Log     *logrus.Logger

	// MaxBytes caps downloaded photos; 0 means no cap.
	MaxBytes int64
	// Download fetches a Telegram file URL. Defaults to an HTTP GET.
	Download func(ctx context.Context, url string, max int64) ([]byte, error)
}

const historyLimit = 5

func (r *Router) HandleCommand(upd tgbotapi.Update) {
	cid := upd.Message.Chat.ID
	switch upd.Message.Command() {
	case "start", "help":
		r.send(cid, "Send me a photo of your pet and I'll read its mood, guess the breed and suggest a toy and a treat.\nCommands: /history, /health")
	case "health":
		r.send(cid, "✅ OK")
	case "history":
		r.sendHistory(cid)
	default:
		r.send(cid, "Unknown command. Try /start")
	}
}

func (r *Router) HandleUpdate(upd tgbotapi.Update) {
	if upd.Message == nil {
		return
	}
	msg := upd.Message
	if msg.IsCommand() {
		r.HandleCommand(upd)
		return
	}

	switch {
	case len(msg.Photo) > 0:
		r.acceptPhoto(msg.Chat.ID, msg.Photo[len(msg.Photo)-1].FileID, "")
	case msg.Document != nil && isImageDocument(msg.Document):
		r.acceptPhoto(msg.Chat.ID, msg.Document.FileID, msg.Document.MimeType)
	case msg.Text != "":
		r.send(msg.Chat.ID, "Please send a photo of your pet.")
	}
}

func (r *Router) sendHistory(cid int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	recs, err := r.Uploads.History(ctx, upload.Identity{ChatID: cid}.Hash(), historyLimit)
	if err != nil {
		r.Log.WithError(err).WithField("chat_id", cid).Error("history failed")
		r.send(cid, "Couldn't load your history right now.")
		return
	}
	r.sendMarkdown(cid, FormatHistory(recs), nil)
}

func (r *Router) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := r.Bot.Send(msg); err != nil {
		r.Log.WithError(err).WithField("chat_id", chatID).Warn("telegram send failed")
	}
}

func (r *Router) sendMarkdown(chatID int64, text string, kb *tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if kb != nil {
		msg.ReplyMarkup = *kb
	}
	if _, err := r.Bot.Send(msg); err != nil {
		r.Log.WithError(err).WithField("chat_id", chatID).Warn("telegram send failed")
	}
}

func (r *Router) fileURL(path string) string {
	return fmt.Sprintf("https://api.telegram.org/file/bot%s/%s", r.Token, path)
}
