package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"pet-mood/api/internal/upload"
)

const analyzeBudget = 2 * time.Minute

var errFileTooLarge = errors.New("telegram: file too large")

func isImageDocument(d *tgbotapi.Document) bool {
	return strings.HasPrefix(strings.ToLower(d.MimeType), "image/")
}

func (r *Router) acceptPhoto(cid int64, fileID, mime string) {
	if !claimChat(cid) {
		r.send(cid, "Still looking at your last photo, one moment…")
		return
	}
	defer releaseChat(cid)

	log := r.Log.WithFields(logrus.Fields{"chat_id": cid, "file_id": fileID})
	r.send(cid, "Looking at your pet… 🐾")

	ctx, cancel := context.WithTimeout(context.Background(), analyzeBudget)
	defer cancel()

	file, err := r.Bot.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		log.WithError(err).Error("get file failed")
		r.send(cid, "Couldn't fetch that photo from Telegram. Please try again.")
		return
	}
	dl := r.Download
	if dl == nil {
		dl = download
	}
	img, err := dl(ctx, r.fileURL(file.FilePath), r.MaxBytes)
	if errors.Is(err, errFileTooLarge) {
		r.send(cid, "That photo is too large. Please send a smaller one.")
		return
	}
	if err != nil {
		log.WithError(err).Error("download failed")
		r.send(cid, "Couldn't fetch that photo from Telegram. Please try again.")
		return
	}

	a, err := r.Uploads.Analyze(ctx, upload.Identity{ChatID: cid}, img, mime)
	if err != nil {
		r.send(cid, replyForError(err))
		var rej *upload.RejectedError
		if !errors.As(err, &rej) {
			log.WithError(err).Error("analyze failed")
		}
		return
	}
	kb := CTAKeyboard(a.CTALinks)
	r.sendMarkdown(cid, FormatReading(a.Record), kb)
}

func replyForError(err error) string {
	var rej *upload.RejectedError
	switch {
	case errors.As(err, &rej):
		return rej.Reason
	case errors.Is(err, upload.ErrTooLarge):
		return "That photo is too large. Please send a smaller one."
	case errors.Is(err, upload.ErrNotImage), errors.Is(err, upload.ErrEmptyImage):
		return "That doesn't look like a photo. Please send a JPEG or PNG."
	default:
		return "Sorry, I couldn't read that photo. Please try again."
	}
}

func download(ctx context.Context, url string, max int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(b))
	}
	if max <= 0 {
		return io.ReadAll(resp.Body)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > max {
		return nil, errFileTooLarge
	}
	return b, nil
}

func httpClient() *http.Client {
	return &http.Client{Timeout: 60 * time.Second}
}
