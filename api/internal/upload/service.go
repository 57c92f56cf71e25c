// Package upload runs one photo through the model, the normalizer and the
// blob store, and reads a user's past analyses back.
package upload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"pet-mood/api/internal/blob"
	"pet-mood/api/internal/inference"
	"pet-mood/api/internal/metrics"
	"pet-mood/api/internal/mood"
	"pet-mood/api/internal/session"
	"pet-mood/api/internal/shop"
	"pet-mood/api/internal/store"
	"pet-mood/api/internal/util"
)

var (
	ErrEmptyImage   = errors.New("upload: empty image")
	ErrTooLarge     = errors.New("upload: image too large")
	ErrNotImage     = errors.New("upload: not an image")
	ErrPartialWrite = errors.New("upload: only one of image and metadata was stored")
)

// RejectedError carries the user-facing reason the model gave for refusing
// the photo.
type RejectedError struct{ Reason string }

func (e *RejectedError) Error() string { return "upload: rejected: " + e.Reason }

// Identity is who uploaded: a web visitor by email or a Telegram chat.
type Identity struct {
	Email  string
	ChatID int64
}

// Hash keys the history index.
func (i Identity) Hash() string {
	if i.Email != "" {
		return session.EmailHash(i.Email)
	}
	return session.EmailHash("telegram:" + strconv.FormatInt(i.ChatID, 10))
}

// Record is the metadata blob written next to each image. It is never
// rewritten.
type Record struct {
	ID        string      `json:"id"`
	Email     string      `json:"email,omitempty"`
	ChatID    int64       `json:"chatId,omitempty"`
	EmailHash string      `json:"emailHash"`
	ImagePath string      `json:"imagePath"`
	MetaPath  string      `json:"metaPath"`
	ImageURL  string      `json:"imageUrl"`
	Size      int         `json:"size"`
	Mime      string      `json:"mime"`
	Engine    string      `json:"engine"`
	Model     string      `json:"model"`
	Result    mood.Result `json:"result"`
	CreatedAt time.Time   `json:"createdAt"`
}

type Analysis struct {
	Record   Record
	CTALinks []shop.Link
}

type Service struct {
	Engine     inference.Engine
	Normalizer *mood.Normalizer
	Blobs      blob.Store
	// Index is optional; without it History is always empty.
	Index    store.UploadIndex
	Links    *shop.Linker
	Log      *logrus.Logger
	Timeout  time.Duration
	MaxBytes int64
	Now      func() time.Time
}

func ImageKey(id, mime string) string { return "uploads/" + id + util.ExtFor(mime) }

func MetaKey(id string) string { return "uploads/meta/" + id + ".json" }

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Analyze classifies image and stores it with its metadata. A refusal by
// the model comes back as *RejectedError; text that is not JSON as
// mood.ErrUnparseable.
func (s *Service) Analyze(ctx context.Context, who Identity, image []byte, declaredMime string) (*Analysis, error) {
	if len(image) == 0 {
		return nil, ErrEmptyImage
	}
	if s.MaxBytes > 0 && int64(len(image)) > s.MaxBytes {
		return nil, ErrTooLarge
	}
	mime := util.PickMIME(declaredMime, image)
	if !util.IsImageMIME(mime) {
		return nil, ErrNotImage
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	log := s.Log.WithFields(logrus.Fields{"engine": s.Engine.Name(), "model": s.Engine.GetModel(), "size": len(image)})

	text, err := s.Engine.Analyze(ctx, image, mime)
	if err != nil {
		metrics.AnalysesTotal.WithLabelValues("inference_error").Inc()
		log.WithError(err).Error("inference failed")
		return nil, fmt.Errorf("analyze: %w", err)
	}

	out, err := s.Normalizer.NormalizeText(text)
	if err != nil {
		metrics.AnalysesTotal.WithLabelValues("unparseable").Inc()
		log.WithField("snippet", util.ClampRunes(text, 200)).Warn("model output is not JSON")
		return nil, err
	}
	if out.Rejected {
		metrics.AnalysesTotal.WithLabelValues("rejected").Inc()
		log.WithField("reason", out.Reason).Info("photo rejected")
		return nil, &RejectedError{Reason: out.Reason}
	}

	now := s.now()
	id := session.NewID(now)
	rec := Record{
		ID:        id,
		Email:     who.Email,
		ChatID:    who.ChatID,
		EmailHash: who.Hash(),
		ImagePath: ImageKey(id, mime),
		MetaPath:  MetaKey(id),
		Size:      len(image),
		Mime:      mime,
		Engine:    s.Engine.Name(),
		Model:     s.Engine.GetModel(),
		Result:    out.Result,
		CreatedAt: now,
	}
	rec.ImageURL = s.Blobs.URL(rec.ImagePath)

	if err := s.persist(ctx, rec, image, log); err != nil {
		metrics.AnalysesTotal.WithLabelValues("storage_error").Inc()
		return nil, err
	}

	if s.Index != nil {
		row := store.UploadRow{ID: id, EmailHash: rec.EmailHash, ImagePath: rec.ImagePath, MetaPath: rec.MetaPath, CreatedAt: now}
		if err := s.Index.Insert(ctx, row); err != nil {
			log.WithError(err).WithField("upload_id", id).Error("index insert failed")
		}
	}

	metrics.AnalysesTotal.WithLabelValues("ok").Inc()
	log.WithFields(logrus.Fields{"upload_id": id, "emotion": rec.Result.Emotion.Label}).Info("analysis stored")

	a := &Analysis{Record: rec}
	if s.Links != nil {
		a.CTALinks = s.Links.CTALinks(rec.Result.ToyIdeas, rec.Result.RecommendedTreat)
	}
	return a, nil
}

// persist writes image and metadata concurrently. Neither write is undone
// when the other fails.
func (s *Service) persist(ctx context.Context, rec Record, image []byte, log *logrus.Entry) error {
	meta, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	var g errgroup.Group
	var imgErr, metaErr error
	g.Go(func() error {
		_, imgErr = s.Blobs.Put(ctx, rec.ImagePath, image, rec.Mime)
		return imgErr
	})
	g.Go(func() error {
		_, metaErr = s.Blobs.Put(ctx, rec.MetaPath, meta, "application/json")
		return metaErr
	})
	_ = g.Wait()

	switch {
	case imgErr == nil && metaErr == nil:
		return nil
	case imgErr != nil && metaErr != nil:
		log.WithError(errors.Join(imgErr, metaErr)).Error("storing upload failed")
		return fmt.Errorf("store upload: %w", errors.Join(imgErr, metaErr))
	}

	failed := errors.Join(imgErr, metaErr)
	metrics.PartialWritesTotal.Inc()
	log.WithError(failed).WithFields(logrus.Fields{
		"upload_id":    rec.ID,
		"image_key":    rec.ImagePath,
		"image_stored": imgErr == nil,
		"meta_key":     rec.MetaPath,
		"meta_stored":  metaErr == nil,
	}).Error("inconsistent upload: one write failed")
	return fmt.Errorf("%w: %v", ErrPartialWrite, failed)
}

// History returns emailHash's analyses newest first. Entries whose
// metadata is missing or undecodable are skipped.
func (s *Service) History(ctx context.Context, emailHash string, limit int) ([]Record, error) {
	if s.Index == nil {
		return []Record{}, nil
	}
	rows, err := s.Index.ListByEmailHash(ctx, emailHash, limit)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		b, err := s.Blobs.Get(ctx, row.MetaPath)
		if err != nil {
			s.Log.WithError(err).WithField("meta_key", row.MetaPath).Debug("skipping upload")
			continue
		}
		var rec Record
		if err := json.Unmarshal(b, &rec); err != nil || rec.ID == "" {
			s.Log.WithField("meta_key", row.MetaPath).Debug("skipping malformed metadata")
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}
