package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"pet-mood/api/internal/blob"
)

// BlobIndex keeps one small JSON pointer per upload under
// email-index/<hash>/<id>.json. Used when no database is configured.
type BlobIndex struct {
	Blobs blob.Store
}

func NewBlobIndex(b blob.Store) *BlobIndex { return &BlobIndex{Blobs: b} }

func indexPrefix(emailHash string) string { return "email-index/" + emailHash + "/" }

func (x *BlobIndex) Insert(ctx context.Context, row UploadRow) error {
	js, err := json.Marshal(row)
	if err != nil {
		return err
	}
	if _, err := x.Blobs.Put(ctx, indexPrefix(row.EmailHash)+row.ID+".json", js, "application/json"); err != nil {
		return fmt.Errorf("index put: %w", err)
	}
	return nil
}

// ListByEmailHash skips pointers that cannot be read or decoded.
func (x *BlobIndex) ListByEmailHash(ctx context.Context, emailHash string, limit int) ([]UploadRow, error) {
	objs, err := x.Blobs.List(ctx, indexPrefix(emailHash))
	if err != nil {
		return nil, err
	}
	out := make([]UploadRow, 0, len(objs))
	for _, o := range objs {
		b, err := x.Blobs.Get(ctx, o.Key)
		if err != nil {
			continue
		}
		var row UploadRow
		if err := json.Unmarshal(b, &row); err != nil || row.ID == "" {
			continue
		}
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
