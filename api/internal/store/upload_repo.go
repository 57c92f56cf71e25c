package store

import (
	"context"
	"database/sql"
	"time"
)

var ErrNotFound = sql.ErrNoRows

// UploadRow points from an uploader to the blobs of one analysis.
type UploadRow struct {
	ID        string    `json:"id"`
	EmailHash string    `json:"emailHash"`
	ImagePath string    `json:"imagePath"`
	MetaPath  string    `json:"metaPath"`
	CreatedAt time.Time `json:"createdAt"`
}

// UploadIndex finds a user's analyses without listing the whole bucket.
type UploadIndex interface {
	Insert(ctx context.Context, row UploadRow) error
	ListByEmailHash(ctx context.Context, emailHash string, limit int) ([]UploadRow, error)
}

type UploadRepo struct{ DB *sql.DB }

func NewUploadRepo(db *sql.DB) *UploadRepo { return &UploadRepo{DB: db} }

// Insert is idempotent on id.
func (r *UploadRepo) Insert(ctx context.Context, row UploadRow) error {
	const q = `
insert into uploads (id, email_hash, image_path, meta_path, created_at)
values ($1,$2,$3,$4,$5)
on conflict (id) do nothing`
	_, err := r.DB.ExecContext(ctx, q, row.ID, row.EmailHash, row.ImagePath, row.MetaPath, row.CreatedAt)
	return err
}

// ListByEmailHash returns newest first. limit <= 0 means no limit.
func (r *UploadRepo) ListByEmailHash(ctx context.Context, emailHash string, limit int) ([]UploadRow, error) {
	q := `
select id, email_hash, image_path, meta_path, created_at
from uploads
where email_hash = $1
order by created_at desc`
	args := []any{emailHash}
	if limit > 0 {
		q += "\nlimit $2"
		args = append(args, limit)
	}
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UploadRow
	for rows.Next() {
		var u UploadRow
		if err := rows.Scan(&u.ID, &u.EmailHash, &u.ImagePath, &u.MetaPath, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
