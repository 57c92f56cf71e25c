package store

import (
	"context"
	"database/sql"
)

type SubscriberRepo struct{ DB *sql.DB }

func NewSubscriberRepo(db *sql.DB) *SubscriberRepo { return &SubscriberRepo{DB: db} }

// Upsert records an email capture. A repeat capture bumps last_seen_at and
// keeps the first user agent.
func (r *SubscriberRepo) Upsert(ctx context.Context, email, emailHash, userAgent string) error {
	const q = `
insert into subscribers (email_hash, email, user_agent)
values ($1,$2,$3)
on conflict (email_hash) do update
set email = excluded.email,
    last_seen_at = now()`
	_, err := r.DB.ExecContext(ctx, q, emailHash, email, userAgent)
	return err
}
