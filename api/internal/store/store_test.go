package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-mood/api/internal/blob"
)

func TestUploadRepo_Insert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("insert into uploads")).
		WithArgs("1-a", "hash", "uploads/1-a.jpg", "uploads/meta/1-a.json", created).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewUploadRepo(db)
	err = repo.Insert(context.Background(), UploadRow{
		ID: "1-a", EmailHash: "hash", ImagePath: "uploads/1-a.jpg", MetaPath: "uploads/meta/1-a.json", CreatedAt: created,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUploadRepo_ListByEmailHash(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	t1 := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	t0 := t1.Add(-time.Hour)
	rows := sqlmock.NewRows([]string{"id", "email_hash", "image_path", "meta_path", "created_at"}).
		AddRow("2", "hash", "uploads/2.jpg", "uploads/meta/2.json", t1).
		AddRow("1", "hash", "uploads/1.jpg", "uploads/meta/1.json", t0)
	mock.ExpectQuery(regexp.QuoteMeta("from uploads")).
		WithArgs("hash", 50).
		WillReturnRows(rows)

	got, err := NewUploadRepo(db).ListByEmailHash(context.Background(), "hash", 50)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].ID)
	assert.Equal(t, "uploads/meta/1.json", got[1].MetaPath)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUploadRepo_ListNoLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("from uploads")).
		WithArgs("hash").
		WillReturnError(errors.New("connection reset"))

	_, err = NewUploadRepo(db).ListByEmailHash(context.Background(), "hash", 0)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriberRepo_Upsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("insert into subscribers")).
		WithArgs("hash", "a@b.co", "curl/8").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewSubscriberRepo(db).Upsert(context.Background(), "a@b.co", "hash", "curl/8"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("create table if not exists uploads")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, EnsureSchema(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBlobIndex_InsertAndList(t *testing.T) {
	ctx := context.Background()
	mem := blob.NewMemoryStore("")
	idx := NewBlobIndex(mem)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, idx.Insert(ctx, UploadRow{
			ID: id, EmailHash: "h1", ImagePath: "uploads/" + id + ".jpg",
			MetaPath: "uploads/meta/" + id + ".json", CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, idx.Insert(ctx, UploadRow{ID: "z", EmailHash: "h2", CreatedAt: base}))
	_, err := mem.Put(ctx, "email-index/h1/broken.json", []byte("{not json"), "application/json")
	require.NoError(t, err)

	rows, err := idx.ListByEmailHash(ctx, "h1", 0)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{rows[0].ID, rows[1].ID, rows[2].ID})

	rows, err = idx.ListByEmailHash(ctx, "h1", 2)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestSafeDSNSummary(t *testing.T) {
	assert.Equal(t, "host=db port=5432 db=petmood user=pm", SafeDSNSummary("postgres://pm:secret@db:5432/petmood?sslmode=disable"))
	assert.Equal(t, "host=db db=petmood user=pm", SafeDSNSummary("postgres://pm:secret@db/petmood"))
	assert.NotContains(t, SafeDSNSummary("postgres://pm:secret@db:5432/petmood"), "secret")
}
