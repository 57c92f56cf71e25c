package blob

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 implements the single-part calls; multipart calls panic through
// the nil embedded interface.
type fakeS3 struct {
	S3API
	objects map[string][]byte
	types   map[string]string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = b
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	b, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(b))}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for k, v := range f.objects {
		if len(k) >= len(aws.ToString(in.Prefix)) && k[:len(aws.ToString(in.Prefix))] == aws.ToString(in.Prefix) {
			out.Contents = append(out.Contents, types.Object{
				Key:          aws.String(k),
				Size:         aws.Int64(int64(len(v))),
				LastModified: aws.Time(now),
			})
		}
	}
	return out, nil
}

func TestS3Store_PutGet(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	s := NewS3Store(fake, "pets", "https://pets.s3.amazonaws.com")

	u, err := s.Put(ctx, "uploads/1.jpg", []byte("jpeg"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "https://pets.s3.amazonaws.com/uploads/1.jpg", u)
	assert.Equal(t, "image/jpeg", fake.types["uploads/1.jpg"])

	got, err := s.Get(ctx, "uploads/1.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg"), got)

	_, err = s.Get(ctx, "uploads/2.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestS3Store_List(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	s := NewS3Store(fake, "pets", "")

	_, err := s.Put(ctx, "email-index/h/1.json", []byte("{}"), "application/json")
	require.NoError(t, err)
	_, err = s.Put(ctx, "uploads/1.jpg", []byte("jpeg"), "image/jpeg")
	require.NoError(t, err)

	objs, err := s.List(ctx, "email-index/h/")
	require.NoError(t, err)
	require.Len(t, objs, 1)
	assert.Equal(t, "email-index/h/1.json", objs[0].Key)
	assert.Equal(t, int64(2), objs[0].Size)
	assert.False(t, objs[0].LastModified.IsZero())
}

func TestS3Store_InvalidKey(t *testing.T) {
	s := NewS3Store(newFakeS3(), "pets", "")
	_, err := s.Put(context.Background(), "../escape", []byte("x"), "text/plain")
	assert.Error(t, err)
}
