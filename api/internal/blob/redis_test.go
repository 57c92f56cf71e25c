package blob

import (
	"context"
	"errors"
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore_Put(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	s := NewRedisStore(rdb, "https://cdn.example.com")

	data := []byte(`{"id":"1"}`)
	mock.ExpectSet("blob:obj:uploads/meta/1.json", data, 0).SetVal("OK")
	mock.ExpectZAdd(redisIndexKey, &redis.Z{Score: 0, Member: "uploads/meta/1.json"}).SetVal(1)

	u, err := s.Put(context.Background(), "uploads/meta/1.json", data, "application/json")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/uploads/meta/1.json", u)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_PutError(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	s := NewRedisStore(rdb, "")

	mock.ExpectSet("blob:obj:uploads/1.jpg", []byte("x"), 0).SetErr(errors.New("READONLY"))

	_, err := s.Put(context.Background(), "uploads/1.jpg", []byte("x"), "image/jpeg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "READONLY")
}

func TestRedisStore_Get(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	s := NewRedisStore(rdb, "")

	mock.ExpectGet("blob:obj:uploads/1.jpg").SetVal("jpeg-bytes")
	mock.ExpectGet("blob:obj:uploads/2.jpg").RedisNil()

	got, err := s.Get(context.Background(), "uploads/1.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), got)

	_, err = s.Get(context.Background(), "uploads/2.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_List(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	s := NewRedisStore(rdb, "")

	mock.ExpectZRangeByLex(redisIndexKey, &redis.ZRangeBy{
		Min: "[email-index/abc/",
		Max: "(email-index/abc/\xff",
	}).SetVal([]string{"email-index/abc/1.json", "email-index/abc/2.json"})

	objs, err := s.List(context.Background(), "email-index/abc/")
	require.NoError(t, err)
	require.Len(t, objs, 2)
	assert.Equal(t, "email-index/abc/2.json", objs[1].Key)
	assert.NoError(t, mock.ExpectationsWereMet())
}
