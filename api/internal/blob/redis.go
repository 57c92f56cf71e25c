package blob

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// redisIndexKey is a sorted set of every stored key, all with score 0 so
// ZRANGEBYLEX can answer prefix listings.
const redisIndexKey = "blob:index"

// RedisStore keeps objects as plain string values. Meant for development
// and small deployments; there is no eviction.
type RedisStore struct {
	rdb  redis.Cmdable
	base string
}

func NewRedisStore(rdb redis.Cmdable, publicBase string) *RedisStore {
	return &RedisStore{rdb: rdb, base: publicBase}
}

func redisObjectKey(key string) string { return "blob:obj:" + key }

func (r *RedisStore) Put(ctx context.Context, key string, data []byte, _ string) (string, error) {
	if !ValidKey(key) {
		return "", fmt.Errorf("blob: invalid key %q", key)
	}
	if err := r.rdb.Set(ctx, redisObjectKey(key), data, 0).Err(); err != nil {
		return "", fmt.Errorf("redis set %s: %w", key, err)
	}
	if err := r.rdb.ZAdd(ctx, redisIndexKey, &redis.Z{Score: 0, Member: key}).Err(); err != nil {
		return "", fmt.Errorf("redis index %s: %w", key, err)
	}
	return PublicURL(r.base, key), nil
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.rdb.Get(ctx, redisObjectKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return b, nil
}

func (r *RedisStore) List(ctx context.Context, prefix string) ([]Object, error) {
	keys, err := r.rdb.ZRangeByLex(ctx, redisIndexKey, &redis.ZRangeBy{
		Min: "[" + prefix,
		Max: "(" + prefix + "\xff",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list %s: %w", prefix, err)
	}
	out := make([]Object, 0, len(keys))
	for _, k := range keys {
		out = append(out, Object{Key: k})
	}
	return out, nil
}

func (r *RedisStore) URL(key string) string { return PublicURL(r.base, key) }
