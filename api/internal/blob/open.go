package blob

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

type Options struct {
	Backend    string // s3 | redis | memory
	PublicBase string
	S3         S3Config
	Redis      *redis.Options
}

// Open builds the configured backend, wrapped with write metrics.
func Open(ctx context.Context, o Options) (Store, error) {
	switch o.Backend {
	case "s3":
		return WithMetrics(NewS3Store(Connect(o.S3), o.S3.Bucket, o.PublicBase), "s3"), nil
	case "redis":
		if o.Redis == nil {
			return nil, fmt.Errorf("blob: redis options are required")
		}
		rdb := redis.NewClient(o.Redis)
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		return WithMetrics(NewRedisStore(rdb, o.PublicBase), "redis"), nil
	case "memory", "":
		return WithMetrics(NewMemoryStore(o.PublicBase), "memory"), nil
	default:
		return nil, fmt.Errorf("blob: unknown backend %q", o.Backend)
	}
}
