package worker

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// queueClient is the part of *redis.Client the workers use.
type queueClient interface {
	BLPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
	LPop(ctx context.Context, key string) *redis.StringCmd
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

const pollTimeout = 1 * time.Second
