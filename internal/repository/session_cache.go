package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stemsi/mockview-backend/internal/config"
	"github.com/stemsi/mockview-backend/internal/model"
)

// ErrSnapshotNotFound is returned when no cached snapshot exists for a session.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SessionCache keeps live interview state in Redis and feeds the persistence queues.
type SessionCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSessionCache creates a SessionCache whose snapshots expire after ttl.
func NewSessionCache(rdb *redis.Client, ttl time.Duration) *SessionCache {
	return &SessionCache{rdb: rdb, ttl: ttl}
}

// SaveSnapshot stores the latest state, refreshing its TTL.
func (c *SessionCache) SaveSnapshot(ctx context.Context, snap model.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	key := config.CacheKey.InterviewSnapshotKey(snap.SessionID.String())
	return c.rdb.Set(ctx, key, raw, c.ttl).Err()
}

// LoadSnapshot returns the cached state or ErrSnapshotNotFound.
func (c *SessionCache) LoadSnapshot(ctx context.Context, id uuid.UUID) (*model.Snapshot, error) {
	raw, err := c.rdb.Get(ctx, config.CacheKey.InterviewSnapshotKey(id.String())).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	var snap model.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("invalid snapshot in cache: %w", err)
	}
	return &snap, nil
}

// PublishView broadcasts a rendered view to every stream subscribed to the session.
func (c *SessionCache) PublishView(ctx context.Context, id uuid.UUID, payload []byte) error {
	return c.rdb.Publish(ctx, config.CacheKey.InterviewViewChannel(id.String()), payload).Err()
}

// SubscribeViews subscribes to the session's view channel. The returned
// close func must be called to release the subscription.
func (c *SessionCache) SubscribeViews(ctx context.Context, id uuid.UUID) (<-chan *redis.Message, func() error, error) {
	pubsub := c.rdb.Subscribe(ctx, config.CacheKey.InterviewViewChannel(id.String()))

	// Wait for the subscription confirmation so a dead Redis fails fast.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe view channel: %w", err)
	}
	return pubsub.Channel(), pubsub.Close, nil
}

// EnqueueAnswer queues the coding answer for the answer worker.
func (c *SessionCache) EnqueueAnswer(ctx context.Context, rec model.AnswerRecord) error {
	return c.push(ctx, config.WorkerKey.PersistAnswersQueue, rec)
}

// EnqueueResult queues the computed result for the result worker.
func (c *SessionCache) EnqueueResult(ctx context.Context, rec model.ResultRecord) error {
	return c.push(ctx, config.WorkerKey.PersistResultsQueue, rec)
}

func (c *SessionCache) push(ctx context.Context, queue string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", queue, err)
	}
	return c.rdb.RPush(ctx, queue, payload).Err()
}
