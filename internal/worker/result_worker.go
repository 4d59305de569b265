package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/mockview-backend/internal/config"
	"github.com/stemsi/mockview-backend/internal/model"
)

const (
	ResultBatchSize    = 50
	ResultBatchTimeout = 2 * time.Second
)

// ResultStore persists computed interview results.
type ResultStore interface {
	CompleteBatch(ctx context.Context, batch []model.ResultRecord) error
	Complete(ctx context.Context, rec model.ResultRecord) error
}

// ResultWorker drains persist_results_queue into PostgreSQL in batches.
type ResultWorker struct {
	store        ResultStore
	queue        queueClient
	log          zerolog.Logger
	batchSize    int
	batchTimeout time.Duration
}

func NewResultWorker(store ResultStore, queue queueClient, log zerolog.Logger) *ResultWorker {
	return &ResultWorker{
		store:        store,
		queue:        queue,
		log:          log.With().Str("component", "result_worker").Logger(),
		batchSize:    ResultBatchSize,
		batchTimeout: ResultBatchTimeout,
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

// Start runs until ctx is cancelled, then flushes what it holds. Call in a goroutine.
func (w *ResultWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ResultWorker started")

	batch := make([]model.ResultRecord, 0, w.batchSize)
	lastFlush := time.Now()

	for {
		// Should flush?
		if len(batch) > 0 &&
			(len(batch) >= w.batchSize || time.Since(lastFlush) >= w.batchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", len(batch)).Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.queue.BLPop(ctx, pollTimeout, config.WorkerKey.PersistResultsQueue).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			rec, ok := w.decode(item[1])
			if !ok {
				continue
			}
			batch = append(batch, rec)
		}
	}
}

// decode parses a queued record. Malformed records are dropped, requeueing
// them would only fail again.
func (w *ResultWorker) decode(raw string) (model.ResultRecord, bool) {
	var rec model.ResultRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		w.log.Error().Err(err).Msg("Invalid JSON payload")
		return rec, false
	}
	if _, err := uuid.Parse(rec.SessionID); err != nil {
		w.log.Error().Err(err).Str("session_id", rec.SessionID).Msg("Invalid session id in payload")
		return rec, false
	}
	return rec, true
}

// ----------------------------------------------------------------
// Batch update with per-row fallback
// ----------------------------------------------------------------

func (w *ResultWorker) flushSafe(ctx context.Context, batch []model.ResultRecord) {
	if len(batch) == 0 {
		return
	}

	err := w.store.CompleteBatch(ctx, batch)
	if err == nil {
		w.log.Debug().Int("count", len(batch)).Msg("Results persisted")
		return
	}

	w.log.Warn().Err(err).Msg("bulk result update failed, using fallback")

	for _, rec := range batch {
		if err := w.store.Complete(ctx, rec); err != nil {
			w.log.Error().Err(err).Str("session_id", rec.SessionID).Msg("Complete failed, requeueing")
			raw, _ := json.Marshal(rec)
			if err := w.queue.RPush(context.Background(), config.WorkerKey.PersistResultsQueue, raw).Err(); err != nil {
				w.log.Error().Err(err).Str("session_id", rec.SessionID).Msg("Requeue failed, result lost")
			}
		}
	}
}
