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

const answerRetryDelay = 5 * time.Second

// AnswerStore persists the candidate's coding answer.
type AnswerStore interface {
	UpdateAnswer(ctx context.Context, id uuid.UUID, answer string) error
}

// AnswerWorker consumes persist_answers_queue and writes answers to PostgreSQL.
type AnswerWorker struct {
	store      AnswerStore
	queue      queueClient
	log        zerolog.Logger
	retryDelay time.Duration
}

// NewAnswerWorker creates a new AnswerWorker.
func NewAnswerWorker(store AnswerStore, queue queueClient, log zerolog.Logger) *AnswerWorker {
	return &AnswerWorker{
		store:      store,
		queue:      queue,
		log:        log.With().Str("component", "answer_worker").Logger(),
		retryDelay: answerRetryDelay,
	}
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *AnswerWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			// Drain remaining items before exit.
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *AnswerWorker) processNext(ctx context.Context) {
	// BLPop blocks until an item is available or the poll timeout expires.
	result, err := w.queue.BLPop(ctx, pollTimeout, config.WorkerKey.PersistAnswersQueue).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}

	if len(result) < 2 {
		return
	}

	rec, id, ok := w.decode(result[1])
	if !ok {
		return
	}

	if err := w.store.UpdateAnswer(ctx, id, rec.Answer); err != nil {
		w.log.Error().Err(err).
			Str("session_id", rec.SessionID).
			Dur("retry_in", w.retryDelay).
			Msg("Persist error, retrying")
		// Push back to queue for retry.
		w.queue.RPush(context.Background(), config.WorkerKey.PersistAnswersQueue, result[1])

		select {
		case <-ctx.Done():
		case <-time.After(w.retryDelay):
		}
	}
}

func (w *AnswerWorker) decode(raw string) (model.AnswerRecord, uuid.UUID, bool) {
	var rec model.AnswerRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		w.log.Error().Err(err).Msg("Unmarshal error")
		return rec, uuid.Nil, false
	}
	id, err := uuid.Parse(rec.SessionID)
	if err != nil {
		w.log.Error().Err(err).Str("session_id", rec.SessionID).Msg("Invalid session id in payload")
		return rec, uuid.Nil, false
	}
	return rec, id, true
}

// drain processes all remaining items in the queue before shutdown.
func (w *AnswerWorker) drain(ctx context.Context) {
	drained := 0
	for {
		raw, err := w.queue.LPop(ctx, config.WorkerKey.PersistAnswersQueue).Result()
		if err != nil {
			break
		}

		rec, id, ok := w.decode(raw)
		if !ok {
			continue
		}

		if err := w.store.UpdateAnswer(ctx, id, rec.Answer); err != nil {
			w.log.Error().Err(err).Msg("Drain persist error")
			w.queue.RPush(ctx, config.WorkerKey.PersistAnswersQueue, raw)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}
