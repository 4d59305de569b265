package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/mockview-backend/internal/model"
)

// InterviewSessionRepository handles interview session data access.
type InterviewSessionRepository struct {
	pool *pgxpool.Pool
}

// NewInterviewSessionRepository creates a new InterviewSessionRepository.
func NewInterviewSessionRepository(pool *pgxpool.Pool) *InterviewSessionRepository {
	return &InterviewSessionRepository{pool: pool}
}

// Create inserts a new session and fills in its server-assigned fields.
func (r *InterviewSessionRepository) Create(ctx context.Context, s *model.InterviewSession) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO interview_sessions (id, candidate_name, status)
		 VALUES ($1, $2, $3)
		 RETURNING created_at`,
		s.ID, s.CandidateName, s.Status,
	).Scan(&s.CreatedAt)
}

// GetByID retrieves a session by its ID. Returns pgx.ErrNoRows when absent.
func (r *InterviewSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.InterviewSession, error) {
	s := &model.InterviewSession{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, candidate_name, status, coding_answer, score, feedback, created_at, started_at, finished_at
		 FROM interview_sessions
		 WHERE id = $1`, id,
	).Scan(&s.ID, &s.CandidateName, &s.Status, &s.CodingAnswer, &s.Score, &s.Feedback, &s.CreatedAt, &s.StartedAt, &s.FinishedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// MarkStarted moves a pending session to IN_PROGRESS. Later calls are no-ops.
func (r *InterviewSessionRepository) MarkStarted(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE interview_sessions
		 SET status = $1, started_at = $2
		 WHERE id = $3 AND status = $4`,
		model.SessionStatusInProgress, at, id, model.SessionStatusPending)
	return err
}

// UpdateAnswer overwrites the stored coding answer. Completed sessions keep
// the answer they were scored with.
func (r *InterviewSessionRepository) UpdateAnswer(ctx context.Context, id uuid.UUID, answer string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE interview_sessions
		 SET coding_answer = $1
		 WHERE id = $2 AND status <> $3`,
		answer, id, model.SessionStatusCompleted)
	return err
}

// CompleteBatch stores many results in one round trip using UNNEST.
func (r *InterviewSessionRepository) CompleteBatch(ctx context.Context, batch []model.ResultRecord) error {
	n := len(batch)
	ids := make([]uuid.UUID, 0, n)
	scores := make([]int32, 0, n)
	feedbacks := make([]string, 0, n)
	answers := make([]string, 0, n)
	finishedAts := make([]time.Time, 0, n)

	for _, rec := range batch {
		id, err := uuid.Parse(rec.SessionID)
		if err != nil {
			return fmt.Errorf("parse session id %q: %w", rec.SessionID, err)
		}
		ids = append(ids, id)
		scores = append(scores, int32(rec.Score))
		feedbacks = append(feedbacks, rec.Feedback)
		answers = append(answers, rec.Answer)
		finishedAts = append(finishedAts, rec.FinishedAt)
	}

	query := `
		UPDATE interview_sessions AS s
		SET status = $6,
		    score = t.score,
		    feedback = t.feedback,
		    coding_answer = t.answer,
		    finished_at = t.finished_at
		FROM (
			SELECT
				u.id,
				u.score,
				u.feedback,
				u.answer,
				u.finished_at
			FROM UNNEST(
				$1::uuid[],
				$2::int[],
				$3::text[],
				$4::text[],
				$5::timestamptz[]
			) AS u (id, score, feedback, answer, finished_at)
		) AS t
		WHERE s.id = t.id
	`

	_, err := r.pool.Exec(ctx, query, ids, scores, feedbacks, answers, finishedAts, model.SessionStatusCompleted)
	return err
}

// Complete stores a single result.
func (r *InterviewSessionRepository) Complete(ctx context.Context, rec model.ResultRecord) error {
	id, err := uuid.Parse(rec.SessionID)
	if err != nil {
		return fmt.Errorf("parse session id %q: %w", rec.SessionID, err)
	}

	_, err = r.pool.Exec(ctx,
		`UPDATE interview_sessions
		 SET status = $1,
		     score = $2,
		     feedback = $3,
		     coding_answer = $4,
		     finished_at = $5
		 WHERE id = $6`,
		model.SessionStatusCompleted, rec.Score, rec.Feedback, rec.Answer, rec.FinishedAt, id,
	)
	return err
}
