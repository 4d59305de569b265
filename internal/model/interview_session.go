package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/mockview-backend/internal/interview"
)

// SessionStatus enumerates interview session lifecycle states.
type SessionStatus string

const (
	SessionStatusPending    SessionStatus = "PENDING"
	SessionStatusInProgress SessionStatus = "IN_PROGRESS"
	SessionStatusCompleted  SessionStatus = "COMPLETED"
)

// InterviewSession is the persisted record of one mock interview.
type InterviewSession struct {
	ID            uuid.UUID     `json:"id"`
	CandidateName string        `json:"candidate_name"`
	Status        SessionStatus `json:"status"`
	CodingAnswer  string        `json:"coding_answer"`
	Score         *int          `json:"score,omitempty"`
	Feedback      *string       `json:"feedback,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	StartedAt     *time.Time    `json:"started_at,omitempty"`
	FinishedAt    *time.Time    `json:"finished_at,omitempty"`
}

// Snapshot is the cached live state of a session.
type Snapshot struct {
	SessionID uuid.UUID       `json:"session_id"`
	State     interview.State `json:"state"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// SessionView is what clients receive: the raw state plus the rendered regions.
type SessionView struct {
	SessionID uuid.UUID       `json:"session_id"`
	State     interview.State `json:"state"`
	View      interview.View  `json:"view"`
}

// NewSessionView renders s for the given session.
func NewSessionView(id uuid.UUID, s interview.State) *SessionView {
	return &SessionView{SessionID: id, State: s, View: interview.Render(s)}
}

// AnswerRecord is queued for persistence whenever the coding answer changes.
type AnswerRecord struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
}

// ResultRecord is queued for persistence once the result is computed.
type ResultRecord struct {
	SessionID  string    `json:"session_id"`
	Score      int       `json:"score"`
	Feedback   string    `json:"feedback"`
	Answer     string    `json:"answer"`
	FinishedAt time.Time `json:"finished_at"`
}

// CreateSessionRequest is the payload for opening a new interview.
type CreateSessionRequest struct {
	CandidateName string `json:"candidate_name" binding:"required,notblank,max=100"`
}

// SetStartedRequest toggles the countdown.
type SetStartedRequest struct {
	Started *bool `json:"started" binding:"required"`
}

// SubmitAnswerRequest replaces the candidate's coding answer.
type SubmitAnswerRequest struct {
	Answer string `json:"answer" binding:"max=20000"`
}
