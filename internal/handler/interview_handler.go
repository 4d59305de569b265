package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/mockview-backend/internal/interview"
	"github.com/stemsi/mockview-backend/internal/middleware"
	"github.com/stemsi/mockview-backend/internal/model"
	"github.com/stemsi/mockview-backend/internal/response"
	"github.com/stemsi/mockview-backend/internal/service"
	"github.com/stemsi/mockview-backend/internal/validator"
)

// InterviewAPI is the subset of service.InterviewService the transport layer uses.
type InterviewAPI interface {
	CreateSession(ctx context.Context, candidateName string) (*model.InterviewSession, error)
	SetStarted(ctx context.Context, id uuid.UUID, started bool) (*model.SessionView, error)
	SubmitAnswer(ctx context.Context, id uuid.UUID, answer string) (*model.SessionView, error)
	GetView(ctx context.Context, id uuid.UUID) (*model.SessionView, error)
	GetResult(ctx context.Context, id uuid.UUID) (*interview.Result, error)
}

// TokenIssuer issues session tokens.
type TokenIssuer interface {
	GenerateSessionToken(sessionID uuid.UUID) (string, error)
}

// InterviewHandler handles the interview session REST endpoints.
type InterviewHandler struct {
	interviews InterviewAPI
	tokens     TokenIssuer
	log        zerolog.Logger
}

// NewInterviewHandler creates a new InterviewHandler.
func NewInterviewHandler(interviews InterviewAPI, tokens TokenIssuer, log zerolog.Logger) *InterviewHandler {
	return &InterviewHandler{
		interviews: interviews,
		tokens:     tokens,
		log:        log.With().Str("component", "interview_handler").Logger(),
	}
}

// GetChallenge godoc
// GET /api/v1/challenge
// Returns the coding challenge shown in the coding panel.
func (h *InterviewHandler) GetChallenge(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"challenge": interview.TwoSum()})
}

// CreateSession godoc
// POST /api/v1/interviews
// Opens a new interview and returns it with a token scoped to it.
func (h *InterviewHandler) CreateSession(c *gin.Context) {
	var req model.CreateSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, err := h.interviews.CreateSession(c.Request.Context(), req.CandidateName)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create session")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	token, err := h.tokens.GenerateSessionToken(session.ID)
	if err != nil {
		h.log.Error().Err(err).Str("session_id", session.ID.String()).Msg("Failed to issue session token")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"session": session, "token": token})
}

// GetView godoc
// GET /api/v1/interviews/:id/view
func (h *InterviewHandler) GetView(c *gin.Context) {
	id, ok := middleware.GetSessionID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	view, err := h.interviews.GetView(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, view)
}

// SetStarted godoc
// PUT /api/v1/interviews/:id/started
// Mirrors the host page's "session started" flag onto the countdown.
func (h *InterviewHandler) SetStarted(c *gin.Context) {
	id, ok := middleware.GetSessionID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.SetStartedRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	view, err := h.interviews.SetStarted(c.Request.Context(), id, *req.Started)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, view)
}

// SubmitAnswer godoc
// PUT /api/v1/interviews/:id/answer
// Only accepted while the coding panel is open.
func (h *InterviewHandler) SubmitAnswer(c *gin.Context) {
	id, ok := middleware.GetSessionID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.SubmitAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	view, err := h.interviews.SubmitAnswer(c.Request.Context(), id, req.Answer)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, view)
}

// GetResult godoc
// GET /api/v1/interviews/:id/result
func (h *InterviewHandler) GetResult(c *gin.Context) {
	id, ok := middleware.GetSessionID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	result, err := h.interviews.GetResult(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result, "max_score": interview.MaxScore})
}

// fail maps service errors onto API error codes.
func (h *InterviewHandler) fail(c *gin.Context, err error) {
	failService(c, h.log, err)
}

// failService maps service errors onto API error codes. Anything it does not
// recognize is an infrastructure failure and is logged.
func failService(c *gin.Context, log zerolog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrResultNotReady):
		response.Fail(c, http.StatusNotFound, response.ErrResultNotReady)
	case errors.Is(err, interview.ErrAnswerLocked):
		response.Fail(c, http.StatusConflict, response.ErrAnswerLocked)
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Interview request failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
