package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/mockview-backend/internal/interview"
	"github.com/stemsi/mockview-backend/internal/middleware"
	"github.com/stemsi/mockview-backend/internal/response"
	ws "github.com/stemsi/mockview-backend/internal/websocket"
)

// maxAnswerLength matches the REST answer payload limit, counted in characters.
const maxAnswerLength = 20000

// ViewSubscriber streams the rendered views published for a session.
type ViewSubscriber interface {
	SubscribeViews(ctx context.Context, id uuid.UUID) (<-chan *redis.Message, func() error, error)
}

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams live interview views over WebSocket.
type WSHandler struct {
	interviews InterviewAPI
	views      ViewSubscriber
	log        zerolog.Logger
	upgrader   websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(interviews InterviewAPI, views ViewSubscriber, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		interviews: interviews,
		views:      views,
		log:        log.With().Str("component", "ws_handler").Logger(),
		upgrader:   buildUpgrader(allowedOrigins),
	}
}

// InterviewStream godoc
// WS /ws/v1/interviews/:id/stream?token=...
// Pushes a view event on every state change and accepts answer/ping actions.
func (h *WSHandler) InterviewStream(c *gin.Context) {
	sessionID, ok := middleware.GetSessionID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// Resolve the session before upgrading so unknown sessions get a plain 404.
	initial, err := h.interviews.GetView(ctx, sessionID)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	views, closeViews, err := h.views.SubscribeViews(ctx, sessionID)
	if err != nil {
		h.log.Error().Err(err).Msg("View subscription failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	defer closeViews()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsCtx := h.log.With().Str("session_id", sessionID.String())
	if claims := middleware.GetClaims(c); claims != nil {
		wsCtx = wsCtx.Str("token_id", claims.ID)
	}
	wsLog := wsCtx.Logger()
	wsLog.Info().Msg("Client connected")

	if err := ws.WriteTyped(conn, ws.ViewResponse{Event: ws.EventView, Data: initial}); err != nil {
		return
	}

	// The read loop hands replies to this goroutine, which owns all writes.
	replies := make(chan interface{}, 8)
	readDone := make(chan struct{})
	go h.readLoop(ctx, conn, wsLog, sessionID, replies, readDone)

	for {
		select {
		case <-ctx.Done():
			return

		case <-readDone:
			return

		case msg, ok := <-views:
			if !ok {
				return
			}
			// Forward raw JSON directly, it is already a ViewResponse.
			if err := ws.WriteRaw(conn, []byte(msg.Payload)); err != nil {
				wsLog.Debug().Err(err).Msg("Write failed")
				return
			}

		case reply := <-replies:
			if err := ws.WriteTyped(conn, reply); err != nil {
				wsLog.Debug().Err(err).Msg("Write failed")
				return
			}
		}
	}
}

func (h *WSHandler) readLoop(
	ctx context.Context,
	conn *websocket.Conn,
	wsLog zerolog.Logger,
	sessionID uuid.UUID,
	replies chan<- interface{},
	done chan<- struct{},
) {
	defer close(done)

	for {
		var msg ws.RequestPayload
		if err := ws.ReadJSON(conn, &msg); err != nil {
			var syntaxErr *json.SyntaxError
			if errors.As(err, &syntaxErr) {
				if !send(ctx, replies, ws.ErrorResponse{Event: ws.EventError, Error: "malformed message"}) {
					return
				}
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		var reply interface{}
		switch msg.Action {
		case ws.ActionPing:
			reply = ws.PongResponse{Event: ws.EventPong}
		case ws.ActionAnswer:
			reply = h.handleAnswer(ctx, wsLog, sessionID, msg.Answer)
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			reply = ws.ErrorResponse{Event: ws.EventError, Error: "unknown action: " + string(msg.Action)}
		}

		if !send(ctx, replies, reply) {
			return
		}
	}
}

// handleAnswer stores the coding answer and returns the reply to send back.
func (h *WSHandler) handleAnswer(ctx context.Context, wsLog zerolog.Logger, sessionID uuid.UUID, answer string) interface{} {
	if utf8.RuneCountInString(answer) > maxAnswerLength {
		return ws.ErrorResponse{Event: ws.EventError, Error: "answer is too long"}
	}

	view, err := h.interviews.SubmitAnswer(ctx, sessionID, answer)
	if errors.Is(err, interview.ErrAnswerLocked) {
		return ws.ErrorResponse{Event: ws.EventError, Error: response.GetMessage(response.ErrAnswerLocked)}
	}
	if err != nil {
		wsLog.Error().Err(err).Msg("Answer update failed")
		return ws.ErrorResponse{Event: ws.EventError, Error: "save failed"}
	}
	return ws.ViewResponse{Event: ws.EventView, Data: view}
}

func send(ctx context.Context, replies chan<- interface{}, v interface{}) bool {
	select {
	case replies <- v:
		return true
	case <-ctx.Done():
		return false
	}
}
