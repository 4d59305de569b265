package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/mockview-backend/internal/middleware"
	"github.com/stemsi/mockview-backend/internal/response"
	ws "github.com/stemsi/mockview-backend/internal/websocket"
)

const (
	resyncInterval    = 15 * time.Second
	keepAliveInterval = 30 * time.Second
	resyncTimeout     = 5 * time.Second // prevent a slow restore from blocking the SSE loop
)

// SSEHandler streams live interview views to EventSource clients that cannot
// open a WebSocket.
type SSEHandler struct {
	interviews InterviewAPI
	views      ViewSubscriber
	log        zerolog.Logger

	resyncEvery    time.Duration
	keepAliveEvery time.Duration
}

// NewSSEHandler creates a new SSEHandler.
func NewSSEHandler(interviews InterviewAPI, views ViewSubscriber, log zerolog.Logger) *SSEHandler {
	return &SSEHandler{
		interviews:     interviews,
		views:          views,
		log:            log.With().Str("component", "sse_handler").Logger(),
		resyncEvery:    resyncInterval,
		keepAliveEvery: keepAliveInterval,
	}
}

// InterviewEvents godoc
// GET /api/v1/interviews/:id/events?token=...
func (h *SSEHandler) InterviewEvents(c *gin.Context) {
	sessionID, ok := middleware.GetSessionID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	reqCtx := c.Request.Context()

	initial, err := h.interviews.GetView(reqCtx, sessionID)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	views, closeViews, err := h.views.SubscribeViews(reqCtx, sessionID)
	if err != nil {
		h.log.Error().Err(err).Msg("View subscription failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	defer closeViews()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.SSEvent("message", ws.ViewResponse{Event: ws.EventView, Data: initial})
	c.Writer.Flush()

	keepAliveTicker := time.NewTicker(h.keepAliveEvery)
	defer keepAliveTicker.Stop()

	resyncTicker := time.NewTicker(h.resyncEvery)
	defer resyncTicker.Stop()

	sseLog := h.log.With().Str("session_id", sessionID.String()).Logger()
	sseLog.Info().Msg("Client attached to view SSE")

	// Pre-allocate a reusable ping payload (never changes)
	pingPayload, _ := json.Marshal(ws.PongResponse{Event: ws.EventPong})

	for {
		select {
		case <-reqCtx.Done():
			sseLog.Info().Msg("Client detached from view SSE")
			return

		case msg, ok := <-views:
			if !ok {
				return
			}
			// Forward raw JSON directly, no deserialization needed
			writeSSEData(c, []byte(msg.Payload))

		case <-resyncTicker.C:
			// Pub/Sub is fire-and-forget, so a periodic full view heals missed messages.
			h.resync(c, reqCtx, sseLog)

		case <-keepAliveTicker.C:
			writeSSEData(c, pingPayload)
		}
	}
}

func (h *SSEHandler) resync(c *gin.Context, parentCtx context.Context, sseLog zerolog.Logger) {
	ctx, cancel := context.WithTimeout(parentCtx, resyncTimeout)
	defer cancel()

	sessionID, _ := middleware.GetSessionID(c)
	view, err := h.interviews.GetView(ctx, sessionID)
	if err != nil {
		sseLog.Warn().Err(err).Msg("Failed to resync view")
		return
	}

	c.SSEvent("message", ws.ViewResponse{Event: ws.EventView, Data: view})
	c.Writer.Flush()
}

func writeSSEData(c *gin.Context, payload []byte) {
	c.Writer.Write([]byte("data: "))
	c.Writer.Write(payload)
	c.Writer.Write([]byte("\n\n"))
	c.Writer.Flush()
}
