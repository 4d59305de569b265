package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stemsi/mockview-backend/internal/config"
	"github.com/stemsi/mockview-backend/internal/handler"
	"github.com/stemsi/mockview-backend/internal/middleware"
	"github.com/stemsi/mockview-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Interview *handler.InterviewHandler
	WS        *handler.WSHandler
	SSE       *handler.SSEHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	auth middleware.TokenValidator,
	createLimiter *middleware.RateLimiter,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. Public Group (No Auth) ─────────────────────────────────────
	api := router.Group("/api/v1")
	{
		api.GET("/challenge", handlers.Interview.GetChallenge)
		api.POST("/interviews", createLimiter.Middleware(), handlers.Interview.CreateSession)
	}

	// ─── 2. Session Group (Session JWT) ────────────────────────────────
	session := router.Group("/api/v1/interviews/:id")
	session.Use(middleware.RequireSessionToken(auth))
	{
		session.GET("/view", handlers.Interview.GetView)
		session.PUT("/started", handlers.Interview.SetStarted)
		session.PUT("/answer", handlers.Interview.SubmitAnswer)
		session.GET("/result", handlers.Interview.GetResult)
		session.GET("/events", handlers.SSE.InterviewEvents)
	}

	// ─── 3. WebSocket Group (Session JWT via ?token=) ──────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireSessionToken(auth))
	{
		ws.GET("/interviews/:id/stream", handlers.WS.InterviewStream)
	}

	return router
}
