package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/mockview-backend/internal/config"
	"github.com/stemsi/mockview-backend/internal/handler"
	"github.com/stemsi/mockview-backend/internal/middleware"
	"github.com/stemsi/mockview-backend/internal/service"
)

func TestRoutes(t *testing.T) {
	cfg := &config.Config{GinMode: "test", JWTSecret: "test-secret", JWTExpiry: time.Hour}
	auth := service.NewAuthService(cfg)

	r := SetupRouter(auth, middleware.NewRateLimiter(10, time.Minute, nil), &Handlers{
		Interview: handler.NewInterviewHandler(nil, auth, zerolog.Nop()),
		WS:        handler.NewWSHandler(nil, nil, zerolog.Nop(), nil),
		SSE:       handler.NewSSEHandler(nil, nil, zerolog.Nop()),
	}, cfg)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/api/v1/challenge", http.StatusOK},
		{http.MethodGet, "/api/v1/interviews/00000000-0000-0000-0000-000000000001/view", http.StatusUnauthorized},
		{http.MethodPut, "/api/v1/interviews/00000000-0000-0000-0000-000000000001/started", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/interviews/nope/result", http.StatusBadRequest},
		{http.MethodGet, "/ws/v1/interviews/00000000-0000-0000-0000-000000000001/stream", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			if w.Code != tt.want {
				t.Fatalf("status = %d want %d", w.Code, tt.want)
			}
			if tt.want != http.StatusNotFound && w.Header().Get("X-Request-ID") == "" {
				t.Fatal("missing X-Request-ID")
			}
		})
	}
}
