package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestFailEnvelope(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/x", func(c *gin.Context) {
		Fail(c, http.StatusConflict, ErrAnswerLocked)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "req-1")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d", w.Code)
	}
	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != ErrAnswerLocked || resp.Error.Message != GetMessage(ErrAnswerLocked) {
		t.Fatalf("error body = %+v", resp.Error)
	}
	if resp.Metadata.RequestID != "req-1" {
		t.Fatalf("request id = %q", resp.Metadata.RequestID)
	}
}

func TestRequestIDReplacesOversizedHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/x", func(c *gin.Context) {
		Success(c, http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("a", 200))
	r.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); len(got) != 36 {
		t.Fatalf("X-Request-ID = %q want a generated UUID", got)
	}
}

func TestGetMessageDefault(t *testing.T) {
	if GetMessage(ErrCode("NOPE")) != "An unexpected error occurred." {
		t.Fatal("unexpected default message")
	}
}
