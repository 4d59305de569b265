package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stemsi/mockview-backend/internal/response"
	"github.com/stemsi/mockview-backend/internal/service"
)

const (
	// ContextKeyClaims is the Gin context key for JWT claims.
	ContextKeyClaims = "claims"
	// ContextKeySessionID is the Gin context key for the authorized session ID.
	ContextKeySessionID = "session_id"
)

var errTokenMissing = errors.New("authorization header or token query required")

// TokenValidator validates session tokens.
type TokenValidator interface {
	ValidateToken(tokenStr string) (*service.Claims, error)
}

// RequireSessionToken validates a session JWT and checks that it was issued
// for the session named by the :id path parameter. The token is read from the
// Authorization header, falling back to ?token= for WebSocket upgrades.
func RequireSessionToken(auth TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			response.AbortFail(c, http.StatusBadRequest, response.ErrInvalidID)
			return
		}

		claims, err := extractAndValidateClaims(c, auth)
		if errors.Is(err, errTokenMissing) {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}

		if claims.SessionID != sessionID {
			response.AbortFail(c, http.StatusForbidden, response.ErrForbidden)
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Set(ContextKeySessionID, sessionID)
		c.Next()
	}
}

// GetClaims retrieves the JWT claims from the Gin context.
func GetClaims(c *gin.Context) *service.Claims {
	val, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil
	}
	claims, ok := val.(*service.Claims)
	if !ok {
		return nil
	}
	return claims
}

// GetSessionID returns the session ID authorized by RequireSessionToken.
func GetSessionID(c *gin.Context) (uuid.UUID, bool) {
	val, exists := c.Get(ContextKeySessionID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := val.(uuid.UUID)
	return id, ok
}

func extractAndValidateClaims(c *gin.Context, auth TokenValidator) (*service.Claims, error) {
	tokenStr := ""

	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			tokenStr = parts[1]
		}
	}

	// Fallback for WebSocket upgrades, which cannot send headers from browsers
	if tokenStr == "" {
		tokenStr = c.Query("token")
	}

	if tokenStr == "" {
		return nil, errTokenMissing
	}

	return auth.ValidateToken(tokenStr)
}
