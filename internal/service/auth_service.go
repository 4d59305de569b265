package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stemsi/mockview-backend/internal/config"
)

// TokenType distinguishes the kinds of tokens this service issues.
type TokenType string

const (
	TokenTypeSession TokenType = "interview_session"
)

// Claims extends JWT standard claims with the interview session the token unlocks.
type Claims struct {
	jwt.RegisteredClaims
	TokenType TokenType `json:"token_type"`
	SessionID uuid.UUID `json:"session_id"`
}

// AuthService issues and validates session tokens.
type AuthService struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{
		secret: []byte(cfg.JWTSecret),
		expiry: cfg.JWTExpiry,
		now:    time.Now,
	}
}

// GenerateSessionToken creates a JWT scoped to a single interview session.
func (s *AuthService) GenerateSessionToken(sessionID uuid.UUID) (string, error) {
	now := s.now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   sessionID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
		TokenType: TokenTypeSession,
		SessionID: sessionID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.TokenType != TokenTypeSession {
		return nil, errors.New("unexpected token type")
	}

	return claims, nil
}
