package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/mockview-backend/internal/config"
)

func newTestAuth(secret string) *AuthService {
	return NewAuthService(&config.Config{JWTSecret: secret, JWTExpiry: time.Hour})
}

func TestSessionTokenRoundTrip(t *testing.T) {
	auth := newTestAuth("secret")
	id := uuid.New()

	token, err := auth.GenerateSessionToken(id)
	if err != nil {
		t.Fatalf("GenerateSessionToken: %v", err)
	}

	claims, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.SessionID != id || claims.Subject != id.String() {
		t.Fatalf("claims = %+v want session %s", claims, id)
	}
}

func TestValidateTokenRejects(t *testing.T) {
	auth := newTestAuth("secret")
	token, err := auth.GenerateSessionToken(uuid.New())
	if err != nil {
		t.Fatalf("GenerateSessionToken: %v", err)
	}

	if _, err := newTestAuth("other").ValidateToken(token); err == nil {
		t.Fatal("accepted token signed with another secret")
	}

	expired := newTestAuth("secret")
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := expired.ValidateToken(token); err == nil {
		t.Fatal("accepted expired token")
	}

	if _, err := auth.ValidateToken("not-a-jwt"); err == nil {
		t.Fatal("accepted garbage")
	}
}
