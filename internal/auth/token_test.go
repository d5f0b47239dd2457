/*-------------------------------------------------------------------------
 *
 * token_test.go
 *    Tests for session token verification
 *
 * Copyright (c) 2024-2026, Loanzaar <support@loanzaar.in>
 *
 * IDENTIFICATION
 *    internal/auth/token_test.go
 *
 *-------------------------------------------------------------------------
 */

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const testSecret = "test-secret"

func signToken(t *testing.T, subject, role string, expiry time.Time) string {
	t.Helper()
	claims := &ActorClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expiry),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestVerifyToken(t *testing.T) {
	verifier := NewTokenVerifier(testSecret)
	actorID := uuid.New()

	actor, err := verifier.VerifyToken(signToken(t, actorID.String(), "agent", time.Now().Add(time.Hour)))
	if err != nil {
		t.Fatalf("expected valid token, got error: %v", err)
	}
	if actor.ID != actorID {
		t.Errorf("expected actor ID %s, got %s", actorID, actor.ID)
	}
	if actor.Role != RoleAgent {
		t.Errorf("expected role agent, got %s", actor.Role)
	}
}

func TestVerifyTokenRejectsExpired(t *testing.T) {
	verifier := NewTokenVerifier(testSecret)

	_, err := verifier.VerifyToken(signToken(t, uuid.New().String(), "admin", time.Now().Add(-time.Hour)))
	if err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestVerifyTokenRejectsUnknownRole(t *testing.T) {
	verifier := NewTokenVerifier(testSecret)

	_, err := verifier.VerifyToken(signToken(t, uuid.New().String(), "superuser", time.Now().Add(time.Hour)))
	if err == nil {
		t.Fatal("expected unknown role to be rejected")
	}
}

func TestVerifyTokenRejectsBadSignature(t *testing.T) {
	other := NewTokenVerifier("different-secret")

	_, err := other.VerifyToken(signToken(t, uuid.New().String(), "agent", time.Now().Add(time.Hour)))
	if err == nil {
		t.Fatal("expected token signed with another secret to be rejected")
	}
}

func TestVerifyTokenRejectsBadSubject(t *testing.T) {
	verifier := NewTokenVerifier(testSecret)

	_, err := verifier.VerifyToken(signToken(t, "not-a-uuid", "agent", time.Now().Add(time.Hour)))
	if err == nil {
		t.Fatal("expected non-UUID subject to be rejected")
	}
}

func TestActorContextRoundTrip(t *testing.T) {
	actor := &Actor{ID: uuid.New(), Role: RoleAdmin}
	ctx := WithActor(context.Background(), actor)

	got, ok := ActorFromContext(ctx)
	if !ok {
		t.Fatal("expected actor in context")
	}
	if got.ID != actor.ID || got.Role != actor.Role {
		t.Errorf("actor mismatch: got %+v, want %+v", got, actor)
	}

	if _, err := MustActorFromContext(context.Background()); err == nil {
		t.Error("expected error when actor missing from context")
	}
}
