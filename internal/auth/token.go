/*-------------------------------------------------------------------------
 *
 * token.go
 *    Session token verification
 *
 * Parses tokens issued by the identity provider into an Actor. Tokens
 * are HMAC-signed JWTs carrying the actor ID in the subject claim and
 * the workflow role in a custom claim.
 *
 * Copyright (c) 2024-2026, Loanzaar <support@loanzaar.in>
 *
 * IDENTIFICATION
 *    internal/auth/token.go
 *
 *-------------------------------------------------------------------------
 */

package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

/* ActorClaims are the JWT claims issued by the identity provider */
type ActorClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

/* TokenVerifier verifies identity provider session tokens */
type TokenVerifier struct {
	secret []byte
}

/* NewTokenVerifier creates a token verifier with the shared HMAC secret */
func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret)}
}

/* VerifyToken parses and validates a session token into an Actor */
func (v *TokenVerifier) VerifyToken(tokenStr string) (*Actor, error) {
	claims := &ActorClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}

	actorID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid actor id in token subject: %w", err)
	}

	role := Role(claims.Role)
	if !role.IsValid() {
		return nil, fmt.Errorf("unknown role in token: %q", claims.Role)
	}

	return &Actor{ID: actorID, Role: role}, nil
}
