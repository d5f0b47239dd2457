/*-------------------------------------------------------------------------
 *
 * main.go
 *    Token generation CLI tool for the Loanzaar workflow server
 *
 * Command-line utility for minting signed actor tokens with a role and
 * expiry, for operators and local development.
 *
 * Copyright (c) 2024-2026, Loanzaar <support@loanzaar.in>
 *
 * IDENTIFICATION
 *    cmd/generate-token/main.go
 *
 *-------------------------------------------------------------------------
 */

package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Vivekray898/loanzaar-server/internal/auth"
)

func main() {
	var (
		actorID = flag.String("actor", "", "Actor UUID (generated when empty)")
		role    = flag.String("role", "agent", "Actor role (agent or admin)")
		secret  = flag.String("secret", "", "Signing secret (defaults to LOANZAAR_JWT_SECRET)")
		ttl     = flag.Duration("ttl", 24*time.Hour, "Token lifetime")
	)
	flag.Parse()

	signingSecret := *secret
	if signingSecret == "" {
		signingSecret = os.Getenv("LOANZAAR_JWT_SECRET")
	}
	if signingSecret == "" {
		fmt.Fprintf(os.Stderr, "Error: no signing secret (use -secret or LOANZAAR_JWT_SECRET)\n")
		os.Exit(1)
	}

	if !auth.Role(*role).IsValid() {
		fmt.Fprintf(os.Stderr, "Error: unknown role %q (want agent or admin)\n", *role)
		os.Exit(1)
	}

	subject := *actorID
	if subject == "" {
		subject = uuid.New().String()
	} else if _, err := uuid.Parse(subject); err != nil {
		fmt.Fprintf(os.Stderr, "Error: actor must be a UUID: %v\n", err)
		os.Exit(1)
	}

	now := time.Now()
	claims := auth.ActorClaims{
		Role: *role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(*ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signingSecret))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to sign token: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Actor ID: %s\n", subject)
	fmt.Printf("Role:     %s\n", *role)
	fmt.Printf("Expires:  %s\n", now.Add(*ttl).Format(time.RFC3339))
	fmt.Printf("\n%s\n", token)
}
