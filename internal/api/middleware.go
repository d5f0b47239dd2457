/*-------------------------------------------------------------------------
 *
 * middleware.go
 *    HTTP middleware for the Loanzaar workflow API
 *
 * Provides authentication, CORS, security headers, and logging
 * middleware for the HTTP API server.
 *
 * Copyright (c) 2024-2026, Loanzaar <support@loanzaar.in>
 *
 * IDENTIFICATION
 *    internal/api/middleware.go
 *
 *-------------------------------------------------------------------------
 */

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/Vivekray898/loanzaar-server/internal/auth"
	"github.com/Vivekray898/loanzaar-server/internal/metrics"
)

/* AuthMiddleware authenticates requests using bearer tokens and puts
 * the resolved actor into the request context */
func AuthMiddleware(verifier *auth.TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			/* Skip auth for health and metrics endpoints */
			if r.URL.Path == "/health" || r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			requestID := GetRequestID(r.Context())

			/* Get token from header (format: "Bearer <token>") */
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondError(w, WrapError(ErrUnauthorized, requestID))
				return
			}

			parts := strings.Fields(authHeader)
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondError(w, WrapError(ErrUnauthorized, requestID))
				return
			}

			actor, err := verifier.VerifyToken(parts[1])
			if err != nil {
				metrics.WarnWithContext(r.Context(), "Token verification failed", map[string]interface{}{
					"error": err.Error(),
				})
				respondError(w, WrapError(ErrUnauthorized, requestID))
				return
			}

			ctx := auth.WithActor(r.Context(), actor)
			ctx = metrics.WithActorIDLogContext(ctx, actor.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

/* SecurityHeadersMiddleware adds security headers to all HTTP responses */
func SecurityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("X-Frame-Options", "DENY")
		if r.TLS != nil {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}

/* CORSMiddleware adds CORS headers */
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Idempotency-Key, X-Request-ID")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

/* LoggingMiddleware logs requests with structured logging and metrics */
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		/* Wrap response writer to capture status code */
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)

		metrics.RecordHTTPRequest(r.Method, r.URL.Path, wrapped.statusCode, duration)
		metrics.DebugWithContext(r.Context(), "Request completed", map[string]interface{}{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      wrapped.statusCode,
			"duration_ms": duration.Milliseconds(),
		})
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
