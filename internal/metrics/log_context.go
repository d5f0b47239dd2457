/*-------------------------------------------------------------------------
 *
 * log_context.go
 *    Log context helpers for structured logging
 *
 * Provides helpers for consistent structured logging with request_id,
 * application_id, and actor_id fields across all components.
 *
 * Copyright (c) 2024-2026, Loanzaar <support@loanzaar.in>
 *
 * IDENTIFICATION
 *    internal/metrics/log_context.go
 *
 *-------------------------------------------------------------------------
 */

package metrics

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	requestIDKey     contextKey = "request_id"
	applicationIDKey contextKey = "application_id"
	actorIDKey       contextKey = "actor_id"
)

/* WithLogContext adds logging fields to context */
func WithLogContext(ctx context.Context, requestID, applicationID, actorID string) context.Context {
	if requestID != "" {
		ctx = context.WithValue(ctx, requestIDKey, requestID)
	}
	if applicationID != "" {
		ctx = context.WithValue(ctx, applicationIDKey, applicationID)
	}
	if actorID != "" {
		ctx = context.WithValue(ctx, actorIDKey, actorID)
	}
	return ctx
}

/* WithApplicationIDLogContext adds application ID to log context */
func WithApplicationIDLogContext(ctx context.Context, applicationID uuid.UUID) context.Context {
	return context.WithValue(ctx, applicationIDKey, applicationID.String())
}

/* WithActorIDLogContext adds actor ID to log context */
func WithActorIDLogContext(ctx context.Context, actorID uuid.UUID) context.Context {
	return context.WithValue(ctx, actorIDKey, actorID.String())
}

/* GetRequestIDFromContext gets request ID from context */
func GetRequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

/* GetApplicationIDFromContext gets application ID from context */
func GetApplicationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(applicationIDKey).(string); ok {
		return id
	}
	if id, ok := ctx.Value(applicationIDKey).(uuid.UUID); ok {
		return id.String()
	}
	return ""
}

/* GetActorIDFromContext gets actor ID from context */
func GetActorIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(actorIDKey).(string); ok {
		return id
	}
	if id, ok := ctx.Value(actorIDKey).(uuid.UUID); ok {
		return id.String()
	}
	return ""
}

/* LoggerFromContext creates a zerolog logger with fields from context */
func LoggerFromContext(ctx context.Context) zerolog.Logger {
	logger := *zerolog.Ctx(ctx)
	if logger.GetLevel() == zerolog.Disabled {
		logger = globalLogger
	}

	requestID := GetRequestIDFromContext(ctx)
	applicationID := GetApplicationIDFromContext(ctx)
	actorID := GetActorIDFromContext(ctx)

	if requestID != "" {
		logger = logger.With().Str("request_id", requestID).Logger()
	}
	if applicationID != "" {
		logger = logger.With().Str("application_id", applicationID).Logger()
	}
	if actorID != "" {
		logger = logger.With().Str("actor_id", actorID).Logger()
	}

	return logger
}

/* LogWithContext logs a message with context fields */
func LogWithContext(ctx context.Context, level zerolog.Level, message string, fields map[string]interface{}) {
	logger := LoggerFromContext(ctx)
	event := logger.WithLevel(level)

	for key, value := range fields {
		event = event.Interface(key, value)
	}

	event.Msg(message)
}

/* DebugWithContext logs a debug message with context */
func DebugWithContext(ctx context.Context, message string, fields map[string]interface{}) {
	LogWithContext(ctx, zerolog.DebugLevel, message, fields)
}

/* InfoWithContext logs an info message with context */
func InfoWithContext(ctx context.Context, message string, fields map[string]interface{}) {
	LogWithContext(ctx, zerolog.InfoLevel, message, fields)
}

/* WarnWithContext logs a warning message with context */
func WarnWithContext(ctx context.Context, message string, fields map[string]interface{}) {
	LogWithContext(ctx, zerolog.WarnLevel, message, fields)
}

/* ErrorWithContext logs an error message with context */
func ErrorWithContext(ctx context.Context, message string, err error, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	LogWithContext(ctx, zerolog.ErrorLevel, message, fields)
}
