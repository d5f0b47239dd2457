/*-------------------------------------------------------------------------
 *
 * logging.go
 *    Logging initialization
 *
 * Configures the global zerolog logger from the configured level and
 * output format (console for development, JSON for production).
 *
 * Copyright (c) 2024-2026, Loanzaar <support@loanzaar.in>
 *
 * IDENTIFICATION
 *    internal/metrics/logging.go
 *
 *-------------------------------------------------------------------------
 */

package metrics

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

var globalLogger = zerolog.New(os.Stderr).With().Timestamp().Logger()

/* InitLogging initializes the global logger with the given level and format */
func InitLogging(level, format string) {
	parsedLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		parsedLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsedLevel)
	zerolog.TimeFieldFormat = time.RFC3339

	if format == "console" {
		globalLogger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger()
	} else {
		globalLogger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}

/* Logger returns the global logger */
func Logger() zerolog.Logger {
	return globalLogger
}
