// Package logging provides structured logging for bibsync using zerolog.
// Terminals get a human readable console writer; everything else gets JSON
// lines on stderr so stdout stays free for sync reports.
//
// Loggers travel in the context. Sync code narrows them as it descends:
//
//	ctx = logging.WithCollection(ctx, "Authors")
//	ctx = logging.WithEntry(ctx, "vaswani2017attention")
//	logging.FromContext(ctx).Debug().Int("score", 96).Msg("Fuzzy title match")
package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// defaultLogger is used when no logger was put in the context.
var defaultLogger = NewLoggerFromConfig(FromEnv())

// Default returns the process wide logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault replaces the process wide logger, including zerolog's global
// log.Logger.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

// Warn starts a warning on the default logger, for code paths that have
// no context.
func Warn() *zerolog.Event {
	return defaultLogger.Warn()
}
