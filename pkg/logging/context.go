package logging

import (
	"context"

	"github.com/rs/zerolog"
)

type contextKey struct{}

// WithLogger returns a copy of ctx carrying logger. A nil logger stores
// the default.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the logger carried by ctx, or the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return Default()
	}
	if logger, ok := ctx.Value(contextKey{}).(*zerolog.Logger); ok && logger != nil {
		return logger
	}
	return Default()
}

// Ctx is short for FromContext.
func Ctx(ctx context.Context) *zerolog.Logger {
	return FromContext(ctx)
}

// WithFields narrows the context logger with every field in fields.
func WithFields(ctx context.Context, fields map[string]any) context.Context {
	return narrow(ctx, func(c zerolog.Context) zerolog.Context {
		for k, v := range fields {
			c = addField(c, k, v)
		}
		return c
	})
}

// WithCollection tags the context logger with a collection name.
func WithCollection(ctx context.Context, collection string) context.Context {
	return narrow(ctx, func(c zerolog.Context) zerolog.Context { return c.Str("collection", collection) })
}

// WithEntry tags the context logger with the entry being reconciled.
func WithEntry(ctx context.Context, key string) context.Context {
	return narrow(ctx, func(c zerolog.Context) zerolog.Context { return c.Str("entry", key) })
}

// WithOperation tags the context logger with an operation such as
// "sync" or "clean".
func WithOperation(ctx context.Context, operation string) context.Context {
	return narrow(ctx, func(c zerolog.Context) zerolog.Context { return c.Str("operation", operation) })
}

// WithError attaches err to the context logger. A nil err returns ctx.
func WithError(ctx context.Context, err error) context.Context {
	if err == nil {
		return ctx
	}
	return narrow(ctx, func(c zerolog.Context) zerolog.Context { return c.Err(err) })
}

func narrow(ctx context.Context, fn func(zerolog.Context) zerolog.Context) context.Context {
	logger := fn(FromContext(ctx).With()).Logger()
	return WithLogger(ctx, &logger)
}

func addField(c zerolog.Context, key string, value any) zerolog.Context {
	switch v := value.(type) {
	case string:
		return c.Str(key, v)
	case []string:
		return c.Strs(key, v)
	case int:
		return c.Int(key, v)
	case bool:
		return c.Bool(key, v)
	case error:
		return c.AnErr(key, v)
	default:
		return c.Interface(key, v)
	}
}
