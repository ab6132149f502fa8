// Package application provides the application interface for bibsync
// commands.
//
// Commands accept this interface rather than the concrete App type so
// they can be tested with internal/cmd/application.Mock:
//
//	mock := &application.Mock{
//	    ClientFunc: func(ctx context.Context) (bibsync.Client, error) {
//	        return bibsync.New(memory.New(), bibsync.WithArticles(articles))
//	    },
//	}
//	cmd := update.NewCommand(mock)
package application

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"github.com/agentstation/bibsync"
	"github.com/agentstation/bibsync/internal/config"
)

// Application provides what commands need from the running program.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Client returns the sync client, connecting to Notion and resolving
	// the configured databases on first use.
	Client(ctx context.Context) (bibsync.Client, error)

	// Config returns the configuration, loading it on first use.
	Config() (*config.Config, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml).
	OutputFormat() string

	// Color reports whether status lines may be colored.
	Color() bool

	// Out is where command results are written.
	Out() io.Writer

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
