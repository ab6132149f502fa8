// Package application provides test doubles for cmd/application.
package application

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/agentstation/bibsync"
	app "github.com/agentstation/bibsync/cmd/application"
	"github.com/agentstation/bibsync/internal/config"
)

// Mock provides a mock implementation of Application for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
type Mock struct {
	ClientFunc       func(ctx context.Context) (bibsync.Client, error)
	ConfigFunc       func() (*config.Config, error)
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	VersionFunc      func() string
	CommitFunc       func() string
	DateFunc         func() string
	BuiltByFunc      func() string

	// Writer receives command output; os.Stdout when nil.
	Writer io.Writer
	// Colored enables colored status lines.
	Colored bool
}

// Client returns a client using the mock function or nil.
func (m *Mock) Client(ctx context.Context) (bibsync.Client, error) {
	if m.ClientFunc != nil {
		return m.ClientFunc(ctx)
	}
	return nil, nil
}

// Config returns the configuration using the mock function or an empty
// configuration.
func (m *Mock) Config() (*config.Config, error) {
	if m.ConfigFunc != nil {
		return m.ConfigFunc()
	}
	return &config.Config{}, nil
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns output format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// Color returns Colored.
func (m *Mock) Color() bool {
	return m.Colored
}

// Out returns Writer or os.Stdout.
func (m *Mock) Out() io.Writer {
	if m.Writer != nil {
		return m.Writer
	}
	return os.Stdout
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builtBy using the mock function or "test".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "test"
}

// Ensure Mock implements Application at compile time.
var _ app.Application = (*Mock)(nil)
