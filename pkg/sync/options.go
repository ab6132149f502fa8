// Package sync provides options and results for synchronizing a
// bibliography export with the remote article and author collections.
package sync

import (
	"fmt"
	"slices"
	"time"

	"github.com/agentstation/bibsync/pkg/errors"
	"github.com/agentstation/bibsync/pkg/reconciler"
	"github.com/agentstation/bibsync/pkg/records"
)

// Options controls one run of Client.Sync.
type Options struct {
	DryRun  bool          // Compute outcomes without writing
	Strict  bool          // Fail when a remote collection has duplicate keys
	Timeout time.Duration // Timeout for the entire run, zero means none

	// Collections selects the phases to run; empty means authors then
	// articles.
	Collections []records.EntryKind

	// Source and Remote label the summary lines.
	Source string
	Remote string

	// OnOutcome is called for every outcome as it is produced.
	OnOutcome func(reconciler.Outcome)
}

// Apply applies the given options to the sync options.
func (s *Options) Apply(opts ...Option) *Options {
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Defaults returns the default sync options.
func Defaults() *Options {
	return &Options{
		Source: "BibTeX",
		Remote: "Notion",
	}
}

// Option is a function that configures sync Options.
type Option func(*Options)

// Validate checks if the sync options are valid.
func (s *Options) Validate() error {
	if s.Timeout < 0 {
		return &errors.ValidationError{
			Field:   "Timeout",
			Value:   s.Timeout,
			Message: "timeout must be non-negative",
		}
	}
	for _, kind := range s.Collections {
		if kind != records.KindArticle && kind != records.KindAuthor {
			return &errors.ValidationError{
				Field:   "Collections",
				Value:   kind,
				Message: fmt.Sprintf("unknown collection %q", kind),
			}
		}
	}
	return nil
}

// Runs reports whether the phase for kind is selected.
func (s *Options) Runs(kind records.EntryKind) bool {
	return len(s.Collections) == 0 || slices.Contains(s.Collections, kind)
}

// Emit passes o to OnOutcome when one is set.
func (s *Options) Emit(o reconciler.Outcome) {
	if s.OnOutcome != nil {
		s.OnOutcome(o)
	}
}

// WithDryRun configures dry run mode.
func WithDryRun(dryRun bool) Option {
	return func(opts *Options) {
		opts.DryRun = dryRun
	}
}

// WithStrict makes duplicate remote keys fatal.
func WithStrict(strict bool) Option {
	return func(opts *Options) {
		opts.Strict = strict
	}
}

// WithTimeout configures the sync timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(opts *Options) {
		opts.Timeout = timeout
	}
}

// WithCollections restricts the run to the given collections.
func WithCollections(kinds ...records.EntryKind) Option {
	return func(opts *Options) {
		opts.Collections = kinds
	}
}

// WithSource sets the label of the input in summary lines.
func WithSource(label string) Option {
	return func(opts *Options) {
		if label != "" {
			opts.Source = label
		}
	}
}

// WithOnOutcome registers a callback for every outcome.
func WithOnOutcome(fn func(reconciler.Outcome)) Option {
	return func(opts *Options) {
		opts.OnOutcome = fn
	}
}
