package reconciler

import (
	"github.com/agentstation/bibsync/pkg/differ"
	"github.com/agentstation/bibsync/pkg/errors"
	"github.com/agentstation/bibsync/pkg/remote"
)

// options configures a reconciler.
type options struct {
	writer remote.Writer
	differ differ.Differ
	dryRun bool
}

func defaultOptions() *options {
	return &options{
		differ: differ.New(),
	}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.writer == nil {
		return nil, &errors.ValidationError{
			Field:   "writer",
			Message: "a remote writer is required",
		}
	}
	return o, nil
}

// newOptions returns reconciler options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithWriter sets the service that receives creates and updates.
func WithWriter(w remote.Writer) Option {
	return func(o *options) error {
		if w == nil {
			return &errors.ValidationError{
				Field:   "writer",
				Message: "cannot be nil",
			}
		}
		o.writer = w
		return nil
	}
}

// WithDiffer replaces the field comparison.
func WithDiffer(d differ.Differ) Option {
	return func(o *options) error {
		if d == nil {
			return &errors.ValidationError{
				Field:   "differ",
				Message: "cannot be nil",
			}
		}
		o.differ = d
		return nil
	}
}

// WithDryRun computes outcomes without writing.
func WithDryRun(enabled bool) Option {
	return func(o *options) error {
		o.dryRun = enabled
		return nil
	}
}
