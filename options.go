package bibsync

import (
	"github.com/agentstation/bibsync/pkg/errors"
	"github.com/agentstation/bibsync/pkg/fuzzy"
	"github.com/agentstation/bibsync/pkg/normalize"
	"github.com/agentstation/bibsync/pkg/records"
)

// options holds the configuration of a client.
type options struct {
	rules      normalize.Rules
	articles   *records.Collection
	authors    *records.Collection
	thresholds map[records.EntryKind]int
	scorer     fuzzy.Scorer
	ignored    []string
}

func defaults() *options {
	return &options{
		rules:      normalize.DefaultRules(),
		thresholds: make(map[records.EntryKind]int),
	}
}

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// Option is a function that configures a Client.
type Option func(*options) error

// WithRules configures how raw records are normalized.
func WithRules(rules normalize.Rules) Option {
	return func(o *options) error {
		o.rules = rules
		return nil
	}
}

// WithArticles configures the article collection. It is required. A nil
// schema selects the default layout.
func WithArticles(c *records.Collection) Option {
	return func(o *options) error {
		o.articles = c
		return nil
	}
}

// WithAuthors configures the author collection. Without one, articles
// carry their authors as a multi select of names.
func WithAuthors(c *records.Collection) Option {
	return func(o *options) error {
		o.authors = c
		return nil
	}
}

// WithThreshold sets the minimum fuzzy score accepted for kind.
func WithThreshold(kind records.EntryKind, score int) Option {
	return func(o *options) error {
		if score < 1 || score > 100 {
			return &errors.ValidationError{
				Field:   "threshold",
				Value:   score,
				Message: "must be between 1 and 100",
			}
		}
		o.thresholds[kind] = score
		return nil
	}
}

// WithScorer replaces the fuzzy similarity function.
func WithScorer(s fuzzy.Scorer) Option {
	return func(o *options) error {
		o.scorer = s
		return nil
	}
}

// WithIgnoredFields excludes fields from change detection. They are still
// written on create and update.
func WithIgnoredFields(fields ...string) Option {
	return func(o *options) error {
		o.ignored = append(o.ignored, fields...)
		return nil
	}
}
