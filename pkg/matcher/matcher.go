// Package matcher decides which remote record, if any, a canonical entry
// refers to.
//
// Matching runs in two steps. The exact step looks the entry's key up in
// the index: the external ID for articles, the name for authors. Only when
// that misses does the fuzzy search score the entry's title or name against
// every record's natural key, in index order, and accept the best score if
// it reaches the threshold for the entry kind. Ties go to the record seen
// first.
package matcher

import (
	"fmt"

	"github.com/agentstation/bibsync/pkg/constants"
	"github.com/agentstation/bibsync/pkg/fuzzy"
	"github.com/agentstation/bibsync/pkg/index"
	"github.com/agentstation/bibsync/pkg/records"
)

// Type classifies a match.
type Type int

// Match types.
const (
	// None means no record matched.
	None Type = iota
	// Exact means the entry's key was found in the index.
	Exact
	// Fuzzy means a natural key scored at or above the threshold.
	Fuzzy
)

// String implements fmt.Stringer.
func (t Type) String() string {
	switch t {
	case Exact:
		return "exact"
	case Fuzzy:
		return "fuzzy"
	default:
		return "none"
	}
}

// Result is the outcome of matching one entry.
type Result struct {
	Type     Type
	RemoteID string
	// Key is the natural key of the matched record.
	Key string
	// Score is the fuzzy score; 100 for exact matches.
	Score int
}

// Found reports whether a record matched.
func (r Result) Found() bool { return r.Type != None }

// String implements fmt.Stringer.
func (r Result) String() string {
	if !r.Found() {
		return "no match"
	}
	return fmt.Sprintf("%s match %q (%d)", r.Type, r.Key, r.Score)
}

// Matcher resolves entries against an index.
type Matcher struct {
	scorer     fuzzy.Scorer
	thresholds map[records.EntryKind]int
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithScorer replaces the similarity function.
func WithScorer(s fuzzy.Scorer) Option {
	return func(m *Matcher) {
		if s != nil {
			m.scorer = s
		}
	}
}

// WithThreshold sets the minimum fuzzy score for kind.
func WithThreshold(kind records.EntryKind, score int) Option {
	return func(m *Matcher) {
		if score > 0 && score <= 100 {
			m.thresholds[kind] = score
		}
	}
}

// New creates a Matcher using token set similarity and the default
// thresholds.
func New(opts ...Option) *Matcher {
	m := &Matcher{
		scorer: fuzzy.TokenSetRatio,
		thresholds: map[records.EntryKind]int{
			records.KindAuthor:  constants.AuthorMatchThreshold,
			records.KindArticle: constants.ArticleMatchThreshold,
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Threshold returns the minimum fuzzy score for kind.
func (m *Matcher) Threshold(kind records.EntryKind) int {
	return m.thresholds[kind]
}

// Match resolves entry against idx.
func (m *Matcher) Match(entry *records.Entry, idx *index.Index) Result {
	if key := entry.ExactKey(); key != "" {
		if rec, ok := idx.Lookup(key); ok {
			return Result{Type: Exact, RemoteID: rec.RemoteID, Key: rec.NaturalKey, Score: 100}
		}
	}

	if entry.TitleOrName == "" {
		return Result{}
	}

	var best *records.Record
	bestScore := -1
	for _, rec := range idx.Records() {
		if rec.NaturalKey == "" {
			continue
		}
		if score := m.scorer(entry.TitleOrName, rec.NaturalKey); score > bestScore {
			best, bestScore = rec, score
		}
	}

	if best == nil || bestScore < m.Threshold(entry.Kind) {
		return Result{Score: max(bestScore, 0)}
	}
	return Result{Type: Fuzzy, RemoteID: best.RemoteID, Key: best.NaturalKey, Score: bestScore}
}
