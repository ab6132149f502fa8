package records

import (
	"slices"
	"strings"

	"github.com/agentstation/bibsync/pkg/errors"
)

// EntryKind tells articles from authors.
type EntryKind string

// Entry kinds.
const (
	KindArticle EntryKind = "article"
	KindAuthor  EntryKind = "author"
)

// String implements fmt.Stringer.
func (k EntryKind) String() string { return string(k) }

// ParseKind accepts a kind in singular or plural form, in any case.
func ParseKind(s string) (EntryKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "article", "articles":
		return KindArticle, nil
	case "author", "authors":
		return KindAuthor, nil
	}
	return "", errors.NewValidationError("kind", s, "must be articles or authors")
}

// Entry is a canonical bibliographic record ready for matching. Entries are
// not modified after construction; WithAttribute returns a copy.
type Entry struct {
	Kind EntryKind `json:"kind" yaml:"kind"`
	// ExternalID is the reference manager's stable identifier. Empty for authors.
	ExternalID string `json:"external_id,omitempty" yaml:"external_id,omitempty"`
	// TitleOrName is the article title or the author's display name.
	TitleOrName string `json:"title" yaml:"title"`
	// Authors lists author display names in bibliography order.
	Authors    []string `json:"authors,omitempty" yaml:"authors,omitempty"`
	Attributes Fields   `json:"attributes" yaml:"attributes"`
}

// ExactKey is the key looked up before fuzzy matching: the external ID of an
// article, the name of an author.
func (e *Entry) ExactKey() string {
	if e.Kind == KindAuthor {
		return e.TitleOrName
	}
	return e.ExternalID
}

// WithAttribute returns a copy of e with the attribute set.
func (e *Entry) WithAttribute(name string, v Value) *Entry {
	cp := *e
	cp.Authors = slices.Clone(e.Authors)
	cp.Attributes = e.Attributes.Clone()
	cp.Attributes.Set(name, v)
	return &cp
}

// Record is a snapshot of one remote record.
type Record struct {
	RemoteID string `json:"id" yaml:"id"`
	// NaturalKey is the record's title or name, used for fuzzy matching.
	NaturalKey string `json:"natural_key" yaml:"natural_key"`
	Fields     Fields `json:"fields" yaml:"fields"`
}

// Collection describes one remote collection.
type Collection struct {
	// ID is the remote identifier of the collection.
	ID string `json:"id" yaml:"id"`
	// Name is the human readable name, used in reports.
	Name   string    `json:"name" yaml:"name"`
	Kind   EntryKind `json:"kind" yaml:"kind"`
	Schema *Schema   `json:"schema" yaml:"schema"`
}
