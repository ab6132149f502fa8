// Package index snapshots a remote collection for matching.
//
// An Index is built once, completely, before any entry is matched. It maps
// each record's exact key (external ID for articles, name for authors) to
// the record and keeps every record in listing order for fuzzy matching.
package index

import (
	"context"
	"strings"

	"github.com/agentstation/bibsync/pkg/errors"
	"github.com/agentstation/bibsync/pkg/logging"
	"github.com/agentstation/bibsync/pkg/records"
	"github.com/agentstation/bibsync/pkg/remote"
)

// AliasSeparator separates alternate keys in the alias field.
const AliasSeparator = ";"

// Index is a key to record snapshot of one collection. It is not safe for
// concurrent mutation.
type Index struct {
	collection *records.Collection
	records    []*records.Record
	byKey      map[string]*records.Record
	byID       map[string]*records.Record
	shadowed   []*records.Record
}

// Option configures Build.
type Option func(*options)

type options struct {
	strict bool
}

// WithStrict makes duplicate keys fatal.
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// New returns an empty index for collection.
func New(collection *records.Collection) *Index {
	return &Index{
		collection: collection,
		byKey:      make(map[string]*records.Record),
		byID:       make(map[string]*records.Record),
	}
}

// Build lists every page of collection and indexes the records. Duplicate
// keys fail with a DuplicateKeyError in strict mode; otherwise the first
// record keeps the key and later ones are logged as shadowed.
func Build(ctx context.Context, lister remote.Lister, collection *records.Collection, opts ...Option) (*Index, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	logger := logging.FromContext(ctx).With().Str("collection", collection.Name).Logger()

	idx := New(collection)
	cursor := ""
	pages := 0
	for {
		page, err := lister.ListCollection(ctx, collection, cursor)
		if err != nil {
			return nil, errors.WrapResource("list", collection.Name, collection.ID, err)
		}
		pages++
		for _, rec := range page.Records {
			if err := idx.add(rec, o.strict); err != nil {
				return nil, err
			}
		}
		if !page.HasMore || page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	for _, rec := range idx.shadowed {
		logger.Warn().
			Str("key", idx.keyOf(rec)).
			Str("remote_id", rec.RemoteID).
			Msg("Duplicate key shadowed by an earlier record")
	}
	logger.Debug().
		Int("records", len(idx.records)).
		Int("pages", pages).
		Msg("Index built")

	return idx, nil
}

// Add registers a record created during the run. An existing key is not
// replaced.
func (idx *Index) Add(rec *records.Record) {
	_ = idx.add(rec, false)
}

func (idx *Index) add(rec *records.Record, strict bool) error {
	if rec.NaturalKey == "" && idx.collection.Schema != nil {
		rec.NaturalKey = rec.Fields.Text(idx.collection.Schema.TitleField)
	}

	key := idx.keyOf(rec)
	if key != "" {
		if first, taken := idx.byKey[key]; taken {
			if strict {
				return errors.NewDuplicateKeyError(idx.collection.Name, key, first.RemoteID, rec.RemoteID)
			}
			idx.shadowed = append(idx.shadowed, rec)
			return nil
		}
		idx.byKey[key] = rec
	}

	idx.records = append(idx.records, rec)
	idx.byID[records.NormalizeID(rec.RemoteID)] = rec

	for _, alias := range idx.aliasesOf(rec) {
		if _, taken := idx.byKey[alias]; !taken {
			idx.byKey[alias] = rec
		}
	}
	return nil
}

// keyOf returns the exact key of rec.
func (idx *Index) keyOf(rec *records.Record) string {
	if idx.collection.Schema == nil {
		return strings.TrimSpace(rec.NaturalKey)
	}
	return strings.TrimSpace(rec.Fields.Text(idx.collection.Schema.KeyField))
}

func (idx *Index) aliasesOf(rec *records.Record) []string {
	if idx.collection.Schema == nil || idx.collection.Schema.AliasField == "" {
		return nil
	}
	raw := rec.Fields.Text(idx.collection.Schema.AliasField)
	var out []string
	for _, a := range strings.Split(raw, AliasSeparator) {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

// Lookup returns the record holding key.
func (idx *Index) Lookup(key string) (*records.Record, bool) {
	rec, ok := idx.byKey[strings.TrimSpace(key)]
	return rec, ok
}

// ByID returns the record with the given remote ID.
func (idx *Index) ByID(remoteID string) (*records.Record, bool) {
	rec, ok := idx.byID[records.NormalizeID(remoteID)]
	return rec, ok
}

// Records returns the indexed records in listing order, followed by
// records added during the run.
func (idx *Index) Records() []*records.Record {
	return idx.records
}

// Shadowed returns records whose key was already taken.
func (idx *Index) Shadowed() []*records.Record {
	return idx.shadowed
}

// Len returns the number of indexed records.
func (idx *Index) Len() int {
	return len(idx.records)
}

// Collection returns the indexed collection.
func (idx *Index) Collection() *records.Collection {
	return idx.collection
}
