// Package resolver turns author references into author record IDs,
// creating authors that do not exist yet.
//
// Authors are only ever created or reused, never updated. A created author
// is added to the index straight away, so a reference that recurs later in
// the run resolves to the same record instead of creating a second one.
package resolver

import (
	"context"
	"strings"

	"github.com/agentstation/bibsync/pkg/errors"
	"github.com/agentstation/bibsync/pkg/index"
	"github.com/agentstation/bibsync/pkg/logging"
	"github.com/agentstation/bibsync/pkg/matcher"
	"github.com/agentstation/bibsync/pkg/normalize"
	"github.com/agentstation/bibsync/pkg/reconciler"
	"github.com/agentstation/bibsync/pkg/records"
)

// Resolver resolves author references against one author index.
type Resolver struct {
	index      *index.Index
	normalizer *normalize.Normalizer
	matcher    *matcher.Matcher
	reconciler reconciler.Reconciler
}

// New creates a Resolver. The reconciler performs the creates, so its dry
// run setting applies here too.
func New(idx *index.Index, n *normalize.Normalizer, m *matcher.Matcher, r reconciler.Reconciler) *Resolver {
	return &Resolver{
		index:      idx,
		normalizer: n,
		matcher:    m,
		reconciler: r,
	}
}

// Resolve returns the remote ID for ref. The ID is empty when the author
// could not be created, or would only be created in a dry run.
func (r *Resolver) Resolve(ctx context.Context, ref string) (string, reconciler.Outcome) {
	entry := r.normalizer.Author(ref)
	if entry.TitleOrName == "" {
		err := errors.NewInvalidEntryError("", records.RawAuthor, "empty author name")
		return "", reconciler.Failed(nil, strings.TrimSpace(ref), err)
	}

	match := r.matcher.Match(entry, r.index)
	if match.Found() {
		logging.FromContext(ctx).Debug().
			Str("author", entry.TitleOrName).
			Str("match", match.String()).
			Msg("Author resolved")
		return match.RemoteID, reconciler.Outcome{
			Kind:     records.KindAuthor,
			Title:    entry.TitleOrName,
			State:    reconciler.StateSkipped,
			RemoteID: match.RemoteID,
			Match:    match.Type.String(),
			Score:    match.Score,
		}
	}

	outcome := r.reconciler.Reconcile(ctx, entry, match, r.index)
	return outcome.RemoteID, outcome
}

// Resolution is the result of resolving a batch of references.
type Resolution struct {
	// IDs maps each reference to its author record ID. References that
	// failed, or exist only in a dry run, are absent.
	IDs map[string]string
	// Outcomes holds one outcome per distinct author, in first seen order.
	Outcomes []reconciler.Outcome
}

// Lookup returns the remote IDs for refs in order, without duplicates.
// Unresolved references are left out.
func (res *Resolution) Lookup(refs []string) []string {
	var ids []string
	seen := make(map[string]bool)
	for _, ref := range refs {
		id, ok := res.IDs[ref]
		if !ok || id == "" {
			continue
		}
		key := records.NormalizeID(id)
		if seen[key] {
			continue
		}
		seen[key] = true
		ids = append(ids, id)
	}
	return ids
}

// Counts tallies the outcomes.
func (res *Resolution) Counts() reconciler.Counts {
	var c reconciler.Counts
	for _, o := range res.Outcomes {
		c.Add(o)
	}
	return c
}

// ResolveAll resolves every distinct reference once. References that
// normalize to the same name share one outcome. onOutcome, when not nil,
// is called as each outcome is produced.
func (r *Resolver) ResolveAll(ctx context.Context, refs []string, onOutcome func(reconciler.Outcome)) *Resolution {
	res := &Resolution{IDs: make(map[string]string)}
	byName := make(map[string]string)

	for _, ref := range refs {
		if _, done := res.IDs[ref]; done {
			continue
		}
		name := normalize.AuthorName(ref)
		if id, ok := byName[name]; ok {
			if id != "" {
				res.IDs[ref] = id
			}
			continue
		}
		if ctx.Err() != nil {
			break
		}

		id, outcome := r.Resolve(ctx, ref)
		byName[name] = id
		if id != "" {
			res.IDs[ref] = id
		}
		res.Outcomes = append(res.Outcomes, outcome)
		if onOutcome != nil {
			onOutcome(outcome)
		}
	}
	return res
}
