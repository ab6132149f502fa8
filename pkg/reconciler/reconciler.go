// Package reconciler decides, for one canonical entry and its match
// result, whether to create, update or leave a remote record alone, and
// performs at most one write.
//
// A matched record is compared field by field with value kind aware
// equality. When every field agrees the entry is skipped; otherwise the
// full attribute set is written in a single update. Service errors become
// failed outcomes so the caller can continue with the next entry.
package reconciler

import (
	"context"

	"github.com/agentstation/bibsync/pkg/differ"
	"github.com/agentstation/bibsync/pkg/errors"
	"github.com/agentstation/bibsync/pkg/index"
	"github.com/agentstation/bibsync/pkg/logging"
	"github.com/agentstation/bibsync/pkg/matcher"
	"github.com/agentstation/bibsync/pkg/records"
	"github.com/agentstation/bibsync/pkg/remote"
)

// Reconciler applies one entry to the remote collection.
type Reconciler interface {
	// Reconcile never returns an error; failures are reported in the
	// outcome.
	Reconcile(ctx context.Context, entry *records.Entry, match matcher.Result, idx *index.Index) Outcome
}

// reconciler is the default implementation of Reconciler.
type reconciler struct {
	writer remote.Writer
	differ differ.Differ
	dryRun bool
}

// New creates a new Reconciler with options. WithWriter is required.
func New(opts ...Option) (Reconciler, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &reconciler{
		writer: options.writer,
		differ: options.differ,
		dryRun: options.dryRun,
	}, nil
}

// Reconcile creates the entry when nothing matched, otherwise diffs it
// against the matched snapshot.
func (r *reconciler) Reconcile(ctx context.Context, entry *records.Entry, match matcher.Result, idx *index.Index) Outcome {
	logger := logging.FromContext(ctx).With().
		Str("collection", idx.Collection().Name).
		Str("title", entry.TitleOrName).
		Logger()

	if err := ctx.Err(); err != nil {
		return Failed(entry, "", errors.ErrCanceled)
	}

	// Step 1: No match means a new record
	if !match.Found() {
		return r.create(ctx, entry, idx)
	}

	// Step 2: Compare with the snapshot taken when the index was built
	existing, ok := idx.ByID(match.RemoteID)
	if !ok {
		return Failed(entry, "", errors.NewNotFoundError(idx.Collection().Name, match.RemoteID))
	}
	changes := r.differ.Fields(existing.Fields, entry.Attributes)
	if changes.IsEmpty() {
		logger.Debug().Str("match", match.String()).Msg("Record up to date")
		return newOutcome(entry, StateSkipped, match)
	}

	// Step 3: Write the full attribute set in one update
	outcome := newOutcome(entry, StateUpdated, match)
	outcome.Changed = changes.Fields()
	outcome.Changes = changes
	outcome.DryRun = r.dryRun

	if r.dryRun {
		return outcome
	}
	if err := r.writer.UpdateRecord(ctx, idx.Collection(), existing.RemoteID, entry.Attributes); err != nil {
		logger.Warn().Err(err).Str("remote_id", existing.RemoteID).Msg("Update failed")
		return Failed(entry, "", errors.WrapResource("update", idx.Collection().Name, existing.RemoteID, err))
	}

	for _, f := range entry.Attributes {
		existing.Fields.Set(f.Name, records.Clone(f.Value))
	}
	logger.Debug().Strs("changed", outcome.Changed).Msg("Record updated")
	return outcome
}

func (r *reconciler) create(ctx context.Context, entry *records.Entry, idx *index.Index) Outcome {
	outcome := newOutcome(entry, StateCreated, matcher.Result{})
	outcome.DryRun = r.dryRun
	if r.dryRun {
		return outcome
	}

	id, err := r.writer.CreateRecord(ctx, idx.Collection(), entry.Attributes)
	if err != nil {
		logging.FromContext(ctx).Warn().Err(err).Str("title", entry.TitleOrName).Msg("Create failed")
		return Failed(entry, "", errors.WrapResource("create", idx.Collection().Name, "", err))
	}

	idx.Add(&records.Record{
		RemoteID:   id,
		NaturalKey: entry.TitleOrName,
		Fields:     entry.Attributes.Clone(),
	})
	outcome.RemoteID = id
	return outcome
}
