package bibsync

import (
	"context"

	"github.com/agentstation/bibsync/pkg/errors"
	"github.com/agentstation/bibsync/pkg/index"
	"github.com/agentstation/bibsync/pkg/logging"
	"github.com/agentstation/bibsync/pkg/records"
	"github.com/agentstation/bibsync/pkg/remote"
)

// linkField returns the relation that ties a record of kind to the other
// collection.
func (c *client) linkField(kind records.EntryKind) (string, error) {
	coll, ok := c.Collection(kind)
	if !ok {
		return "", errors.NewAmbiguousConfigError(string(kind), "collection is not configured")
	}
	name := records.FieldAuthors
	if kind == records.KindAuthor {
		name = records.FieldArticles
	}
	spec, ok := coll.Schema.Field(name)
	if !ok || spec.Property != records.PropertyRelation {
		return "", &errors.ValidationError{
			Field:   name,
			Value:   coll.Name,
			Message: "clean needs a relation property",
		}
	}
	return name, nil
}

// Clean archives every record of kind whose link relation is empty:
// authors without articles, or articles without authors. With dryRun set
// the records are only returned. Archive failures do not stop the pass;
// they are joined into the returned error.
func (c *client) Clean(ctx context.Context, kind records.EntryKind, dryRun bool) ([]*records.Record, error) {
	link, err := c.linkField(kind)
	if err != nil {
		return nil, err
	}
	archiver, ok := c.service.(remote.Archiver)
	if !ok && !dryRun {
		return nil, &errors.ValidationError{Field: "service", Message: "does not support archiving records"}
	}

	coll, _ := c.Collection(kind)
	ctx = logging.WithOperation(logging.WithCollection(ctx, coll.Name), "clean")
	logger := logging.FromContext(ctx)

	idx, err := index.Build(ctx, c.service, coll)
	if err != nil {
		return nil, err
	}

	var (
		cleaned []*records.Record
		errs    []error
	)
	all := append(append([]*records.Record{}, idx.Records()...), idx.Shadowed()...)
	for _, rec := range all {
		if v, ok := rec.Fields.Get(link); ok && v != nil && !v.IsEmpty() {
			continue
		}
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if !dryRun {
			if err := archiver.ArchiveRecord(ctx, rec.RemoteID); err != nil {
				logger.Warn().Err(err).Str("remote_id", rec.RemoteID).Msg("Archive failed")
				errs = append(errs, errors.WrapResource("archive", coll.Name, rec.RemoteID, err))
				continue
			}
		}
		logger.Debug().Str("record", rec.NaturalKey).Bool("dry_run", dryRun).Msg("Archived")
		cleaned = append(cleaned, rec)
	}

	logger.Info().Int("archived", len(cleaned)).Int("failed", len(errs)).Bool("dry_run", dryRun).Msg("Clean completed")
	return cleaned, errors.Join(errs...)
}
