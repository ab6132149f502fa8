package bibsync

import (
	"context"
	"fmt"
	"strings"

	"github.com/agentstation/bibsync/pkg/errors"
	"github.com/agentstation/bibsync/pkg/index"
	"github.com/agentstation/bibsync/pkg/logging"
	"github.com/agentstation/bibsync/pkg/reconciler"
	"github.com/agentstation/bibsync/pkg/records"
	"github.com/agentstation/bibsync/pkg/resolver"
	"github.com/agentstation/bibsync/pkg/sync"
)

// slot is one input record after normalization: an entry, or the outcome
// of a record that could not be normalized.
type slot struct {
	entry  *records.Entry
	failed *reconciler.Outcome
}

// Sync normalizes raws and reconciles them with the remote collections.
// Authors are resolved first, then each article is matched and written.
// Per entry failures are reported in the result; only configuration and
// listing failures return an error.
func (c *client) Sync(ctx context.Context, raws []records.Raw, opts ...sync.Option) (*sync.Result, error) {
	// Step 0: Set context
	if ctx == nil {
		ctx = context.Background()
	}

	// Step 1: Parse and validate options
	options := sync.Defaults().Apply(opts...)
	if err := options.Validate(); err != nil {
		return nil, err
	}
	if options.Runs(records.KindAuthor) && !options.Runs(records.KindArticle) && c.authors == nil {
		return nil, errors.NewAmbiguousConfigError("databases.authors", "no author collection configured")
	}

	// Step 2: Setup context with timeout
	var cancel context.CancelFunc
	if options.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
	} else {
		cancel = func() {} // No-op cancel if no timeout
	}
	defer cancel()

	logger := logging.FromContext(ctx)
	result := sync.NewResult(options.DryRun)
	defer result.Finalize()

	// Step 3: Snapshot the article collection before any write
	var articles *index.Index
	if options.Runs(records.KindArticle) {
		var err error
		articles, err = index.Build(logging.WithCollection(ctx, c.articles.Name), c.service, c.articles, index.WithStrict(options.Strict))
		if err != nil {
			return nil, err
		}
	}

	// Step 4: Normalize every input record
	slots := c.normalize(ctx, raws)

	// Step 5: Resolve authors
	var authorIDs *resolver.Resolution
	if c.authors != nil && (c.relational() || options.Runs(records.KindAuthor)) {
		resolution, err := c.syncAuthors(ctx, slots, options, result)
		if err != nil {
			return nil, err
		}
		if c.relational() {
			authorIDs = resolution
		}
	}

	// Step 6: Reconcile articles
	if articles != nil {
		if err := c.syncArticles(ctx, articles, slots, authorIDs, options, result); err != nil {
			return nil, err
		}
	}

	// Step 7: Log the summary
	counts := result.Counts()
	logger.Info().
		Int("created", counts.Created).
		Int("updated", counts.Updated).
		Int("skipped", counts.Skipped).
		Int("failed", counts.Failed).
		Bool("dry_run", options.DryRun).
		Msg("Sync completed")

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("%w: %w", errors.ErrCanceled, err)
	}
	return result, nil
}

func (c *client) normalize(ctx context.Context, raws []records.Raw) []slot {
	slots := make([]slot, len(raws))
	for i, raw := range raws {
		entry, err := c.normalizer.Article(raw)
		if err != nil {
			label := strings.TrimSpace(raw.String(records.RawTitle))
			if label == "" {
				label = raw.String(records.RawID)
			}
			if label == "" {
				label = fmt.Sprintf("entry #%d", i+1)
			}
			outcome := reconciler.Failed(nil, label, err)
			outcome.Kind = records.KindArticle
			outcome.ExternalID = raw.String(records.RawID)
			slots[i].failed = &outcome
			logging.FromContext(ctx).Warn().Err(err).Str("entry", label).Msg("Invalid entry")
			continue
		}
		slots[i].entry = entry
	}
	return slots
}

// syncAuthors resolves every author referenced by slots. When the author
// phase is not selected existing authors are looked up but none are
// created and no outcomes are reported.
func (c *client) syncAuthors(ctx context.Context, slots []slot, options *sync.Options, result *sync.Result) (*resolver.Resolution, error) {
	ctx = logging.WithCollection(ctx, c.authors.Name)

	idx, err := index.Build(ctx, c.service, c.authors, index.WithStrict(options.Strict))
	if err != nil {
		return nil, err
	}
	remoteCount := idx.Len()
	report := options.Runs(records.KindAuthor)

	rec, err := reconciler.New(
		reconciler.WithWriter(c.service),
		reconciler.WithDiffer(c.differ),
		reconciler.WithDryRun(options.DryRun || !report),
	)
	if err != nil {
		return nil, err
	}

	var refs []string
	for _, s := range slots {
		if s.entry != nil {
			refs = append(refs, s.entry.Authors...)
		}
	}

	emit := func(o reconciler.Outcome) {
		options.Emit(o)
		c.trigger(o)
	}
	if !report {
		emit = nil
	}
	resolution := resolver.New(idx, c.normalizer, c.matcher, rec).ResolveAll(ctx, refs, emit)

	if report {
		cr := result.Collection(records.KindAuthor, c.authors.Name, options)
		cr.InputCount = len(resolution.Outcomes)
		cr.RemoteCount = remoteCount
		cr.Shadowed = len(idx.Shadowed())
		for _, o := range resolution.Outcomes {
			cr.Add(o)
		}
	}
	return resolution, nil
}

func (c *client) syncArticles(ctx context.Context, idx *index.Index, slots []slot, authors *resolver.Resolution, options *sync.Options, result *sync.Result) error {
	ctx = logging.WithCollection(ctx, c.articles.Name)

	rec, err := reconciler.New(
		reconciler.WithWriter(c.service),
		reconciler.WithDiffer(c.differ),
		reconciler.WithDryRun(options.DryRun),
	)
	if err != nil {
		return err
	}

	cr := result.Collection(records.KindArticle, c.articles.Name, options)
	cr.InputCount = len(slots)
	cr.RemoteCount = idx.Len()
	cr.Shadowed = len(idx.Shadowed())

	for _, s := range slots {
		var outcome reconciler.Outcome
		if s.failed != nil {
			outcome = *s.failed
		} else {
			entry := s.entry
			if authors != nil {
				entry = entry.WithAttribute(records.FieldAuthors, records.Relation(authors.Lookup(entry.Authors)))
			}
			entryCtx := logging.WithEntry(ctx, entry.ExternalID)
			outcome = rec.Reconcile(entryCtx, entry, c.matcher.Match(entry, idx), idx)
		}
		cr.Add(outcome)
		options.Emit(outcome)
		c.trigger(outcome)
	}
	return nil
}
