package sync_test

import (
	"testing"
	"time"

	"github.com/agentstation/bibsync/pkg/errors"
	"github.com/agentstation/bibsync/pkg/reconciler"
	"github.com/agentstation/bibsync/pkg/records"
	"github.com/agentstation/bibsync/pkg/sync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions(t *testing.T) {
	var got []reconciler.Outcome
	opts := sync.Defaults().Apply(
		sync.WithDryRun(true),
		sync.WithStrict(true),
		sync.WithTimeout(time.Minute),
		sync.WithCollections(records.KindArticle),
		sync.WithSource("JSON"),
		sync.WithOnOutcome(func(o reconciler.Outcome) { got = append(got, o) }),
	)

	require.NoError(t, opts.Validate())
	assert.True(t, opts.DryRun)
	assert.True(t, opts.Strict)
	assert.Equal(t, "JSON", opts.Source)
	assert.Equal(t, "Notion", opts.Remote)
	assert.True(t, opts.Runs(records.KindArticle))
	assert.False(t, opts.Runs(records.KindAuthor))

	opts.Emit(reconciler.Outcome{Title: "x"})
	assert.Len(t, got, 1)

	assert.True(t, sync.Defaults().Runs(records.KindAuthor), "empty selection runs everything")
}

func TestOptionsValidate(t *testing.T) {
	err := sync.Defaults().Apply(sync.WithTimeout(-time.Second)).Validate()
	assert.True(t, errors.IsValidationError(err))

	err = sync.Defaults().Apply(sync.WithCollections("journals")).Validate()
	assert.True(t, errors.IsValidationError(err))
}

func TestResultSummary(t *testing.T) {
	opts := sync.Defaults()
	res := sync.NewResult(false)

	authors := res.Collection(records.KindAuthor, "Authors", opts)
	authors.InputCount, authors.RemoteCount = 2, 5
	authors.Add(reconciler.Outcome{State: reconciler.StateCreated})
	authors.Add(reconciler.Outcome{State: reconciler.StateSkipped})

	articles := res.Collection(records.KindArticle, "Papers", opts)
	articles.InputCount, articles.RemoteCount = 3, 30
	articles.Add(reconciler.Outcome{State: reconciler.StateUpdated})
	articles.Add(reconciler.Outcome{State: reconciler.StateFailed})
	articles.Add(reconciler.Outcome{State: reconciler.StateSkipped})
	res.Finalize()

	assert.Equal(t, "Found 3 Articles in BibTeX and 30 on Notion.", articles.Summary())
	assert.Equal(t, "Found 2 Authors in BibTeX and 5 on Notion.", authors.Summary())
	assert.Len(t, res.Outcomes(), 5)
	assert.True(t, res.HasChanges())
	assert.True(t, res.HasFailures())
	assert.Same(t, articles, res.Get(records.KindArticle))
	assert.GreaterOrEqual(t, res.Duration, time.Duration(0))
	assert.Contains(t, res.Summary(), "1 created, 1 updated, 2 skipped, 1 failed")
}
