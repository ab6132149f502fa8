package bibsync_test

import (
	"context"
	"testing"

	"github.com/agentstation/bibsync"
	"github.com/agentstation/bibsync/pkg/errors"
	"github.com/agentstation/bibsync/pkg/normalize"
	"github.com/agentstation/bibsync/pkg/reconciler"
	"github.com/agentstation/bibsync/pkg/records"
	"github.com/agentstation/bibsync/pkg/remote/memory"
	"github.com/agentstation/bibsync/pkg/sync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	articles = &records.Collection{ID: "articles-db", Name: "Papers", Kind: records.KindArticle}
	authors  = &records.Collection{ID: "authors-db", Name: "Authors", Kind: records.KindAuthor}
)

func rules() normalize.Rules {
	r := normalize.DefaultRules()
	r.States = map[string]records.Choice{
		"unread": {Name: "Unread", Color: "gray"},
		"done":   {Name: "Finished", Color: "green"},
	}
	return r
}

func newClient(t *testing.T, svc *memory.Service, opts ...bibsync.Option) bibsync.Client {
	t.Helper()
	opts = append([]bibsync.Option{
		bibsync.WithRules(rules()),
		bibsync.WithArticles(articles),
		bibsync.WithAuthors(authors),
	}, opts...)
	c, err := bibsync.New(svc, opts...)
	require.NoError(t, err)
	return c
}

func gnn() records.Raw {
	return records.Raw{
		"ID":        "abc123",
		"ENTRYTYPE": "article",
		"title":     "Graph Neural Networks",
		"author":    "J. Doe",
		"keywords":  "status:unread, graphs",
	}
}

func lines(res *sync.Result) []string {
	var out []string
	for _, o := range res.Outcomes() {
		out = append(out, o.String())
	}
	return out
}

func TestNewRequiresArticles(t *testing.T) {
	_, err := bibsync.New(nil)
	assert.True(t, errors.IsValidationError(err))

	_, err = bibsync.New(memory.New())
	require.Error(t, err)
	assert.True(t, errors.IsAmbiguousConfiguration(err))

	_, err = bibsync.New(memory.New(), bibsync.WithArticles(&records.Collection{
		ID:     "articles-db",
		Schema: records.ArticleSchema(true),
	}))
	assert.True(t, errors.IsAmbiguousConfiguration(err), "relation without an author collection")

	_, err = bibsync.New(memory.New(), bibsync.WithArticles(articles), bibsync.WithThreshold(records.KindAuthor, 101))
	assert.True(t, errors.IsValidationError(err))
}

func TestSyncCreatesArticleWithAuthor(t *testing.T) {
	ctx := context.Background()
	svc := memory.New()
	client := newClient(t, svc)

	res, err := client.Sync(ctx, []records.Raw{gnn()})
	require.NoError(t, err)

	assert.Equal(t, []string{"Created: J. Doe", "Created: Graph Neural Networks"}, lines(res))

	authorRecs := svc.Records(authors)
	require.Len(t, authorRecs, 1)
	articleRecs := svc.Records(articles)
	require.Len(t, articleRecs, 1)

	rel, ok := articleRecs[0].Fields.Get(records.FieldAuthors)
	require.True(t, ok)
	assert.Equal(t, records.Relation{authorRecs[0].RemoteID}, rel)
	assert.Equal(t, "abc123", articleRecs[0].Fields.Text(records.FieldID))

	assert.Equal(t, "Found 1 Articles in BibTeX and 0 on Notion.", res.Get(records.KindArticle).Summary())
}

func TestSyncIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := memory.New()
	client := newClient(t, svc)
	input := []records.Raw{
		gnn(),
		{"ID": "Smith2019", "title": "Attention Everywhere", "author": "Smith, John and J. Doe", "keywords": "status:done"},
	}

	_, err := client.Sync(ctx, input)
	require.NoError(t, err)
	svc.ResetCalls()

	res, err := client.Sync(ctx, input)
	require.NoError(t, err)

	for _, o := range res.Outcomes() {
		assert.Equal(t, reconciler.StateSkipped, o.State, o.String())
	}
	assert.Len(t, res.Get(records.KindArticle).Outcomes, len(input))
	assert.Zero(t, svc.CountCalls(memory.OpCreate))
	assert.Zero(t, svc.CountCalls(memory.OpUpdate))
	assert.False(t, res.HasChanges())
}

func TestSyncUpdatesChangedFields(t *testing.T) {
	ctx := context.Background()
	svc := memory.New()
	client := newClient(t, svc)

	_, err := client.Sync(ctx, []records.Raw{gnn()})
	require.NoError(t, err)

	changed := gnn()
	changed["keywords"] = "status:done, graphs"
	res, err := client.Sync(ctx, []records.Raw{changed})
	require.NoError(t, err)

	article := res.Get(records.KindArticle).Outcomes[0]
	assert.Equal(t, "Updated: Graph Neural Networks", article.String())
	assert.Equal(t, []string{records.FieldStatus}, article.Changed)
	assert.Equal(t, 1, svc.CountCalls(memory.OpUpdate))
}

func TestSyncInvalidEntryMakesNoCalls(t *testing.T) {
	ctx := context.Background()
	svc := memory.New()
	client := newClient(t, svc)

	res, err := client.Sync(ctx, []records.Raw{{"title": "No Identifier", "author": "Jane Doe"}})
	require.NoError(t, err)

	outcomes := res.Get(records.KindArticle).Outcomes
	require.Len(t, outcomes, 1)
	assert.Equal(t, "Failed: No Identifier", outcomes[0].String())
	assert.True(t, errors.IsInvalidEntry(outcomes[0].Err))
	assert.Zero(t, svc.CountCalls(memory.OpCreate))
	assert.Zero(t, svc.CountCalls(memory.OpUpdate))
	assert.Empty(t, res.Get(records.KindAuthor).Outcomes, "authors of invalid entries are not resolved")
}

func TestSyncFailureIsolation(t *testing.T) {
	ctx := context.Background()
	svc := memory.New(memory.WithFailure(func(op memory.Operation, _ string, fields records.Fields) error {
		if op == memory.OpCreate && fields.Text(records.FieldTitle) == "Second" {
			return errors.NewAPIError("memory", 502, "bad gateway")
		}
		return nil
	}))
	client := newClient(t, svc)

	var failed []string
	client.OnFailed(func(o reconciler.Outcome) { failed = append(failed, o.Title) })

	input := []records.Raw{
		{"ID": "a", "title": "First"},
		{"ID": "b", "title": "Second"},
		{"ID": "c", "title": "Third"},
	}
	res, err := client.Sync(ctx, input)
	require.NoError(t, err)

	assert.Equal(t, []string{"Created: First", "Failed: Second", "Created: Third"}, lines(res))
	assert.Equal(t, []string{"Second"}, failed)
	assert.True(t, res.HasFailures())
	assert.Len(t, svc.Records(articles), 2)
}

func TestSyncDryRun(t *testing.T) {
	ctx := context.Background()
	svc := memory.New()
	client := newClient(t, svc)

	var created int
	client.OnCreated(func(reconciler.Outcome) { created++ })

	var seen []string
	res, err := client.Sync(ctx, []records.Raw{gnn()},
		sync.WithDryRun(true),
		sync.WithOnOutcome(func(o reconciler.Outcome) { seen = append(seen, o.String()) }),
	)
	require.NoError(t, err)

	assert.True(t, res.DryRun)
	assert.Equal(t, []string{"Created: J. Doe", "Created: Graph Neural Networks"}, seen)
	assert.Zero(t, created, "hooks ignore dry run outcomes")
	assert.Zero(t, svc.CountCalls(memory.OpCreate))
}

func TestSyncArticlesOnlyLooksUpAuthors(t *testing.T) {
	ctx := context.Background()
	svc := memory.New()
	existing := svc.Seed(authors, records.Fields{{Name: records.FieldName, Value: records.Text("Jane Doe")}})
	client := newClient(t, svc)

	raw := gnn()
	raw["author"] = "Doe, Jane and Alan Turing"
	res, err := client.Sync(ctx, []records.Raw{raw}, sync.WithCollections(records.KindArticle))
	require.NoError(t, err)

	assert.Nil(t, res.Get(records.KindAuthor))
	assert.Equal(t, 1, svc.CountCalls(memory.OpCreate), "only the article is created")

	rel, _ := svc.Records(articles)[0].Fields.Get(records.FieldAuthors)
	assert.Equal(t, records.Relation{existing}, rel)
}

func TestSyncWithoutAuthorCollection(t *testing.T) {
	ctx := context.Background()
	svc := memory.New()
	client, err := bibsync.New(svc, bibsync.WithArticles(articles))
	require.NoError(t, err)

	res, err := client.Sync(ctx, []records.Raw{gnn()})
	require.NoError(t, err)
	assert.Nil(t, res.Get(records.KindAuthor))

	rec := svc.Records(articles)[0]
	v, _ := rec.Fields.Get(records.FieldAuthors)
	assert.Equal(t, []string{"J. Doe"}, v.(records.MultiChoice).Names())

	_, err = client.Sync(ctx, nil, sync.WithCollections(records.KindAuthor))
	assert.True(t, errors.IsAmbiguousConfiguration(err))
}

func TestSyncStrictDuplicates(t *testing.T) {
	svc := memory.New()
	for i := 0; i < 2; i++ {
		svc.Seed(articles, records.Fields{
			{Name: records.FieldTitle, Value: records.Text("Twice")},
			{Name: records.FieldID, Value: records.Text("dup")},
		})
	}
	client := newClient(t, svc)

	_, err := client.Sync(context.Background(), []records.Raw{gnn()}, sync.WithStrict(true))
	assert.True(t, errors.IsDuplicateKey(err))
	assert.Zero(t, svc.CountCalls(memory.OpCreate), "nothing is written when the snapshot fails")

	res, err := client.Sync(context.Background(), []records.Raw{gnn()})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Get(records.KindArticle).Shadowed)
}

func TestSyncListingFailureIsFatal(t *testing.T) {
	svc := memory.New(memory.WithFailure(func(op memory.Operation, _ string, _ records.Fields) error {
		if op == memory.OpList {
			return errors.NewAPIError("memory", 503, "unavailable")
		}
		return nil
	}))
	client := newClient(t, svc)

	_, err := client.Sync(context.Background(), []records.Raw{gnn()})
	assert.True(t, errors.IsServiceUnavailable(err))
}

func TestClean(t *testing.T) {
	ctx := context.Background()
	svc := memory.New()
	linked := svc.Seed(authors, records.Fields{
		{Name: records.FieldName, Value: records.Text("Jane Doe")},
		{Name: records.FieldArticles, Value: records.Relation{"page-1"}},
	})
	svc.Seed(authors, records.Fields{{Name: records.FieldName, Value: records.Text("Orphan")}})
	client := newClient(t, svc)

	cleaned, err := client.Clean(ctx, records.KindAuthor, true)
	require.NoError(t, err)
	require.Len(t, cleaned, 1)
	assert.Equal(t, "Orphan", cleaned[0].NaturalKey)
	assert.Zero(t, svc.CountCalls(memory.OpArchive))

	cleaned, err = client.Clean(ctx, records.KindAuthor, false)
	require.NoError(t, err)
	assert.Len(t, cleaned, 1)
	remaining := svc.Records(authors)
	require.Len(t, remaining, 1)
	assert.Equal(t, linked, remaining[0].RemoteID)
}

func TestCleanNeedsRelation(t *testing.T) {
	client, err := bibsync.New(memory.New(), bibsync.WithArticles(articles))
	require.NoError(t, err)

	_, err = client.Clean(context.Background(), records.KindArticle, true)
	assert.True(t, errors.IsValidationError(err))

	_, err = client.Clean(context.Background(), records.KindAuthor, true)
	assert.True(t, errors.IsAmbiguousConfiguration(err))
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	svc := memory.New()
	client := newClient(t, svc)
	_, err := client.Sync(ctx, []records.Raw{gnn()})
	require.NoError(t, err)

	rec, err := client.Get(ctx, records.KindArticle, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "Graph Neural Networks", rec.NaturalKey)

	rec, err = client.Get(ctx, records.KindAuthor, "J. Doe")
	require.NoError(t, err)
	assert.Equal(t, "J. Doe", rec.NaturalKey)

	_, err = client.Get(ctx, records.KindArticle, "missing")
	assert.True(t, errors.IsNotFound(err))
}
