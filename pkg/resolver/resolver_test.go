package resolver_test

import (
	"context"
	"testing"

	"github.com/agentstation/bibsync/pkg/errors"
	"github.com/agentstation/bibsync/pkg/index"
	"github.com/agentstation/bibsync/pkg/matcher"
	"github.com/agentstation/bibsync/pkg/normalize"
	"github.com/agentstation/bibsync/pkg/reconciler"
	"github.com/agentstation/bibsync/pkg/records"
	"github.com/agentstation/bibsync/pkg/remote/memory"
	"github.com/agentstation/bibsync/pkg/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authors() *records.Collection {
	return &records.Collection{ID: "authors", Name: "Authors", Kind: records.KindAuthor, Schema: records.AuthorSchema()}
}

func newResolver(t *testing.T, svc *memory.Service, dryRun bool, seed ...string) (*resolver.Resolver, *index.Index) {
	t.Helper()
	coll := authors()
	for _, name := range seed {
		svc.Seed(coll, records.Fields{{Name: records.FieldName, Value: records.Text(name)}})
	}
	idx, err := index.Build(context.Background(), svc, coll)
	require.NoError(t, err)

	rec, err := reconciler.New(reconciler.WithWriter(svc), reconciler.WithDryRun(dryRun))
	require.NoError(t, err)
	return resolver.New(idx, normalize.New(normalize.DefaultRules()), matcher.New(), rec), idx
}

func TestResolveCreatesMissingAuthor(t *testing.T) {
	svc := memory.New()
	r, idx := newResolver(t, svc, false)

	id, outcome := r.Resolve(context.Background(), "Doe, Jane")

	require.NotEmpty(t, id)
	assert.Equal(t, reconciler.StateCreated, outcome.State)
	assert.Equal(t, "Created: Jane Doe", outcome.String())
	assert.Equal(t, 1, idx.Len())

	created := svc.Records(authors())
	require.Len(t, created, 1)
	assert.Equal(t, "Jane Doe", created[0].Fields.Text(records.FieldName))
	assert.True(t, created[0].Fields.Has(records.FieldDisciplines), "schema defaults are written")
}

func TestResolveReusesExistingAuthor(t *testing.T) {
	svc := memory.New()
	r, _ := newResolver(t, svc, false, "Jane Doe")

	id, outcome := r.Resolve(context.Background(), "J. Doe")

	assert.NotEmpty(t, id)
	assert.Equal(t, reconciler.StateSkipped, outcome.State)
	assert.Equal(t, "fuzzy", outcome.Match)
	assert.Zero(t, svc.CountCalls(memory.OpCreate))
	assert.Zero(t, svc.CountCalls(memory.OpUpdate), "authors are never updated")
}

func TestRecurringAuthorCreatedOnce(t *testing.T) {
	ctx := context.Background()
	svc := memory.New()
	r, _ := newResolver(t, svc, false)

	first, _ := r.Resolve(ctx, "Jane Doe")
	second, outcome := r.Resolve(ctx, "Jane Doe")

	assert.Equal(t, first, second)
	assert.Equal(t, reconciler.StateSkipped, outcome.State)
	assert.Equal(t, 1, svc.CountCalls(memory.OpCreate))
}

func TestResolveAllDeduplicates(t *testing.T) {
	svc := memory.New()
	r, _ := newResolver(t, svc, false, "Yoshua Bengio")

	var seen []string
	res := r.ResolveAll(context.Background(), []string{"Doe, Jane", "Yoshua Bengio", "Jane Doe", "Doe, Jane"}, func(o reconciler.Outcome) {
		seen = append(seen, o.String())
	})

	assert.Equal(t, []string{"Created: Jane Doe", "Skipped: Yoshua Bengio"}, seen)
	assert.Len(t, res.Outcomes, 2)
	assert.Equal(t, 1, svc.CountCalls(memory.OpCreate))
	assert.Equal(t, res.IDs["Doe, Jane"], res.IDs["Jane Doe"])

	ids := res.Lookup([]string{"Jane Doe", "Yoshua Bengio", "Doe, Jane", "Unknown Person"})
	assert.Len(t, ids, 2)
	assert.Equal(t, res.IDs["Jane Doe"], ids[0])

	c := res.Counts()
	assert.Equal(t, 1, c.Created)
	assert.Equal(t, 1, c.Skipped)
}

func TestResolveAllContinuesAfterFailure(t *testing.T) {
	svc := memory.New(memory.WithFailure(func(op memory.Operation, _ string, fields records.Fields) error {
		if op == memory.OpCreate && fields.Text(records.FieldName) == "Jane Doe" {
			return errors.NewAPIError("memory", 503, "unavailable")
		}
		return nil
	}))
	r, _ := newResolver(t, svc, false)

	res := r.ResolveAll(context.Background(), []string{"Jane Doe", "Alan Turing"}, nil)

	require.Len(t, res.Outcomes, 2)
	assert.Equal(t, reconciler.StateFailed, res.Outcomes[0].State)
	assert.True(t, errors.IsServiceUnavailable(res.Outcomes[0].Err))
	assert.Equal(t, reconciler.StateCreated, res.Outcomes[1].State)
	_, ok := res.IDs["Jane Doe"]
	assert.False(t, ok)
	assert.NotEmpty(t, res.IDs["Alan Turing"])
}

func TestResolveAllDryRun(t *testing.T) {
	svc := memory.New()
	r, idx := newResolver(t, svc, true)

	res := r.ResolveAll(context.Background(), []string{"Jane Doe", "Jane Doe"}, nil)

	require.Len(t, res.Outcomes, 1)
	assert.Equal(t, reconciler.StateCreated, res.Outcomes[0].State)
	assert.True(t, res.Outcomes[0].DryRun)
	assert.Empty(t, res.IDs)
	assert.Zero(t, idx.Len())
	assert.Zero(t, svc.CountCalls(memory.OpCreate))
}

func TestResolveEmptyReference(t *testing.T) {
	svc := memory.New()
	r, _ := newResolver(t, svc, false)

	id, outcome := r.Resolve(context.Background(), "   ")
	assert.Empty(t, id)
	assert.Equal(t, reconciler.StateFailed, outcome.State)
	assert.True(t, errors.IsInvalidEntry(outcome.Err))
	assert.Zero(t, svc.CountCalls(memory.OpCreate))
}
