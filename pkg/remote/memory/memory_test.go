package memory_test

import (
	"context"
	"testing"

	"github.com/agentstation/bibsync/pkg/errors"
	"github.com/agentstation/bibsync/pkg/records"
	"github.com/agentstation/bibsync/pkg/remote/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authors() *records.Collection {
	return &records.Collection{ID: "authors", Name: "Authors", Kind: records.KindAuthor, Schema: records.AuthorSchema()}
}

func name(n string) records.Fields {
	return records.Fields{{Name: "Name", Value: records.Text(n)}}
}

func TestListCollectionPages(t *testing.T) {
	ctx := context.Background()
	svc := memory.New(memory.WithPageSize(2))
	coll := authors()
	for _, n := range []string{"A", "B", "C", "D", "E"} {
		svc.Seed(coll, name(n))
	}

	var got []string
	cursor := ""
	pages := 0
	for {
		page, err := svc.ListCollection(ctx, coll, cursor)
		require.NoError(t, err)
		pages++
		for _, r := range page.Records {
			got = append(got, r.NaturalKey)
		}
		if !page.HasMore {
			assert.Empty(t, page.NextCursor)
			break
		}
		cursor = page.NextCursor
	}

	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, got)
	assert.Equal(t, 3, pages)
	assert.Equal(t, 3, svc.CountCalls(memory.OpList))
}

func TestCreateUpdateGet(t *testing.T) {
	ctx := context.Background()
	svc := memory.New()
	coll := authors()

	id, err := svc.CreateRecord(ctx, coll, name("Jane Doe"))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	err = svc.UpdateRecord(ctx, coll, id, records.Fields{{Name: "Aliases", Value: records.Text("J. Doe")}})
	require.NoError(t, err)

	rec, err := svc.GetRecord(ctx, coll, "Name", "Jane Doe")
	require.NoError(t, err)
	assert.Equal(t, id, rec.RemoteID)
	assert.Equal(t, "J. Doe", rec.Fields.Text("Aliases"))

	_, err = svc.GetRecord(ctx, coll, "Name", "Nobody")
	assert.True(t, errors.IsNotFound(err))
}

func TestWritesAreValidated(t *testing.T) {
	ctx := context.Background()
	svc := memory.New()

	_, err := svc.CreateRecord(ctx, authors(), records.Fields{{Name: "Unknown", Value: records.Text("x")}})
	assert.True(t, errors.IsServiceRejected(err))

	err = svc.UpdateRecord(ctx, authors(), "missing", name("x"))
	assert.True(t, errors.IsNotFound(err))
}

func TestFailureInjection(t *testing.T) {
	ctx := context.Background()
	svc := memory.New(memory.WithFailure(func(op memory.Operation, _ string, _ records.Fields) error {
		if op == memory.OpCreate {
			return errors.NewAPIError("memory", 503, "down")
		}
		return nil
	}))

	_, err := svc.CreateRecord(ctx, authors(), name("Jane Doe"))
	assert.True(t, errors.IsServiceUnavailable(err))
	assert.Empty(t, svc.Records(authors()))
	assert.Equal(t, 1, svc.CountCalls(memory.OpCreate))
}

func TestArchiveHidesRecord(t *testing.T) {
	ctx := context.Background()
	svc := memory.New()
	coll := authors()
	id := svc.Seed(coll, name("Jane Doe"))

	require.NoError(t, svc.ArchiveRecord(ctx, id))
	assert.Empty(t, svc.Records(coll))
	assert.True(t, errors.IsNotFound(svc.ArchiveRecord(ctx, "missing")))
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := memory.New().ListCollection(ctx, authors(), "")
	assert.ErrorIs(t, err, context.Canceled)
}
