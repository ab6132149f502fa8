package status

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/bibsync/pkg/reconciler"
	"github.com/agentstation/bibsync/pkg/records"
	"github.com/agentstation/bibsync/pkg/sync"
)

func TestOutcomePlain(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)

	w.Outcome(reconciler.Outcome{State: reconciler.StateCreated, Title: "Deep Nets"})
	w.Outcome(reconciler.Outcome{State: reconciler.StateUpdated, Title: "Deep Nets", Changed: []string{"Status"}})
	w.Outcome(reconciler.Outcome{State: reconciler.StateSkipped, Title: "Ada Lovelace"})
	w.Outcome(reconciler.Outcome{State: reconciler.StateFailed, Title: "entry #3", Reason: "missing ID", Err: errors.New("x")})

	assert.Equal(t, "Created: Deep Nets\nUpdated: Deep Nets\nSkipped: Ada Lovelace\nFailed: entry #3\n", buf.String())
}

func TestOutcomeVerboseAndDryRun(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf, WithVerbose(true))

	w.Outcome(reconciler.Outcome{State: reconciler.StateUpdated, Title: "A", Changed: []string{"Status", "Keywords"}})
	w.Outcome(reconciler.Outcome{State: reconciler.StateFailed, Title: "B", Reason: "rejected"})
	w.Outcome(reconciler.Outcome{State: reconciler.StateCreated, Title: "C", DryRun: true})

	assert.Equal(t, "Updated: A (Status, Keywords)\nFailed: B (rejected)\nCreated: C [dry run]\n", buf.String())
}

func TestOutcomeColor(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, WithColor(true)).Outcome(reconciler.Outcome{State: reconciler.StateCreated, Title: "Deep Nets"})

	assert.Contains(t, buf.String(), "\x1b[32m")
	assert.Contains(t, buf.String(), "Created:")
	assert.Contains(t, buf.String(), "Deep Nets")
}

func TestResult(t *testing.T) {
	result := sync.NewResult(false)
	cr := result.Collection(records.KindArticle, "Articles", sync.Defaults())
	cr.InputCount, cr.RemoteCount = 2, 7
	cr.Add(reconciler.Outcome{State: reconciler.StateCreated})
	cr.Add(reconciler.Outcome{State: reconciler.StateSkipped})

	var buf bytes.Buffer
	New(&buf).Result(result)
	assert.Equal(t, "Found 2 Articles in BibTeX and 7 on Notion.\n1 created, 0 updated, 1 skipped, 0 failed\n", buf.String())
}

func TestArchived(t *testing.T) {
	var buf bytes.Buffer
	recs := []*records.Record{{NaturalKey: "Ada Lovelace"}}

	New(&buf).Archived(records.KindAuthor, recs, true)
	assert.Equal(t, "Would archive: Ada Lovelace\n1 Authors would be archived.\n", buf.String())
}
