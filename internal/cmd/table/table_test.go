package table

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/bibsync/pkg/reconciler"
	"github.com/agentstation/bibsync/pkg/records"
	"github.com/agentstation/bibsync/pkg/sync"
)

func TestResultToTableData(t *testing.T) {
	result := sync.NewResult(false)
	cr := result.Collection(records.KindArticle, "Articles", sync.Defaults())
	cr.InputCount, cr.RemoteCount = 3, 5
	cr.Add(reconciler.Outcome{State: reconciler.StateCreated})
	cr.Add(reconciler.Outcome{State: reconciler.StateSkipped})
	cr.Add(reconciler.Outcome{State: reconciler.StateFailed})

	data := ResultToTableData(result)
	require.Len(t, data.Rows, 1)
	assert.Equal(t, []string{"Articles", "3", "5", "1", "0", "1", "1"}, data.Rows[0])
	assert.Len(t, data.ColumnAlignment, len(data.Headers))
}

func TestRecordToTableData(t *testing.T) {
	rec := &records.Record{
		RemoteID: "page-1",
		Fields: records.Fields{
			{Name: "Title", Value: records.Text(strings.Repeat("word ", 20))},
			{Name: "Status", Value: records.Choice{}},
			{Name: "Keywords", Value: records.NewMultiChoice("", "a", "b")},
		},
	}
	data := RecordToTableData(rec)
	require.Len(t, data.Rows, 4)
	assert.Equal(t, []string{"Page", "page-1"}, data.Rows[0])
	assert.Len(t, []rune(data.Rows[1][1]), maxCell)
	assert.True(t, strings.HasSuffix(data.Rows[1][1], "..."))
	assert.Equal(t, "-", data.Rows[2][1])
	assert.Equal(t, records.NewMultiChoice("", "a", "b").String(), data.Rows[3][1])
}

func TestRecordsToTableData(t *testing.T) {
	data := RecordsToTableData([]*records.Record{{RemoteID: "a", NaturalKey: "Ada Lovelace"}})
	assert.Equal(t, [][]string{{"Ada Lovelace", "a"}}, data.Rows)
}
