// Package table converts bibsync results to table data.
package table

import (
	"strconv"
	"strings"

	"github.com/agentstation/bibsync/internal/cmd/output"
	"github.com/agentstation/bibsync/pkg/records"
	"github.com/agentstation/bibsync/pkg/sync"
)

// maxCell is the widest cell rendered before truncation.
const maxCell = 60

// ResultToTableData converts a sync result to one row per collection.
func ResultToTableData(result *sync.Result) output.Data {
	rows := make([][]string, 0, len(result.Collections))
	for _, cr := range result.Collections {
		rows = append(rows, []string{
			cr.Name,
			strconv.Itoa(cr.InputCount),
			strconv.Itoa(cr.RemoteCount),
			strconv.Itoa(cr.Counts.Created),
			strconv.Itoa(cr.Counts.Updated),
			strconv.Itoa(cr.Counts.Skipped),
			strconv.Itoa(cr.Counts.Failed),
		})
	}
	return output.Data{
		Headers: []string{"Collection", "Input", "Remote", "Created", "Updated", "Skipped", "Failed"},
		Rows:    rows,
		ColumnAlignment: []output.Align{
			output.AlignLeft, output.AlignRight, output.AlignRight, output.AlignRight,
			output.AlignRight, output.AlignRight, output.AlignRight,
		},
	}
}

// RecordToTableData converts a record to field and value rows, in schema
// order.
func RecordToTableData(rec *records.Record) output.Data {
	rows := [][]string{{"Page", rec.RemoteID}}
	for _, f := range rec.Fields {
		value := "-"
		if f.Value != nil && !f.Value.IsEmpty() {
			value = truncate(f.Value.String())
		}
		rows = append(rows, []string{f.Name, value})
	}
	return output.Data{
		Headers: []string{"Field", "Value"},
		Rows:    rows,
	}
}

// RecordsToTableData lists records by key.
func RecordsToTableData(recs []*records.Record) output.Data {
	rows := make([][]string, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, []string{truncate(rec.NaturalKey), rec.RemoteID})
	}
	return output.Data{
		Headers: []string{"Name", "Page"},
		Rows:    rows,
	}
}

func truncate(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > maxCell {
		return string(r[:maxCell-3]) + "..."
	}
	return s
}
