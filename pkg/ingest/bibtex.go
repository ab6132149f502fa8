package ingest

import (
	"io"
	"strings"

	"github.com/nickng/bibtex"

	"github.com/agentstation/bibsync/pkg/errors"
	"github.com/agentstation/bibsync/pkg/records"
)

// ReadBibTeX parses a BibTeX export. Field names are lowercased, the cite
// key is stored under records.RawID and the entry type under
// records.RawType.
func ReadBibTeX(r io.Reader) ([]records.Raw, error) {
	bib, err := bibtex.Parse(r)
	if err != nil {
		return nil, errors.NewParseError(string(FormatBibTeX), "", err.Error(), err)
	}

	raws := make([]records.Raw, 0, len(bib.Entries))
	for _, entry := range bib.Entries {
		raw := records.Raw{
			records.RawType: strings.ToLower(entry.Type),
		}
		if key := strings.TrimSpace(entry.CiteName); key != "" {
			raw[records.RawID] = key
		}
		for name, value := range entry.Fields {
			if value == nil {
				continue
			}
			raw[strings.ToLower(name)] = strings.TrimSpace(value.String())
		}
		raws = append(raws, raw)
	}
	return raws, nil
}
