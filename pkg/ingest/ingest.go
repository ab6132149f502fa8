// Package ingest reads bibliography exports into raw records.
//
// BibTeX files are parsed with nickng/bibtex; each entry's cite key becomes
// the external identifier. Paperpile JSON exports are decoded as a list of
// objects; the Paperpile item ID is the external identifier, labels become
// keywords and folder names become folders. Either way the result is a list
// of records.Raw in file order, ready for the normalizer.
package ingest

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentstation/bibsync/pkg/errors"
	"github.com/agentstation/bibsync/pkg/records"
)

// Format identifies an export format.
type Format string

// Supported formats.
const (
	FormatBibTeX Format = "BibTeX"
	FormatJSON   Format = "JSON"
)

// DetectFormat picks the format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bib", ".bibtex":
		return FormatBibTeX, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", &errors.ValidationError{
			Field:   "path",
			Value:   path,
			Message: "unsupported export format, expected .bib or .json",
		}
	}
}

// Read parses r in the given format.
func Read(r io.Reader, format Format) ([]records.Raw, error) {
	switch format {
	case FormatBibTeX:
		return ReadBibTeX(r)
	case FormatJSON:
		return ReadJSON(r)
	default:
		return nil, &errors.ValidationError{Field: "format", Value: format, Message: "unsupported format"}
	}
}

// ReadFile reads the export at path, choosing the format by extension.
func ReadFile(path string) ([]records.Raw, Format, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, "", errors.WrapIO("open", path, err)
	}
	defer f.Close()

	raws, err := Read(f, format)
	if err != nil {
		var parseErr *errors.ParseError
		if errors.As(err, &parseErr) {
			parseErr.File = path
		}
		return nil, "", err
	}
	return raws, format, nil
}
