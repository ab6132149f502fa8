package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/agentstation/bibsync/pkg/errors"
	"github.com/agentstation/bibsync/pkg/records"
)

// PaperpileURL is the item link used when an entry has no URL of its own.
const PaperpileURL = "https://paperpile.com/app/p/"

// Paperpile JSON keys.
const (
	jsonID      = "_id"
	jsonCiteKey = "citekey"
	jsonType    = "pubtype"
	jsonLabels  = "labelsNamed"
	jsonFolders = "foldersNamed"
)

// ReadJSON parses a Paperpile JSON export: a list of objects. The item ID
// is stored under records.RawID, falling back to the cite key. Objects
// without a string ID are kept so the normalizer can reject them.
func ReadJSON(r io.Reader) ([]records.Raw, error) {
	var items []map[string]any
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, errors.NewParseError(string(FormatJSON), "", err.Error(), err)
	}

	raws := make([]records.Raw, 0, len(items))
	for _, item := range items {
		raws = append(raws, fromPaperpile(item))
	}
	return raws, nil
}

func fromPaperpile(item map[string]any) records.Raw {
	raw := make(records.Raw, len(item)+4)
	for k, v := range item {
		raw[k] = v
	}

	id, _ := item[jsonID].(string)
	if id == "" {
		id, _ = item[jsonCiteKey].(string)
	}
	if id = strings.TrimSpace(id); id != "" {
		raw[records.RawID] = id
	}
	if t, ok := item[jsonType].(string); ok {
		raw[records.RawType] = strings.ToLower(t)
	}

	keywords := records.Raw(item).Strings(records.RawKeywords)
	keywords = append(keywords, records.Raw(item).Strings(jsonLabels)...)
	if len(keywords) > 0 {
		raw[records.RawKeywords] = keywords
	}
	if folders := records.Raw(item).Strings(jsonFolders); len(folders) > 0 {
		raw["folders"] = folders
	}

	switch u := item[records.RawURL].(type) {
	case []any:
		if len(u) > 0 {
			raw[records.RawURL] = fmt.Sprint(u[0])
		} else {
			delete(raw, records.RawURL)
		}
	case string:
	default:
		delete(raw, records.RawURL)
	}
	if _, ok := raw[records.RawURL]; !ok && id != "" {
		if itemID, ok := item[jsonID].(string); ok && itemID != "" {
			raw[records.RawURL] = PaperpileURL + itemID
		}
	}
	return raw
}
