package records

import (
	"fmt"
	"strings"
)

// Raw is a bibliographic record as read from an export: field names mapped
// to strings, lists of strings or nested maps.
type Raw map[string]any

// Standard raw keys produced by the ingest readers.
const (
	RawID       = "ID"
	RawType     = "ENTRYTYPE"
	RawTitle    = "title"
	RawAuthor   = "author"
	RawEditor   = "editor"
	RawKeywords = "keywords"
	RawURL      = "url"
)

// String returns the value under key as a string. Non-string scalars are
// formatted; lists and maps yield "".
func (r Raw) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case int, int64, float64, bool:
		return fmt.Sprint(v)
	default:
		return ""
	}
}

// Strings returns the value under key as a list. A string is split on
// commas and semicolons; lists keep their string elements.
func (r Raw) Strings(key string) []string {
	switch v := r[key].(type) {
	case string:
		return splitList(v)
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func splitList(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
