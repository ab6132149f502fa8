package normalize

import (
	"strings"
)

// Authors extracts display names from a raw author value. It accepts a
// BibTeX "A and B" string, a list of strings, or a list of name objects
// with "formatted", "first"/"last" or "given"/"family" keys.
func Authors(v any) []string {
	var names []string
	switch tv := v.(type) {
	case string:
		names = splitBibTeXNames(tv)
	case []string:
		names = tv
	case []any:
		for _, item := range tv {
			switch it := item.(type) {
			case string:
				names = append(names, it)
			case map[string]any:
				names = append(names, nameFromMap(it))
			}
		}
	}

	out := make([]string, 0, len(names))
	for _, n := range names {
		out = appendUnique(out, AuthorName(n))
	}
	return out
}

// AuthorName cleans one author reference. "Last, First" becomes
// "First Last" and "Last, Jr., First" becomes "First Last Jr.".
func AuthorName(s string) string {
	s = CleanText(s)
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	switch len(parts) {
	case 2:
		s = parts[1] + " " + parts[0]
	case 3:
		s = parts[2] + " " + parts[0] + " " + parts[1]
	}
	return collapseSpace(s)
}

func splitBibTeXNames(s string) []string {
	s = collapseSpace(s)
	if s == "" {
		return nil
	}
	return strings.Split(s, " and ")
}

func nameFromMap(m map[string]any) string {
	str := func(k string) string {
		v, _ := m[k].(string)
		return strings.TrimSpace(v)
	}
	if f := str("formatted"); f != "" {
		return f
	}
	if first, last := str("first"), str("last"); first != "" || last != "" {
		return strings.TrimSpace(first + " " + last)
	}
	return strings.TrimSpace(str("given") + " " + str("family"))
}
