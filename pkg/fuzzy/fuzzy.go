// Package fuzzy scores the similarity of two short strings, such as article
// titles or author names, on a 0-100 scale.
//
// TokenSetRatio ignores word order, duplicated words and punctuation, and
// rewards one string being a word-subset of the other:
//
//	fuzzy.TokenSetRatio("Deep Learning", "learning, deep")  // 100
//	fuzzy.TokenSetRatio("J. Doe", "Jane Doe")               // 77
package fuzzy

import (
	"math"
	"slices"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Scorer computes a similarity score between 0 and 100.
type Scorer func(a, b string) int

// Process prepares a string for comparison: non-ASCII characters are dropped,
// anything other than letters, digits and underscore becomes a space, and
// the result is lower cased and trimmed.
func Process(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 0x80:
			continue
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '_':
			b.WriteByte(c)
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c + ('a' - 'A'))
		default:
			b.WriteByte(' ')
		}
	}
	return strings.TrimSpace(b.String())
}

// Ratio is the sequence similarity of a and b scaled to 0-100 and rounded
// half to even. Identical strings score 100; an empty side scores 0.
func Ratio(a, b string) int {
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	m := difflib.NewMatcher(chars(a), chars(b))
	return int(math.RoundToEven(100 * m.Ratio()))
}

// TokenSetRatio compares the word sets of a and b. The shared words are
// compared against each side's full word set and the best score wins.
// Strings that are empty after processing score 0.
func TokenSetRatio(a, b string) int {
	pa, pb := Process(a), Process(b)
	if pa == "" || pb == "" {
		return 0
	}

	ta, tb := tokenSet(pa), tokenSet(pb)

	var common, onlyA, onlyB []string
	for t := range ta {
		if _, ok := tb[t]; ok {
			common = append(common, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for t := range tb {
		if _, ok := ta[t]; !ok {
			onlyB = append(onlyB, t)
		}
	}

	sect := joinSorted(common)
	combinedA := strings.TrimSpace(sect + " " + joinSorted(onlyA))
	combinedB := strings.TrimSpace(sect + " " + joinSorted(onlyB))

	return max(
		Ratio(sect, combinedA),
		Ratio(sect, combinedB),
		Ratio(combinedA, combinedB),
	)
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(s)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func joinSorted(tokens []string) string {
	slices.Sort(tokens)
	return strings.Join(tokens, " ")
}

// chars splits an ASCII string into one element per byte.
func chars(s string) []string {
	out := make([]string, len(s))
	for i := 0; i < len(s); i++ {
		out[i] = s[i : i+1]
	}
	return out
}
