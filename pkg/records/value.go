// Package records defines the data model shared by every stage of a sync:
// attribute values, canonical entries built from the bibliography, remote
// records read from the service, and the configuration driven schema that
// describes each remote collection.
package records

import (
	"slices"
	"strings"
)

// Kind identifies the variant of a Value.
type Kind string

// Value kinds.
const (
	KindText        Kind = "text"
	KindChoice      Kind = "choice"
	KindMultiChoice Kind = "multi_choice"
	KindRelation    Kind = "relation"
)

// Value is an attribute value. The set of implementations is closed:
// Text, Choice, MultiChoice and Relation.
type Value interface {
	// Kind reports the variant.
	Kind() Kind
	// IsEmpty reports whether the value carries no data.
	IsEmpty() bool
	// String renders the value for humans.
	String() string

	sealed()
}

// Text is a plain text value. It backs title, rich text and URL properties.
type Text string

// Choice is a single select option.
type Choice struct {
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
}

// MultiChoice is a multi select value.
type MultiChoice []Choice

// Relation holds remote IDs of related records, in order.
type Relation []string

func (Text) Kind() Kind        { return KindText }
func (Choice) Kind() Kind      { return KindChoice }
func (MultiChoice) Kind() Kind { return KindMultiChoice }
func (Relation) Kind() Kind    { return KindRelation }

func (t Text) IsEmpty() bool        { return strings.TrimSpace(string(t)) == "" }
func (c Choice) IsEmpty() bool      { return c.Name == "" }
func (m MultiChoice) IsEmpty() bool { return len(m) == 0 }
func (r Relation) IsEmpty() bool    { return len(r) == 0 }

func (t Text) String() string   { return string(t) }
func (c Choice) String() string { return c.Name }

func (m MultiChoice) String() string {
	return strings.Join(m.Names(), ", ")
}

func (r Relation) String() string {
	return strings.Join(r, ", ")
}

func (Text) sealed()        {}
func (Choice) sealed()      {}
func (MultiChoice) sealed() {}
func (Relation) sealed()    {}

// Names returns the option names in order.
func (m MultiChoice) Names() []string {
	names := make([]string, 0, len(m))
	for _, c := range m {
		names = append(names, c.Name)
	}
	return names
}

// NewMultiChoice builds a MultiChoice from names sharing one color.
func NewMultiChoice(color string, names ...string) MultiChoice {
	m := make(MultiChoice, 0, len(names))
	for _, n := range names {
		m = append(m, Choice{Name: n, Color: color})
	}
	return m
}

// Zero returns the empty value of kind k.
func Zero(k Kind) Value {
	switch k {
	case KindChoice:
		return Choice{}
	case KindMultiChoice:
		return MultiChoice{}
	case KindRelation:
		return Relation{}
	default:
		return Text("")
	}
}

// Equal compares two values by kind:
//   - Text by string equality
//   - Choice by option name; colors are presentation only
//   - MultiChoice as sets of option names
//   - Relation by remote ID identity, in order
//
// A nil value equals the empty value of the other side's kind.
// Values of different kinds are never equal.
func Equal(a, b Value) bool {
	switch {
	case a == nil && b == nil:
		return true
	case a == nil:
		return b.IsEmpty()
	case b == nil:
		return a.IsEmpty()
	case a.Kind() != b.Kind():
		return false
	}

	switch av := a.(type) {
	case Text:
		return string(av) == string(b.(Text))
	case Choice:
		return av.Name == b.(Choice).Name
	case MultiChoice:
		return sameNameSet(av, b.(MultiChoice))
	case Relation:
		bv := b.(Relation)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if NormalizeID(av[i]) != NormalizeID(bv[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func sameNameSet(a, b MultiChoice) bool {
	as := nameSet(a)
	bs := nameSet(b)
	if len(as) != len(bs) {
		return false
	}
	for n := range as {
		if _, ok := bs[n]; !ok {
			return false
		}
	}
	return true
}

func nameSet(m MultiChoice) map[string]struct{} {
	set := make(map[string]struct{}, len(m))
	for _, c := range m {
		set[c.Name] = struct{}{}
	}
	return set
}

// NormalizeID canonicalizes a remote ID so that dashed and undashed
// spellings of the same UUID compare equal.
func NormalizeID(id string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(id), "-", ""))
}

// Clone returns a deep copy of v.
func Clone(v Value) Value {
	switch tv := v.(type) {
	case MultiChoice:
		return slices.Clone(tv)
	case Relation:
		return slices.Clone(tv)
	default:
		return v
	}
}
