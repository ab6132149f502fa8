// Package normalize turns raw bibliographic records into canonical entries.
//
// Normalization is a pure function of the record and the configured Rules:
// titles and names are cleaned, tags are sorted into status, topics,
// fields and methods, folders and keywords, and every choice name is made
// acceptable to the remote service.
package normalize

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/agentstation/bibsync/pkg/constants"
	"github.com/agentstation/bibsync/pkg/errors"
	"github.com/agentstation/bibsync/pkg/records"
)

// Normalizer builds canonical entries. It is safe for concurrent use.
type Normalizer struct {
	rules    Rules
	articles *records.Schema
	authors  *records.Schema
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithArticleSchema sets the article collection layout.
func WithArticleSchema(s *records.Schema) Option {
	return func(n *Normalizer) {
		if s != nil {
			n.articles = s
		}
	}
}

// WithAuthorSchema sets the author collection layout.
func WithAuthorSchema(s *records.Schema) Option {
	return func(n *Normalizer) {
		if s != nil {
			n.authors = s
		}
	}
}

// New creates a Normalizer for rules.
func New(rules Rules, opts ...Option) *Normalizer {
	n := &Normalizer{
		rules:    rules.prepared(),
		articles: records.ArticleSchema(true),
		authors:  records.AuthorSchema(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Article normalizes one raw article record. Records without a string
// external identifier or a title fail with an InvalidEntryError.
func (n *Normalizer) Article(raw records.Raw) (*records.Entry, error) {
	rawID, ok := raw[records.RawID].(string)
	if !ok && raw[records.RawID] != nil {
		return nil, errors.NewInvalidEntryError("", records.RawID, "external identifier is not a string")
	}
	id := strings.TrimSpace(rawID)
	if id == "" {
		return nil, errors.NewInvalidEntryError("", records.RawID, "missing external identifier")
	}
	title := CleanText(raw.String(records.RawTitle))
	if title == "" {
		return nil, errors.NewInvalidEntryError(id, records.RawTitle, "missing title")
	}

	authors := Authors(raw[records.RawAuthor])
	tags := n.classify(dedupe(raw.Strings(records.RawKeywords)))
	tags.folders = appendUnique(tags.folders, raw.Strings("folders")...)

	entry := &records.Entry{
		Kind:        records.KindArticle,
		ExternalID:  id,
		TitleOrName: title,
		Authors:     authors,
	}

	var attrs records.Fields
	set := func(name string, v records.Value) {
		if _, ok := n.articles.Field(name); ok {
			attrs.Set(name, v)
		}
	}

	set(n.articles.TitleField, records.Text(title))
	set(n.articles.KeyField, records.Text(id))
	if spec, ok := n.articles.Field(records.FieldAuthors); ok && spec.Property == records.PropertyMultiSelect {
		set(records.FieldAuthors, choices(records.ColorDefault, authors))
	}
	set(records.FieldStatus, tags.status)
	set(records.FieldFields, tags.fields)
	set(records.FieldMethods, tags.methods)
	set(records.FieldTopics, tags.topics)
	set(records.FieldFolders, choices(records.ColorDefault, tags.folders))
	set(records.FieldKeywords, choices(records.ColorDefault, tags.keywords))
	if venue := n.venue(raw); venue != "" {
		set(records.FieldVenue, records.Choice{Name: venue, Color: records.ColorDefault})
	}
	if url := strings.TrimSpace(raw.String(records.RawURL)); url != "" {
		set(records.FieldURL, records.Text(firstURL(url)))
	}

	entry.Attributes = n.articles.ApplyDefaults(attrs)
	return entry, nil
}

// Author builds the minimal entry for an author reference.
func (n *Normalizer) Author(ref string) *records.Entry {
	name := AuthorName(ref)
	var attrs records.Fields
	attrs.Set(n.authors.TitleField, records.Text(name))
	return &records.Entry{
		Kind:        records.KindAuthor,
		TitleOrName: name,
		Attributes:  n.authors.ApplyDefaults(attrs),
	}
}

// ArticleSchema returns the article layout in use.
func (n *Normalizer) ArticleSchema() *records.Schema { return n.articles }

// AuthorSchema returns the author layout in use.
func (n *Normalizer) AuthorSchema() *records.Schema { return n.authors }

func (n *Normalizer) venue(raw records.Raw) string {
	field, ok := n.rules.Venues[strings.ToLower(raw.String(records.RawType))]
	if !ok {
		return ""
	}
	return CleanOption(CleanText(raw.String(field)))
}

// tagSet is the result of sorting an entry's tags.
type tagSet struct {
	status   records.Choice
	fields   records.MultiChoice
	methods  records.MultiChoice
	topics   records.MultiChoice
	folders  []string
	keywords []string
}

// classify sorts tags in input order. The first status tag wins; later
// ones are dropped.
func (n *Normalizer) classify(tags []string) tagSet {
	r := n.rules
	ts := tagSet{
		fields:  records.MultiChoice{},
		methods: records.MultiChoice{},
		topics:  records.MultiChoice{},
	}
	statusSet := false

	for _, tag := range tags {
		switch {
		case r.StatusPrefix != "" && strings.HasPrefix(tag, r.StatusPrefix):
			if statusSet {
				continue
			}
			statusSet = true
			if c, ok := r.States[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(tag, r.StatusPrefix)))]; ok {
				ts.status = c
			}

		case r.TopicPrefix != "" && strings.HasPrefix(tag, r.TopicPrefix):
			key := strings.TrimSpace(strings.TrimPrefix(tag, r.TopicPrefix))
			ts.topics = appendChoice(ts.topics, lookup(r.Topics, key, records.ColorDefault))

		case r.Delimiter != "" && strings.Contains(tag, r.Delimiter):
			parts := strings.Split(tag, r.Delimiter)
			if len(parts) != 2 {
				ts.keywords = append(ts.keywords, CleanOption(tag))
				continue
			}
			field := lookup(r.Fields, strings.TrimSpace(parts[0]), records.ColorDefault)
			method := lookup(r.Methods, strings.TrimSpace(parts[1]), field.Color)
			ts.fields = appendChoice(ts.fields, field)
			ts.methods = appendChoice(ts.methods, method)

		case r.FolderSeparator != "" && strings.Contains(tag, r.FolderSeparator):
			ts.folders = append(ts.folders, CleanOption(tag))

		default:
			ts.keywords = append(ts.keywords, CleanOption(tag))
		}
	}

	if ts.status.Name == "" {
		ts.status = r.FallbackStatus
	}
	ts.folders = dedupe(ts.folders)
	ts.keywords = dedupe(ts.keywords)
	return ts
}

// lookup renames key through table. Missing entries keep the key as name;
// missing colors take color.
func lookup(table map[string]records.Choice, key, color string) records.Choice {
	c, ok := table[strings.ToLower(key)]
	if !ok {
		c = records.Choice{Name: CleanOption(key)}
	}
	if c.Color == "" {
		c.Color = color
	}
	if c.Color == "" {
		c.Color = records.ColorDefault
	}
	return c
}

func appendChoice(m records.MultiChoice, c records.Choice) records.MultiChoice {
	if c.Name == "" || slices.ContainsFunc(m, func(x records.Choice) bool { return x.Name == c.Name }) {
		return m
	}
	return append(m, c)
}

func choices(color string, names []string) records.MultiChoice {
	m := records.MultiChoice{}
	for _, n := range names {
		m = appendChoice(m, records.Choice{Name: CleanOption(n), Color: color})
	}
	return m
}

// CleanText collapses whitespace and newlines and strips BibTeX braces.
func CleanText(s string) string {
	s = strings.NewReplacer("{", "", "}", "").Replace(s)
	return collapseSpace(s)
}

// CleanOption makes s acceptable as a select option name: whitespace is
// collapsed, commas are removed and long names are truncated with "...".
func CleanOption(s string) string {
	s = collapseSpace(strings.ReplaceAll(s, ",", ""))
	if utf8.RuneCountInString(s) <= constants.MaxOptionLength {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:constants.MaxOptionLength-3])) + "..."
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	return appendUnique(out, in...)
}

func appendUnique(dst []string, items ...string) []string {
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" && !slices.Contains(dst, item) {
			dst = append(dst, item)
		}
	}
	return dst
}

// firstURL keeps the first of several whitespace separated URLs.
func firstURL(s string) string {
	if fields := strings.Fields(s); len(fields) > 0 {
		return fields[0]
	}
	return s
}
