package config

import (
	"maps"

	"github.com/agentstation/bibsync/pkg/normalize"
	"github.com/agentstation/bibsync/pkg/records"
)

// Rules converts the tag configuration into normalizer rules.
func (c *Config) Rules() normalize.Rules {
	r := normalize.DefaultRules()
	r.StatusPrefix = c.Status.Prefix
	r.States = choices(c.Status.States)
	if c.Status.Fallback.Name != "" {
		r.FallbackStatus = choice(c.Status.Fallback)
	}
	r.Delimiter = c.FieldsMethods.Delim
	r.Fields = choices(c.FieldsMethods.Fields)
	r.Methods = choices(c.FieldsMethods.Methods)
	r.TopicPrefix = c.Topics.Prefix
	r.Topics = choices(c.Topics.Topics)
	r.FolderSeparator = c.Folders.Separator
	if len(c.BibTeX.Venues) > 0 {
		r.Venues = maps.Clone(c.BibTeX.Venues)
	}
	return r
}

// Collections returns the article and author collections for the given
// database IDs. authors is nil when authorsID is empty.
func (c *Config) Collections(articlesID, authorsID string) (articles, authors *records.Collection) {
	articles = &records.Collection{
		ID:     articlesID,
		Name:   "Articles",
		Kind:   records.KindArticle,
		Schema: records.ArticleSchema(authorsID != ""),
	}
	if authorsID != "" {
		authors = &records.Collection{
			ID:     authorsID,
			Name:   "Authors",
			Kind:   records.KindAuthor,
			Schema: records.AuthorSchema(),
		}
	}
	return articles, authors
}

// Thresholds returns the fuzzy match thresholds per kind.
func (c *Config) Thresholds() map[records.EntryKind]int {
	return map[records.EntryKind]int{
		records.KindAuthor:  c.Matching.Authors,
		records.KindArticle: c.Matching.Articles,
	}
}

func choice(c Choice) records.Choice {
	return records.Choice{Name: c.Name, Color: c.Color}
}

func choices(in map[string]Choice) map[string]records.Choice {
	out := make(map[string]records.Choice, len(in))
	for k, c := range in {
		out[k] = choice(c)
	}
	return out
}
