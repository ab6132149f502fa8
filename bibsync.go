// Package bibsync keeps a hosted article and author database in step with
// a reference manager's bibliography export.
//
// A Client bundles the remote service, the normalization rules and the
// collection layouts. Each Sync call is one batch run: it snapshots the
// remote collections, resolves every author referenced by the input, then
// creates or updates one article record per input entry. Re-running with
// the same input writes nothing.
//
// Example usage:
//
//	client, err := bibsync.New(service,
//	    bibsync.WithArticles(&records.Collection{ID: articlesDB, Name: "Papers", Kind: records.KindArticle}),
//	    bibsync.WithAuthors(&records.Collection{ID: authorsDB, Name: "Authors", Kind: records.KindAuthor}),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	raws, err := ingest.ReadFile("library.bib")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := client.Sync(ctx, raws, sync.WithOnOutcome(func(o reconciler.Outcome) {
//	    fmt.Println(o)
//	}))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Summary())
package bibsync

import (
	"context"

	"github.com/agentstation/bibsync/pkg/differ"
	"github.com/agentstation/bibsync/pkg/errors"
	"github.com/agentstation/bibsync/pkg/matcher"
	"github.com/agentstation/bibsync/pkg/normalize"
	"github.com/agentstation/bibsync/pkg/records"
	"github.com/agentstation/bibsync/pkg/remote"
	"github.com/agentstation/bibsync/pkg/sync"
)

// Compile-time interface check to ensure proper implementation.
var _ Client = (*client)(nil)

// Client synchronizes raw bibliographic records with the remote collections.
type Client interface {
	// Sync runs the author phase and then the article phase.
	Sync(ctx context.Context, raws []records.Raw, opts ...sync.Option) (*sync.Result, error)

	// Clean archives records that lost every link to the other collection.
	Clean(ctx context.Context, kind records.EntryKind, dryRun bool) ([]*records.Record, error)

	// Get fetches one record by its exact key.
	Get(ctx context.Context, kind records.EntryKind, key string) (*records.Record, error)

	// Collection returns the configured collection for kind.
	Collection(kind records.EntryKind) (*records.Collection, bool)

	// Hooks provides access to outcome callback registration
	Hooks
}

// client is the internal implementation of the Client interface.
type client struct {
	service    remote.Service
	articles   *records.Collection
	authors    *records.Collection
	normalizer *normalize.Normalizer
	matcher    *matcher.Matcher
	differ     differ.Differ
	*hooks
}

// New creates a Client for service. WithArticles is required; a relational
// article layout also requires WithAuthors.
func New(service remote.Service, opts ...Option) (Client, error) {
	if service == nil {
		return nil, &errors.ValidationError{Field: "service", Message: "cannot be nil"}
	}
	o, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}

	articles, authors, err := collections(o)
	if err != nil {
		return nil, err
	}

	var matchOpts []matcher.Option
	if o.scorer != nil {
		matchOpts = append(matchOpts, matcher.WithScorer(o.scorer))
	}
	for kind, score := range o.thresholds {
		matchOpts = append(matchOpts, matcher.WithThreshold(kind, score))
	}

	normOpts := []normalize.Option{normalize.WithArticleSchema(articles.Schema)}
	if authors != nil {
		normOpts = append(normOpts, normalize.WithAuthorSchema(authors.Schema))
	}

	return &client{
		service:    service,
		articles:   articles,
		authors:    authors,
		normalizer: normalize.New(o.rules, normOpts...),
		matcher:    matcher.New(matchOpts...),
		differ:     differ.New(differ.WithIgnoredFields(o.ignored...)),
		hooks:      newHooks(),
	}, nil
}

// collections checks the configured collections and fills in default
// schemas.
func collections(o *options) (*records.Collection, *records.Collection, error) {
	if o.articles == nil || o.articles.ID == "" {
		return nil, nil, errors.NewAmbiguousConfigError("databases.articles", "no article collection configured")
	}

	articles := *o.articles
	articles.Kind = records.KindArticle
	if articles.Name == "" {
		articles.Name = "Articles"
	}
	if articles.Schema == nil {
		articles.Schema = records.ArticleSchema(o.authors != nil)
	}
	if err := articles.Schema.Validate(); err != nil {
		return nil, nil, errors.NewConfigError("articles schema", err.Error(), err)
	}

	var authors *records.Collection
	if o.authors != nil && o.authors.ID != "" {
		cp := *o.authors
		cp.Kind = records.KindAuthor
		if cp.Name == "" {
			cp.Name = "Authors"
		}
		if cp.Schema == nil {
			cp.Schema = records.AuthorSchema()
		}
		if err := cp.Schema.Validate(); err != nil {
			return nil, nil, errors.NewConfigError("authors schema", err.Error(), err)
		}
		authors = &cp
	}

	if spec, ok := articles.Schema.Field(records.FieldAuthors); ok && spec.Property == records.PropertyRelation && authors == nil {
		return nil, nil, errors.NewAmbiguousConfigError("databases.authors", "article authors are a relation but no author collection is configured")
	}
	return &articles, authors, nil
}

// Collection returns the configured collection for kind.
func (c *client) Collection(kind records.EntryKind) (*records.Collection, bool) {
	switch kind {
	case records.KindArticle:
		return c.articles, true
	case records.KindAuthor:
		return c.authors, c.authors != nil
	default:
		return nil, false
	}
}

// Get fetches one record by its exact key: the external ID of an article
// or the name of an author.
func (c *client) Get(ctx context.Context, kind records.EntryKind, key string) (*records.Record, error) {
	coll, ok := c.Collection(kind)
	if !ok {
		return nil, errors.NewAmbiguousConfigError(string(kind), "collection is not configured")
	}
	rec, err := c.service.GetRecord(ctx, coll, coll.Schema.KeyField, key)
	if err != nil {
		return nil, errors.WrapResource("get", coll.Name, key, err)
	}
	return rec, nil
}

// relational reports whether articles link to author records.
func (c *client) relational() bool {
	spec, ok := c.articles.Schema.Field(records.FieldAuthors)
	return ok && spec.Property == records.PropertyRelation && c.authors != nil
}
