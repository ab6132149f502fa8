package app

import (
	"context"

	"github.com/agentstation/bibsync"
	"github.com/agentstation/bibsync/internal/config"
	"github.com/agentstation/bibsync/pkg/errors"
	"github.com/agentstation/bibsync/pkg/notion"
	"github.com/agentstation/bibsync/pkg/records"
	"github.com/agentstation/bibsync/pkg/remote"
)

// databaseFinder resolves database names to IDs.
type databaseFinder interface {
	FindDatabase(ctx context.Context, ref string) (string, error)
}

// newClient validates cfg, connects to the service and resolves the
// configured databases.
func (a *App) newClient(ctx context.Context, cfg *config.Config) (bibsync.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	service := a.service
	if service == nil {
		nc, err := newNotionClient(cfg)
		if err != nil {
			return nil, err
		}
		service = nc
	}

	articlesID, authorsID, err := resolveDatabases(ctx, service, cfg.Databases)
	if err != nil {
		return nil, err
	}
	a.logger.Debug().
		Str("articles", articlesID).
		Str("authors", authorsID).
		Msg("Resolved databases")

	articles, authors := cfg.Collections(articlesID, authorsID)
	opts := []bibsync.Option{
		bibsync.WithRules(cfg.Rules()),
		bibsync.WithArticles(articles),
	}
	if authors != nil {
		opts = append(opts, bibsync.WithAuthors(authors))
	}
	for kind, score := range cfg.Thresholds() {
		opts = append(opts, bibsync.WithThreshold(kind, score))
	}

	client, err := bibsync.New(service, opts...)
	if err != nil {
		return nil, errors.WrapResource("create", "client", "", err)
	}
	return client, nil
}

func newNotionClient(cfg *config.Config) (*notion.Client, error) {
	if cfg.Token == "" {
		return nil, errors.NewAmbiguousConfigError("token",
			"set NOTION_INTEGRATION_TOKEN or pass --token")
	}
	return notion.New(cfg.Token,
		notion.WithBaseURL(cfg.Notion.BaseURL),
		notion.WithVersion(cfg.Notion.Version),
		notion.WithRateLimit(cfg.Notion.RateLimit),
		notion.WithTimeout(cfg.Notion.Timeout),
		notion.WithRetries(cfg.Notion.Retries),
		notion.WithPropertyNames(records.KindArticle, cfg.Properties.Names(records.KindArticle)),
		notion.WithPropertyNames(records.KindAuthor, cfg.Properties.Names(records.KindAuthor)),
	)
}

// resolveDatabases turns database references into IDs when the service
// can look them up by name.
func resolveDatabases(ctx context.Context, service remote.Service, dbs config.Databases) (articles, authors string, err error) {
	articles, authors = dbs.Articles, dbs.Authors
	finder, ok := service.(databaseFinder)
	if !ok {
		return articles, authors, nil
	}
	if articles, err = finder.FindDatabase(ctx, articles); err != nil {
		return "", "", err
	}
	if authors != "" {
		if authors, err = finder.FindDatabase(ctx, authors); err != nil {
			return "", "", err
		}
	}
	return articles, authors, nil
}
