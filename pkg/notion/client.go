// Package notion implements remote.Service on top of the Notion REST API.
//
// Collections are Notion databases and records are database pages. Page
// properties are converted to and from records.Value through the
// collection schema: title and rich text become Text, select becomes
// Choice, multi select becomes MultiChoice and relation becomes Relation.
package notion

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agentstation/bibsync/internal/transport"
	"github.com/agentstation/bibsync/pkg/constants"
	"github.com/agentstation/bibsync/pkg/errors"
	"github.com/agentstation/bibsync/pkg/logging"
	"github.com/agentstation/bibsync/pkg/records"
	"github.com/agentstation/bibsync/pkg/remote"
)

// ServiceName labels errors from this client.
const ServiceName = "notion"

var (
	_ remote.Service  = (*Client)(nil)
	_ remote.Archiver = (*Client)(nil)
)

// Client talks to one Notion workspace through an integration token.
type Client struct {
	http     *transport.Client
	pageSize int
	names    map[records.EntryKind]propertyNames
}

type config struct {
	baseURL    string
	version    string
	rateLimit  float64
	timeout    time.Duration
	retries    int
	httpClient *http.Client
	pageSize   int
	names      map[records.EntryKind]propertyNames
}

// Option configures a Client.
type Option func(*config)

// WithBaseURL overrides the API endpoint.
func WithBaseURL(u string) Option {
	return func(c *config) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithVersion sets the Notion-Version header.
func WithVersion(v string) Option {
	return func(c *config) {
		if v != "" {
			c.version = v
		}
	}
}

// WithRateLimit sets the request rate in requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *config) {
		c.rateLimit = rps
	}
}

// WithTimeout sets the per request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithRetries sets how often transient failures are retried.
func WithRetries(n int) Option {
	return func(c *config) {
		c.retries = n
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) {
		c.httpClient = hc
	}
}

// WithPageSize sets the number of pages requested per query, at most 100.
func WithPageSize(n int) Option {
	return func(c *config) {
		if n > 0 && n <= constants.DefaultPageSize {
			c.pageSize = n
		}
	}
}

// WithPropertyNames maps schema field names of kind's collection to the
// property names used in the database. Field names match case
// insensitively.
func WithPropertyNames(kind records.EntryKind, names map[string]string) Option {
	return func(c *config) {
		if len(names) == 0 {
			return
		}
		if c.names == nil {
			c.names = make(map[records.EntryKind]propertyNames)
		}
		c.names[kind] = newPropertyNames(names)
	}
}

// New creates a Client authenticating with token.
func New(token string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.NewConfigError("notion", "an integration token is required", errors.ErrInvalidInput)
	}
	cfg := &config{
		baseURL:   constants.NotionBaseURL,
		version:   constants.NotionVersion,
		rateLimit: constants.DefaultRateLimit,
		timeout:   constants.DefaultHTTPTimeout,
		retries:   constants.MaxRetries,
		pageSize:  constants.DefaultPageSize,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &Client{
		http: transport.New(&transport.BearerAuth{}, token,
			transport.WithHTTPClient(cfg.httpClient),
			transport.WithTimeout(cfg.timeout),
			transport.WithBaseURL(cfg.baseURL),
			transport.WithServiceName(ServiceName),
			transport.WithHeader("Notion-Version", cfg.version),
			transport.WithRateLimit(cfg.rateLimit),
			transport.WithRetries(cfg.retries),
		),
		pageSize: cfg.pageSize,
		names:    cfg.names,
	}, nil
}

type queryResponse struct {
	Results    []page  `json:"results"`
	NextCursor *string `json:"next_cursor"`
	HasMore    bool    `json:"has_more"`
}

// ListCollection implements remote.Lister.
func (c *Client) ListCollection(ctx context.Context, collection *records.Collection, cursor string) (*remote.Page, error) {
	body := map[string]any{"page_size": c.pageSize}
	if cursor != "" {
		body["start_cursor"] = cursor
	}

	var resp queryResponse
	if err := c.http.Do(ctx, http.MethodPost, "/databases/"+collection.ID+"/query", body, &resp); err != nil {
		return nil, err
	}

	out := &remote.Page{HasMore: resp.HasMore}
	if resp.NextCursor != nil {
		out.NextCursor = *resp.NextCursor
	}
	for i := range resp.Results {
		p := &resp.Results[i]
		if p.Archived || p.InTrash {
			continue
		}
		if err := c.completeRelations(ctx, collection, p); err != nil {
			return nil, err
		}
		out.Records = append(out.Records, decodePage(collection.Schema, c.names[collection.Kind], p))
	}
	logging.FromContext(ctx).Debug().
		Str("collection", collection.Name).
		Int("records", len(out.Records)).
		Bool("has_more", out.HasMore).
		Msg("Listed page")
	return out, nil
}

// GetRecord implements remote.Getter with a database query filtered on
// keyField.
func (c *Client) GetRecord(ctx context.Context, collection *records.Collection, keyField, key string) (*records.Record, error) {
	spec, ok := collection.Schema.Field(keyField)
	if !ok {
		return nil, errors.NewValidationError("key_field", keyField, "field is not part of the collection schema")
	}
	body := map[string]any{
		"page_size": 1,
		"filter": map[string]any{
			"property":            c.names[collection.Kind].of(keyField),
			string(spec.Property): map[string]any{"equals": key},
		},
	}

	var resp queryResponse
	if err := c.http.Do(ctx, http.MethodPost, "/databases/"+collection.ID+"/query", body, &resp); err != nil {
		return nil, err
	}
	for i := range resp.Results {
		p := &resp.Results[i]
		if p.Archived || p.InTrash {
			continue
		}
		if err := c.completeRelations(ctx, collection, p); err != nil {
			return nil, err
		}
		return decodePage(collection.Schema, c.names[collection.Kind], p), nil
	}
	return nil, errors.NewNotFoundError(collection.Name, key)
}

type propertyItemList struct {
	Results []struct {
		Relation relationRef `json:"relation"`
	} `json:"results"`
	NextCursor *string `json:"next_cursor"`
	HasMore    bool    `json:"has_more"`
}

// completeRelations replaces truncated relation properties of p with the
// full list of references.
func (c *Client) completeRelations(ctx context.Context, collection *records.Collection, p *page) error {
	names := c.names[collection.Kind]
	for _, spec := range collection.Schema.Fields {
		if spec.Property != records.PropertyRelation {
			continue
		}
		name := names.of(spec.Name)
		prop, ok := p.Properties[name]
		if !ok || !prop.HasMore {
			continue
		}
		if prop.ID == "" {
			return errors.NewValidationError("property", name, "relation is truncated and has no property id")
		}
		refs, err := c.relationRefs(ctx, p.ID, prop.ID)
		if err != nil {
			return err
		}
		prop.Relation, prop.HasMore = refs, false
		p.Properties[name] = prop
	}
	return nil
}

// relationRefs reads every reference of a relation property, following
// cursors.
func (c *Client) relationRefs(ctx context.Context, pageID, propertyID string) ([]relationRef, error) {
	var refs []relationRef
	cursor := ""
	for {
		q := url.Values{"page_size": {strconv.Itoa(c.pageSize)}}
		if cursor != "" {
			q.Set("start_cursor", cursor)
		}
		var resp propertyItemList
		path := "/pages/" + pageID + "/properties/" + propertyID + "?" + q.Encode()
		if err := c.http.Do(ctx, http.MethodGet, path, nil, &resp); err != nil {
			return nil, err
		}
		for _, item := range resp.Results {
			refs = append(refs, item.Relation)
		}
		if !resp.HasMore || resp.NextCursor == nil {
			logging.FromContext(ctx).Debug().
				Str("page", pageID).
				Int("references", len(refs)).
				Msg("Read relation property")
			return refs, nil
		}
		cursor = *resp.NextCursor
	}
}

// CreateRecord implements remote.Writer. A create whose outcome is unknown,
// such as a gateway error or a timeout, is not repeated; the page it may
// have created is matched by the next run.
func (c *Client) CreateRecord(ctx context.Context, collection *records.Collection, fields records.Fields) (string, error) {
	body := map[string]any{
		"parent":     map[string]any{"database_id": collection.ID},
		"properties": encodeFields(collection.Schema, c.names[collection.Kind], fields),
	}
	var created page
	if err := c.http.Do(ctx, http.MethodPost, "/pages", body, &created, transport.NotIdempotent()); err != nil {
		return "", err
	}
	return created.ID, nil
}

// UpdateRecord implements remote.Writer.
func (c *Client) UpdateRecord(ctx context.Context, collection *records.Collection, remoteID string, fields records.Fields) error {
	body := map[string]any{"properties": encodeFields(collection.Schema, c.names[collection.Kind], fields)}
	return c.http.Do(ctx, http.MethodPatch, "/pages/"+remoteID, body, nil)
}

// ArchiveRecord implements remote.Archiver.
func (c *Client) ArchiveRecord(ctx context.Context, remoteID string) error {
	return c.http.Do(ctx, http.MethodPatch, "/pages/"+remoteID, map[string]any{"archived": true}, nil)
}

type searchResult struct {
	Object string     `json:"object"`
	ID     string     `json:"id"`
	Title  []richText `json:"title"`
}

type searchResponse struct {
	Results    []searchResult `json:"results"`
	NextCursor *string        `json:"next_cursor"`
	HasMore    bool           `json:"has_more"`
}

// FindDatabase resolves a database reference. A reference that parses as
// a UUID, with or without dashes, is returned in canonical form. Anything
// else is looked up by title among the databases shared with the
// integration; it must match exactly one, ignoring case.
func (c *Client) FindDatabase(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", errors.NewAmbiguousConfigError("databases", "empty database reference")
	}
	if id, err := uuid.Parse(ref); err == nil {
		return id.String(), nil
	}

	var matches []string
	cursor := ""
	for {
		body := map[string]any{
			"query":     ref,
			"page_size": c.pageSize,
			"filter":    map[string]any{"property": "object", "value": "database"},
		}
		if cursor != "" {
			body["start_cursor"] = cursor
		}
		var resp searchResponse
		if err := c.http.Do(ctx, http.MethodPost, "/search", body, &resp); err != nil {
			return "", errors.WrapResource("search", "databases", ref, err)
		}
		for _, r := range resp.Results {
			if strings.EqualFold(strings.TrimSpace(plainText(r.Title)), ref) {
				matches = append(matches, r.ID)
			}
		}
		if !resp.HasMore || resp.NextCursor == nil {
			break
		}
		cursor = *resp.NextCursor
	}

	switch len(matches) {
	case 0:
		return "", errors.NewAmbiguousConfigError("databases", "no database named "+ref+" is shared with the integration")
	case 1:
		return matches[0], nil
	default:
		return "", errors.NewAmbiguousConfigError("databases", "more than one database is named "+ref)
	}
}
