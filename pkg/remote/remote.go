// Package remote defines the contract bibsync needs from the hosted
// database service. The Notion client in pkg/notion and the in-process
// store in pkg/remote/memory both implement it.
package remote

import (
	"context"

	"github.com/agentstation/bibsync/pkg/records"
)

// Page is one page of a collection listing.
type Page struct {
	Records []*records.Record
	// NextCursor continues the listing. Empty when HasMore is false.
	NextCursor string
	HasMore    bool
}

// Lister lists collection contents page by page.
type Lister interface {
	// ListCollection returns the page starting at cursor; "" starts at
	// the beginning.
	ListCollection(ctx context.Context, collection *records.Collection, cursor string) (*Page, error)
}

// Writer creates and updates records.
type Writer interface {
	// CreateRecord creates a record and returns its remote ID.
	CreateRecord(ctx context.Context, collection *records.Collection, fields records.Fields) (string, error)
	// UpdateRecord writes fields to an existing record.
	UpdateRecord(ctx context.Context, collection *records.Collection, remoteID string, fields records.Fields) error
}

// Getter fetches a single record by key.
type Getter interface {
	// GetRecord returns the first record whose key field equals key. It
	// fails with errors.ErrNotFound when none does.
	GetRecord(ctx context.Context, collection *records.Collection, keyField, key string) (*records.Record, error)
}

// Archiver removes records from a collection.
type Archiver interface {
	ArchiveRecord(ctx context.Context, remoteID string) error
}

// Service is the full remote contract used by a sync run.
type Service interface {
	Lister
	Writer
	Getter
}
