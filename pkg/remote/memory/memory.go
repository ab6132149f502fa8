// Package memory provides an in-process implementation of remote.Service.
// It keeps collections in insertion order, pages listings like the hosted
// service does, validates writes against the collection schema and records
// every call so tests can assert on traffic.
package memory

import (
	"context"
	"strconv"
	"sync"

	"github.com/agentstation/bibsync/pkg/constants"
	"github.com/agentstation/bibsync/pkg/errors"
	"github.com/agentstation/bibsync/pkg/records"
	"github.com/agentstation/bibsync/pkg/remote"
	"github.com/google/uuid"
)

// Operation names a service call.
type Operation string

// Operations recorded by the service.
const (
	OpList    Operation = "list"
	OpGet     Operation = "get"
	OpCreate  Operation = "create"
	OpUpdate  Operation = "update"
	OpArchive Operation = "archive"
)

// Call is one recorded service call.
type Call struct {
	Op         Operation
	Collection string
	RemoteID   string
	Fields     records.Fields
}

// FailFunc may return an error to inject into a call.
type FailFunc func(op Operation, collection string, fields records.Fields) error

type row struct {
	record     *records.Record
	collection string
	archived   bool
}

// Service is an in-memory remote store.
type Service struct {
	mu       sync.Mutex
	rows     []*row
	byID     map[string]*row
	calls    []Call
	pageSize int
	fail     FailFunc
}

var (
	_ remote.Service  = (*Service)(nil)
	_ remote.Archiver = (*Service)(nil)
)

// Option configures a Service.
type Option func(*Service)

// WithPageSize sets how many records a listing page holds.
func WithPageSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithFailure installs a failure injector.
func WithFailure(fn FailFunc) Option {
	return func(s *Service) {
		s.fail = fn
	}
}

// New creates an empty Service.
func New(opts ...Option) *Service {
	s := &Service{
		byID:     make(map[string]*row),
		pageSize: constants.DefaultPageSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seed adds a record without recording a call and returns its ID.
func (s *Service) Seed(collection *records.Collection, fields records.Fields) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(collection, fields)
}

// SetFailure replaces the failure injector.
func (s *Service) SetFailure(fn FailFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = fn
}

// Calls returns the recorded calls in order.
func (s *Service) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CountCalls returns how many calls of op were made.
func (s *Service) CountCalls(op Operation) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// ResetCalls clears the call log.
func (s *Service) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

// Records returns copies of the live records in a collection.
func (s *Service) Records(collection *records.Collection) []*records.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live(collection.ID)
}

// ListCollection implements remote.Lister.
func (s *Service) ListCollection(ctx context.Context, collection *records.Collection, cursor string) (*remote.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.record(OpList, collection.ID, "", nil); err != nil {
		return nil, err
	}

	start := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 0 {
			return nil, errors.NewAPIError("memory", 400, "invalid start_cursor")
		}
		start = n
	}

	all := s.live(collection.ID)
	if start > len(all) {
		start = len(all)
	}
	end := min(start+s.pageSize, len(all))

	page := &remote.Page{Records: all[start:end]}
	if end < len(all) {
		page.HasMore = true
		page.NextCursor = strconv.Itoa(end)
	}
	return page, nil
}

// GetRecord implements remote.Getter.
func (s *Service) GetRecord(ctx context.Context, collection *records.Collection, keyField, key string) (*records.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.record(OpGet, collection.ID, "", nil); err != nil {
		return nil, err
	}
	for _, r := range s.live(collection.ID) {
		if r.Fields.Text(keyField) == key {
			return r, nil
		}
	}
	return nil, errors.NewNotFoundError(collection.Name, key)
}

// CreateRecord implements remote.Writer.
func (s *Service) CreateRecord(ctx context.Context, collection *records.Collection, fields records.Fields) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.record(OpCreate, collection.ID, "", fields); err != nil {
		return "", err
	}
	if err := s.check(collection, fields); err != nil {
		return "", err
	}
	return s.insert(collection, fields), nil
}

// UpdateRecord implements remote.Writer. Fields not named keep their value.
func (s *Service) UpdateRecord(ctx context.Context, collection *records.Collection, remoteID string, fields records.Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.record(OpUpdate, collection.ID, remoteID, fields); err != nil {
		return err
	}
	if err := s.check(collection, fields); err != nil {
		return err
	}
	r, ok := s.byID[records.NormalizeID(remoteID)]
	if !ok || r.archived {
		return errors.NewAPIError("memory", 404, "record "+remoteID+" not found")
	}
	for _, f := range fields {
		r.record.Fields.Set(f.Name, records.Clone(f.Value))
	}
	r.record.NaturalKey = naturalKey(collection, r.record.Fields)
	return nil
}

// ArchiveRecord implements remote.Archiver.
func (s *Service) ArchiveRecord(ctx context.Context, remoteID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.byID[records.NormalizeID(remoteID)]
	collection := ""
	if ok {
		collection = r.collection
	}
	if err := s.record(OpArchive, collection, remoteID, nil); err != nil {
		return err
	}
	if !ok {
		return errors.NewAPIError("memory", 404, "record "+remoteID+" not found")
	}
	r.archived = true
	return nil
}

// record logs a call and runs the failure injector. Callers hold mu.
func (s *Service) record(op Operation, collection, remoteID string, fields records.Fields) error {
	s.calls = append(s.calls, Call{Op: op, Collection: collection, RemoteID: remoteID, Fields: fields.Clone()})
	if s.fail != nil {
		return s.fail(op, collection, fields)
	}
	return nil
}

func (s *Service) check(collection *records.Collection, fields records.Fields) error {
	if collection.Schema == nil {
		return nil
	}
	if err := collection.Schema.Check(fields); err != nil {
		return &errors.APIError{Service: "memory", StatusCode: 400, Code: "validation_error", Message: err.Error(), Err: err}
	}
	return nil
}

func (s *Service) insert(collection *records.Collection, fields records.Fields) string {
	id := uuid.NewString()
	r := &row{
		collection: collection.ID,
		record: &records.Record{
			RemoteID:   id,
			NaturalKey: naturalKey(collection, fields),
			Fields:     fields.Clone(),
		},
	}
	s.rows = append(s.rows, r)
	s.byID[records.NormalizeID(id)] = r
	return id
}

func (s *Service) live(collectionID string) []*records.Record {
	var out []*records.Record
	for _, r := range s.rows {
		if r.collection != collectionID || r.archived {
			continue
		}
		cp := *r.record
		cp.Fields = r.record.Fields.Clone()
		out = append(out, &cp)
	}
	return out
}

func naturalKey(collection *records.Collection, fields records.Fields) string {
	if collection.Schema == nil {
		return ""
	}
	return fields.Text(collection.Schema.TitleField)
}
