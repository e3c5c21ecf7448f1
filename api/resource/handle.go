/* handle.go
 * Contains the type erased view of a slice. The bot and the web console work with records as maps (the shape forms
 * produce), the Handle converts between those records and the typed entity through its json representation
 */

package resource

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Record is an entity in its wire (json) shape
type Record = map[string]any

// Meta is the non list part of a slice state
type Meta struct {
	Total     int
	Page      int
	Limit     int
	Loading   bool
	Error     string
	FetchedAt time.Time
}

// Handle is implemented by every *Slice and lets callers manage a resource without knowing its type
type Handle interface {
	Name() string
	Path() string
	KeyField() string
	Fetch(ctx context.Context, q Query) error
	FetchByParent(ctx context.Context, parent string, parentID int64, q Query) error
	Delete(ctx context.Context, id int64) error
	SaveRecord(ctx context.Context, record Record) (Record, error)
	GetRecord(ctx context.Context, id int64) (Record, error)
	FindRecord(id int64) (Record, bool)
	Rows() []Record
	FilterRecords(term string) []Record
	LabelOf(id int64) (string, bool)
	Meta() Meta
	Snapshot() ([]byte, Meta, error)
	Restore(items []byte, meta Meta) error
}

var _ Handle = (*Slice[keyedStub])(nil)

type keyedStub struct{}

func (keyedStub) Key() int64 { return 0 }

func (s *Slice[T]) Name() string     { return s.def.Name }
func (s *Slice[T]) Path() string     { return s.def.Path }
func (s *Slice[T]) KeyField() string { return s.def.keyField() }

// Meta returns pagination, loading and error information
func (s *Slice[T]) Meta() Meta {
	st := s.State()
	return Meta{Total: st.Total, Page: st.Page, Limit: st.Limit, Loading: st.Loading, Error: st.Error, FetchedAt: st.FetchedAt}
}

// SaveRecord converts record into the entity, saves it and returns the saved entity as a record.
// The key field may arrive as a string (hidden form inputs), an empty key means create
func (s *Slice[T]) SaveRecord(ctx context.Context, record Record) (Record, error) {
	entity, err := s.FromRecord(record)
	if err != nil {
		return nil, err
	}
	saved, err := s.Save(ctx, entity)
	if err != nil {
		return nil, err
	}
	return ToRecord(saved)
}

// GetRecord loads one record from the server
func (s *Slice[T]) GetRecord(ctx context.Context, id int64) (Record, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToRecord(item)
}

// FindRecord returns a record from the in-memory list
func (s *Slice[T]) FindRecord(id int64) (Record, bool) {
	item, ok := s.Find(id)
	if !ok {
		return nil, false
	}
	rec, err := ToRecord(item)
	if err != nil {
		return nil, false
	}
	return rec, true
}

// LabelOf returns the display label of an in-memory record
func (s *Slice[T]) LabelOf(id int64) (string, bool) {
	item, ok := s.Find(id)
	if !ok {
		return "", false
	}
	return s.def.label(item), true
}

// Rows returns the in-memory list as records
func (s *Slice[T]) Rows() []Record {
	return toRecords(s.Items())
}

// FilterRecords fuzzy-filters the in-memory list and returns records
func (s *Slice[T]) FilterRecords(term string) []Record {
	return toRecords(s.Filter(term))
}

// Snapshot encodes the list for persistence
func (s *Slice[T]) Snapshot() ([]byte, Meta, error) {
	st := s.State()
	data, err := json.Marshal(st.Items)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("error encoding %s snapshot: %w", s.def.Name, err)
	}
	return data, Meta{Total: st.Total, Page: st.Page, Limit: st.Limit, FetchedAt: st.FetchedAt}, nil
}

// Restore hydrates the list from a snapshot produced by Snapshot
func (s *Slice[T]) Restore(items []byte, meta Meta) error {
	var decoded []T
	if err := json.Unmarshal(items, &decoded); err != nil {
		return fmt.Errorf("error decoding %s snapshot: %w", s.def.Name, err)
	}
	s.Hydrate(decoded, meta.Total, meta.Page, meta.Limit, meta.FetchedAt)
	return nil
}

// FromRecord converts a record into the entity
func (s *Slice[T]) FromRecord(record Record) (T, error) {
	var entity T
	normalized := make(Record, len(record))
	for k, v := range record {
		normalized[k] = v
	}

	field := s.def.keyField()
	if raw, ok := normalized[field]; ok {
		id, err := KeyOf(raw)
		if err != nil {
			return entity, fmt.Errorf("invalid %s: %w", field, err)
		}
		if id == 0 {
			delete(normalized, field)
		} else {
			normalized[field] = id
		}
	}

	data, err := json.Marshal(normalized)
	if err != nil {
		return entity, fmt.Errorf("error encoding record: %w", err)
	}
	if err := json.Unmarshal(data, &entity); err != nil {
		return entity, fmt.Errorf("record does not match %s: %w", s.def.Name, err)
	}
	return entity, nil
}

// ToRecord converts an entity into its wire shape
func ToRecord(v any) (Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("error encoding record: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("error decoding record: %w", err)
	}
	return rec, nil
}

func toRecords[T any](items []T) []Record {
	rows := make([]Record, 0, len(items))
	for _, item := range items {
		if rec, err := ToRecord(item); err == nil {
			rows = append(rows, rec)
		}
	}
	return rows
}

// KeyOf converts a key value found in a record into an int64. nil and empty strings are the zero key
func KeyOf(raw any) (int64, error) {
	switch v := raw.(type) {
	case nil:
		return 0, nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%v is not an integer", v)
		}
		return int64(v), nil
	case json.Number:
		return v.Int64()
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return 0, nil
		}
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("unsupported key type %T", raw)
	}
}
