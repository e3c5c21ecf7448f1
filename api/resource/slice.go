/* slice.go
 * Contains the generic resource slice: the client side copy of one api resource together with its fetch, save and
 * delete operations. The list is only mutated after the server confirms an operation, and the slice trusts that
 * local mutation afterwards (Total is adjusted in place, callers do not re-fetch)
 */

package resource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"sync"
	"time"

	"torneos-admin/api/search"
	"torneos-admin/logging"

	"go.uber.org/zap"
)

var (
	// ErrMissingKey is returned when the server answers a create without the new record's key
	ErrMissingKey = errors.New("server response did not include the new record id")
	// ErrStale is returned by a fetch whose response arrived after a newer fetch was started. Its result is discarded
	ErrStale = errors.New("response discarded, a newer request is in progress")
)

// Requester is the subset of the api client used by a slice
type Requester interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body any, out any) error
	Put(ctx context.Context, path string, body any, out any) error
	Delete(ctx context.Context, path string, out any) error
}

// State is a snapshot of a slice
type State[T Keyed] struct {
	Items     []T
	Total     int
	Page      int
	Limit     int
	Loading   bool
	Error     string
	FetchedAt time.Time
}

// Slice holds the client side list of one resource
type Slice[T Keyed] struct {
	def    Definition[T]
	client Requester
	logger *zap.Logger

	mu         sync.RWMutex
	state      State[T]
	inflight   int
	generation uint64
	onFetched  []func(State[T])
}

// New creates an empty slice for the resource described by def
func New[T Keyed](client Requester, def Definition[T], logger *zap.Logger) *Slice[T] {
	logger = logging.OrNop(logger)
	return &Slice[T]{
		def:    def,
		client: client,
		logger: logger.With(zap.String("resource", def.Name)),
		state:  State[T]{Items: []T{}, Page: DefaultPage, Limit: DefaultLimit},
	}
}

// Definition returns the resource definition
func (s *Slice[T]) Definition() Definition[T] {
	return s.def
}

// State returns a copy of the current state
func (s *Slice[T]) State() State[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyState()
}

func (s *Slice[T]) copyState() State[T] {
	st := s.state
	st.Items = slices.Clone(s.state.Items)
	st.Loading = s.inflight > 0
	return st
}

// Items returns a copy of the current list
func (s *Slice[T]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.state.Items)
}

// Find returns the record with the given key from the in-memory list
func (s *Slice[T]) Find(id int64) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.state.Items {
		if item.Key() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Filter fuzzy-filters the in-memory list by the record labels, best match first
func (s *Slice[T]) Filter(term string) []T {
	return search.Filter(s.Items(), term, s.def.label)
}

// OnFetched registers a callback invoked with the new state after every successful fetch
func (s *Slice[T]) OnFetched(fn func(State[T])) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onFetched = append(s.onFetched, fn)
}

// Hydrate replaces the list with previously persisted data, used to warm the slice at start up
func (s *Slice[T]) Hydrate(items []T, total int, page int, limit int, fetchedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Items = slices.Clone(items)
	if s.state.Items == nil {
		s.state.Items = []T{}
	}
	s.state.Total = total
	s.state.Page = page
	s.state.Limit = limit
	s.state.FetchedAt = fetchedAt
}

// Fetch loads one page of the resource list.
// Preconditions: Receives a Query with page, limit and an optional search term
// Postconditions: On success the list and pagination are replaced and nil is returned. On failure the list is left
// untouched, the error message is stored in State.Error and the error is returned
func (s *Slice[T]) Fetch(ctx context.Context, q Query) error {
	return s.fetch(ctx, s.def.Path, q)
}

// FetchByParent loads the list nested under a parent record, e.g. /api/zonas/torneo/5
func (s *Slice[T]) FetchByParent(ctx context.Context, parent string, parentID int64, q Query) error {
	return s.fetch(ctx, fmt.Sprintf("%s/%s/%d", s.def.Path, parent, parentID), q)
}

func (s *Slice[T]) fetch(ctx context.Context, path string, q Query) error {
	q = q.Normalized()

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.inflight++
	s.state.Error = ""
	s.mu.Unlock()

	var raw json.RawMessage
	err := s.client.Get(ctx, path, q.Values(), &raw)
	var page listPage[T]
	if err == nil {
		page, err = decodeList[T](raw, s.def.ListKey, q)
	}

	s.mu.Lock()
	s.inflight--
	if gen != s.generation {
		s.mu.Unlock()
		s.logger.Debug("discarding stale list response", zap.Uint64("generation", gen))
		return ErrStale
	}
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		s.state.Error = err.Error()
		s.mu.Unlock()
		s.logger.Warn("fetch failed", zap.String("path", path), zap.Error(err))
		return err
	}

	s.state.Items = page.Items
	s.state.Total = page.Total
	s.state.Page = page.Page
	s.state.Limit = page.Limit
	s.state.FetchedAt = time.Now()
	snapshot := s.copyState()
	hooks := slices.Clone(s.onFetched)
	s.mu.Unlock()

	for _, hook := range hooks {
		hook(snapshot)
	}
	return nil
}

// Get loads a single record without touching the list
func (s *Slice[T]) Get(ctx context.Context, id int64) (T, error) {
	var zero T
	var raw json.RawMessage
	if err := s.client.Get(ctx, s.def.itemPath(id), nil, &raw); err != nil {
		return zero, err
	}
	item, ok := decodeItem[T](raw, s.def.ItemKey)
	if !ok {
		return zero, fmt.Errorf("record %d not found in response", id)
	}
	return item, nil
}

// Save creates the record with a POST when it has no key, or updates it with a PUT to <path>/<id> otherwise.
// Preconditions: the record has already been validated by the caller
// Postconditions: On success the saved record is upserted into the list (replaced in place, or prepended when new)
// and returned. On failure the list is not mutated and the error message is stored in State.Error
func (s *Slice[T]) Save(ctx context.Context, record T) (T, error) {
	var zero T
	s.begin()

	var raw json.RawMessage
	var err error
	creating := record.Key() == 0
	if creating {
		err = s.client.Post(ctx, s.def.Path, record, &raw)
	} else {
		err = s.client.Put(ctx, s.def.itemPath(record.Key()), record, &raw)
	}

	saved := record
	if err == nil {
		item, ok := decodeItem[T](raw, s.def.ItemKey)
		switch {
		case ok:
			saved = item
		case creating:
			err = ErrMissingKey
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	if err != nil {
		s.state.Error = err.Error()
		s.logger.Warn("save failed", zap.Int64("id", record.Key()), zap.Error(err))
		return zero, err
	}

	before := len(s.state.Items)
	s.state.Items = Upsert(s.state.Items, saved)
	if len(s.state.Items) > before {
		s.state.Total++
	}
	return saved, nil
}

// Delete removes the record on the server and then filters it out of the list
func (s *Slice[T]) Delete(ctx context.Context, id int64) error {
	s.begin()

	err := s.client.Delete(ctx, s.def.itemPath(id), nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	if err != nil {
		s.state.Error = err.Error()
		s.logger.Warn("delete failed", zap.Int64("id", id), zap.Error(err))
		return err
	}

	before := len(s.state.Items)
	s.state.Items = Remove(s.state.Items, id)
	if removed := before - len(s.state.Items); removed > 0 && s.state.Total >= removed {
		s.state.Total -= removed
	}
	return nil
}

func (s *Slice[T]) begin() {
	s.mu.Lock()
	s.inflight++
	s.state.Error = ""
	s.mu.Unlock()
}

// Upsert returns items with record replacing the element that has the same key, or with record prepended when no
// such element exists. items is not modified
func Upsert[T Keyed](items []T, record T) []T {
	for i, item := range items {
		if item.Key() == record.Key() {
			out := slices.Clone(items)
			out[i] = record
			return out
		}
	}
	out := make([]T, 0, len(items)+1)
	out = append(out, record)
	return append(out, items...)
}

// Remove returns items without the elements whose key is id. items is not modified
func Remove[T Keyed](items []T, id int64) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if item.Key() != id {
			out = append(out, item)
		}
	}
	return out
}
