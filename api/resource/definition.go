/* definition.go
 * Contains the Definition that parameterizes a resource slice, the list Query and the wire decoding helpers shared
 * by every resource. List endpoints are inconsistent about their envelope ({"torneos": [...]}, {"inscripciones":
 * [...]}, {"items": [...]} or a bare array) so decoding tries the configured key first and falls back from there
 */

package resource

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// Keyed is implemented by every record managed by a slice. A zero key means the record does not exist on the server
type Keyed interface {
	Key() int64
}

// Definition describes one api resource
type Definition[T Keyed] struct {
	Name     string         // registry name, e.g. "zonas"
	Path     string         // collection path, e.g. "/api/zonas"
	ListKey  string         // envelope key of list responses, e.g. "zonas"
	ItemKey  string         // optional envelope key of single record responses, e.g. "zona"
	KeyField string         // json name of the primary key, defaults to "id"
	Label    func(T) string // display text, also used for fuzzy search
}

func (d Definition[T]) keyField() string {
	if d.KeyField == "" {
		return "id"
	}
	return d.KeyField
}

func (d Definition[T]) label(v T) string {
	if d.Label != nil {
		return d.Label(v)
	}
	return fmt.Sprintf("#%d", v.Key())
}

func (d Definition[T]) itemPath(id int64) string {
	return fmt.Sprintf("%s/%d", d.Path, id)
}

// Default pagination applied when a Query leaves it unset
const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Query holds list pagination and the optional search term
type Query struct {
	Page   int
	Limit  int
	Search string
}

// Normalized returns the query with defaults applied
func (q Query) Normalized() Query {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	return q
}

// Values encodes the query as url parameters: page, limit and searchTerm (omitted when empty)
func (q Query) Values() url.Values {
	q = q.Normalized()
	values := url.Values{}
	values.Set("page", strconv.Itoa(q.Page))
	values.Set("limit", strconv.Itoa(q.Limit))
	if q.Search != "" {
		values.Set("searchTerm", q.Search)
	}
	return values
}

// listPage is a decoded list response
type listPage[T any] struct {
	Items []T
	Total int
	Page  int
	Limit int
}

var fallbackListKeys = []string{"items", "data", "rows", "results"}

// decodeList decodes a list response. Pagination fields missing from the response fall back to the query and the
// number of returned items
func decodeList[T any](raw json.RawMessage, listKey string, q Query) (listPage[T], error) {
	q = q.Normalized()
	page := listPage[T]{Page: q.Page, Limit: q.Limit, Total: -1}

	// bare array
	if err := json.Unmarshal(raw, &page.Items); err == nil {
		if page.Items == nil {
			page.Items = []T{}
		}
		page.Total = len(page.Items)
		return page, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return listPage[T]{}, fmt.Errorf("invalid list response: %w", err)
	}

	keys := append([]string{listKey}, fallbackListKeys...)
	found := false
	for _, key := range keys {
		data, ok := envelope[key]
		if key == "" || !ok {
			continue
		}
		if err := json.Unmarshal(data, &page.Items); err != nil {
			return listPage[T]{}, fmt.Errorf("invalid %q list: %w", key, err)
		}
		found = true
		break
	}
	if !found {
		return listPage[T]{}, fmt.Errorf("list response has no %q array", listKey)
	}

	if n, ok := intField(envelope, "total", "count", "totalItems"); ok {
		page.Total = n
	}
	if n, ok := intField(envelope, "page", "currentPage"); ok && n > 0 {
		page.Page = n
	}
	if n, ok := intField(envelope, "limit", "pageSize"); ok && n > 0 {
		page.Limit = n
	}
	if page.Total < 0 {
		page.Total = len(page.Items)
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	return page, nil
}

// intField reads the first present numeric field, accepting numbers and numeric strings
func intField(envelope map[string]json.RawMessage, names ...string) (int, bool) {
	for _, name := range names {
		data, ok := envelope[name]
		if !ok {
			continue
		}
		var n json.Number
		if err := json.Unmarshal(data, &n); err == nil {
			if v, err := n.Int64(); err == nil {
				return int(v), true
			}
		}
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			if v, err := strconv.Atoi(s); err == nil {
				return v, true
			}
		}
	}
	return 0, false
}

var fallbackItemKeys = []string{"data", "item"}

// decodeItem decodes a single record response, unwrapping {"<itemKey>": {...}}, {"data": {...}} or {"item": {...}}.
// The boolean is false when no record with a key could be found
func decodeItem[T Keyed](raw json.RawMessage, itemKey string) (T, bool) {
	var zero T
	if len(raw) == 0 {
		return zero, false
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err == nil {
		for _, key := range append([]string{itemKey}, fallbackItemKeys...) {
			data, ok := envelope[key]
			if key == "" || !ok {
				continue
			}
			var item T
			if err := json.Unmarshal(data, &item); err == nil && item.Key() != 0 {
				return item, true
			}
		}
	}

	var item T
	if err := json.Unmarshal(raw, &item); err != nil || item.Key() == 0 {
		return zero, false
	}
	return item, true
}
