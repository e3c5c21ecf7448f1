/* controller.go
 * Contains the form state controller: the record being edited, whether its modal is open, and the change handler
 * fed by inputs. The controller performs no validation, callers validate before dispatching a save
 */

package forms

import (
	"net/url"
	"strconv"
	"strings"
	"sync"
)

// Record is the form state, keyed by field name
type Record = map[string]any

// ChangeEvent mirrors what an input reports when it changes
type ChangeEvent struct {
	Name    string
	Value   string
	Type    string // input type, "checkbox" stores Checked instead of Value
	Checked bool
}

// Controller holds the record of one form
type Controller struct {
	mu      sync.Mutex
	initial Record
	values  Record
	open    bool
}

// NewController creates a closed controller whose values start at initial
func NewController(initial Record) *Controller {
	if initial == nil {
		initial = Record{}
	}
	return &Controller{initial: cloneRecord(initial), values: cloneRecord(initial)}
}

// Values returns a copy of the current record
func (c *Controller) Values() Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneRecord(c.values)
}

// IsOpen reports whether the form modal is visible
func (c *Controller) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// HandleChange merges one input change into the record. Checkbox inputs store a boolean, every other input stores
// its raw value
func (c *Controller) HandleChange(ev ChangeEvent) {
	if ev.Name == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if ev.Type == string(KindCheckbox) {
		c.values[ev.Name] = ev.Checked
		return
	}
	c.values[ev.Name] = ev.Value
}

// HandleChanges applies events in order
func (c *Controller) HandleChanges(events []ChangeEvent) {
	for _, ev := range events {
		c.HandleChange(ev)
	}
}

// Open shows the form seeded with a copy of seed, or with the initial shape when seed is nil
func (c *Controller) Open(seed Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seed == nil {
		c.values = cloneRecord(c.initial)
	} else {
		c.values = cloneRecord(seed)
	}
	c.open = true
}

// Close hides the form and resets it to the initial shape
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = cloneRecord(c.initial)
	c.open = false
}

// EventFromText builds the change event for a value typed as text (chat commands, query strings). Checkbox text
// accepts true/false, on/off, yes/no, si and 1/0
func EventFromText(name string, kind Kind, raw string) ChangeEvent {
	ev := ChangeEvent{Name: name, Value: raw, Type: string(kind)}
	if kind == KindCheckbox {
		ev.Checked = parseBool(raw)
	}
	return ev
}

// DecodeForm turns a posted html form into change events, one per field in schema order. Unchecked checkboxes are
// absent from a post and decode as false. File inputs are skipped since only their stored reference is kept. When
// keyField is set and present in the form it is decoded first
func DecodeForm(fields []Field, form url.Values, keyField string) []ChangeEvent {
	var events []ChangeEvent
	if keyField != "" && form.Has(keyField) {
		events = append(events, ChangeEvent{Name: keyField, Value: form.Get(keyField), Type: "hidden"})
	}
	for _, f := range fields {
		name := f.Common().Name
		switch f.Kind() {
		case KindCheckbox:
			events = append(events, ChangeEvent{Name: name, Type: string(KindCheckbox), Checked: form.Has(name) && parseBool(valueOr(form.Get(name), "on"))})
		case KindFile:
			continue
		default:
			if form.Has(name) {
				events = append(events, ChangeEvent{Name: name, Value: form.Get(name), Type: string(f.Kind())})
			}
		}
	}
	return events
}

func valueOr(value string, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on", "yes", "si", "sí":
		return true
	}
	b, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && b
}

func truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return parseBool(v)
	case float64:
		return v != 0
	case int:
		return v != 0
	default:
		return false
	}
}

// cloneRecord deep copies nested maps and slices so callers never share state with the controller
func cloneRecord(rec Record) Record {
	if rec == nil {
		return nil
	}
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneRecord(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return val
	}
}
