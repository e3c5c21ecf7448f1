/* render.go
 * Contains the Form model and the helpers used by the templ components in form.templ. The renderer does not
 * validate
 */

package forms

//go:generate templ generate

import (
	"context"
	"strings"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"
)

// Form is everything needed to render one form
type Form struct {
	ID       string // html id of the form element
	Action   string // url the form posts to
	Fields   []Field
	Values   Record
	KeyField string // rendered as a hidden input when the record has a key
	Submit   string // submit button text
	Error    string // shown above the fields, e.g. a failed save
}

// key returns the record key, or "" for a record that does not exist yet
func (f Form) key() string {
	if f.KeyField == "" {
		return ""
	}
	key := ValueString(f.Values[f.KeyField])
	if key == "0" {
		return ""
	}
	return key
}

func (f Form) submitText() string {
	if f.Submit == "" {
		return "Guardar"
	}
	return f.Submit
}

var richTextPolicy = bluemonday.UGCPolicy()

// SanitizeRichText strips unsafe markup from a rich text value
func SanitizeRichText(html string) string {
	return richTextPolicy.Sanitize(html)
}

func fieldID(name string) string {
	return "f-" + name
}

func textareaRows(rows int) int {
	if rows <= 0 {
		return 4
	}
	return rows
}

func selectPlaceholder(placeholder string) string {
	if placeholder == "" {
		return "Seleccionar..."
	}
	return placeholder
}

func currencySymbol(currency string) string {
	if currency == "" {
		return "$"
	}
	return currency
}

// inputType maps the kinds rendered by inputWidget to an html input type
func inputType(kind Kind) string {
	switch kind {
	case KindDate, KindTime, KindEmail, KindPassword:
		return string(kind)
	default:
		return "text"
	}
}

// RenderString renders a component to a string, used by tests and by callers embedding a form in a larger page
func RenderString(ctx context.Context, c templ.Component) (string, error) {
	var sb strings.Builder
	if err := c.Render(ctx, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}
