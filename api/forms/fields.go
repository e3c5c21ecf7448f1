/* fields.go
 * Contains the field descriptors rendered by the form renderer. Each input kind is its own type so properties that
 * only make sense for one kind (options for selects, rows for textareas...) only exist on that kind
 */

package forms

// Kind is the input kind of a field
type Kind string

const (
	KindText     Kind = "text"
	KindEmail    Kind = "email"
	KindPassword Kind = "password"
	KindSelect   Kind = "select"
	KindCheckbox Kind = "checkbox"
	KindDate     Kind = "date"
	KindNumber   Kind = "number"
	KindTextarea Kind = "textarea"
	KindMoney    Kind = "money"
	KindFile     Kind = "file"
	KindTime     Kind = "time"
	KindRichText Kind = "richtext"
)

// Field is implemented by every field descriptor. The set of implementations is closed
type Field interface {
	Kind() Kind
	Common() Base
	isField()
}

// Base holds the properties shared by every field
type Base struct {
	Name        string
	Label       string
	Placeholder string
	Required    bool
}

// Common returns the shared properties
func (b Base) Common() Base { return b }

func (Base) isField() {}

// Option is a label/value pair of a select field
type Option struct {
	Label string `yaml:"label" json:"label"`
	Value string `yaml:"value" json:"value"`
}

// TextField is a single line input. Variant is KindText, KindEmail or KindPassword
type TextField struct {
	Base
	Variant Kind
}

func (f TextField) Kind() Kind {
	switch f.Variant {
	case KindEmail, KindPassword:
		return f.Variant
	default:
		return KindText
	}
}

// SelectField picks one of Options. OptionsFrom names a resource whose records populate the options at render time
// (foreign keys such as idtorneo). Numeric selects store their value as a number
type SelectField struct {
	Base
	Options     []Option
	OptionsFrom string
	Numeric     bool
}

func (SelectField) Kind() Kind { return KindSelect }

// CheckboxField stores a boolean
type CheckboxField struct {
	Base
}

func (CheckboxField) Kind() Kind { return KindCheckbox }

// DateField stores a YYYY-MM-DD string
type DateField struct {
	Base
}

func (DateField) Kind() Kind { return KindDate }

// TimeField stores a HH:MM string
type TimeField struct {
	Base
}

func (TimeField) Kind() Kind { return KindTime }

// NumberField stores a number, optionally bounded
type NumberField struct {
	Base
	Min  *float64
	Max  *float64
	Step float64
}

func (NumberField) Kind() Kind { return KindNumber }

// TextareaField is a multi line input, always rendered across the full form width
type TextareaField struct {
	Base
	Rows int
}

func (TextareaField) Kind() Kind { return KindTextarea }

// MoneyField stores an amount with two decimals
type MoneyField struct {
	Base
	Currency string
}

func (MoneyField) Kind() Kind { return KindMoney }

// FileField selects a file. Only the stored reference (url or name) is kept in the record, uploads are handled by
// the server
type FileField struct {
	Base
	Accept string
}

func (FileField) Kind() Kind { return KindFile }

// RichTextField stores html. The value is sanitized before it is echoed back into a page
type RichTextField struct {
	Base
}

func (RichTextField) Kind() Kind { return KindRichText }

// WithOptions returns a copy of fields where selects fed from another resource get their options from lookup
func WithOptions(fields []Field, lookup func(resource string) []Option) []Field {
	out := make([]Field, len(fields))
	for i, field := range fields {
		if sel, ok := field.(SelectField); ok && sel.OptionsFrom != "" && lookup != nil {
			sel.Options = lookup(sel.OptionsFrom)
			out[i] = sel
			continue
		}
		out[i] = field
	}
	return out
}
