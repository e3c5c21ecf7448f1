/* schema.go
 * Contains the form schemas: the ordered fields of every resource form and the columns of its table. Schemas are
 * written in yaml with a string type tag per field, the embedded schemas.yaml holds the defaults and an optional
 * file can replace the schema of individual resources
 */

package forms

import (
	_ "embed"
	"fmt"
	"math"
	"net/mail"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed schemas.yaml
var defaultSchemas []byte

// FieldSpec is the yaml form of a field
type FieldSpec struct {
	Name        string   `yaml:"name"`
	Type        string   `yaml:"type"`
	Label       string   `yaml:"label"`
	Placeholder string   `yaml:"placeholder"`
	Required    bool     `yaml:"required"`
	Options     []Option `yaml:"options"`
	OptionsFrom string   `yaml:"options_from"`
	Numeric     bool     `yaml:"numeric"`
	Rows        int      `yaml:"rows"`
	Min         *float64 `yaml:"min"`
	Max         *float64 `yaml:"max"`
	Step        float64  `yaml:"step"`
	Currency    string   `yaml:"currency"`
	Accept      string   `yaml:"accept"`
}

// Field converts the spec into its typed descriptor. Unknown type tags fall back to a text input
func (s FieldSpec) Field() Field {
	base := Base{Name: s.Name, Label: s.Label, Placeholder: s.Placeholder, Required: s.Required}
	if base.Label == "" {
		base.Label = s.Name
	}

	switch Kind(strings.ToLower(strings.TrimSpace(s.Type))) {
	case KindEmail:
		return TextField{Base: base, Variant: KindEmail}
	case KindPassword:
		return TextField{Base: base, Variant: KindPassword}
	case KindSelect:
		return SelectField{Base: base, Options: s.Options, OptionsFrom: s.OptionsFrom, Numeric: s.Numeric || s.OptionsFrom != ""}
	case KindCheckbox:
		return CheckboxField{Base: base}
	case KindDate:
		return DateField{Base: base}
	case KindTime:
		return TimeField{Base: base}
	case KindNumber:
		return NumberField{Base: base, Min: s.Min, Max: s.Max, Step: s.Step}
	case KindTextarea:
		return TextareaField{Base: base, Rows: s.Rows}
	case KindMoney:
		return MoneyField{Base: base, Currency: s.Currency}
	case KindFile:
		return FileField{Base: base, Accept: s.Accept}
	case KindRichText:
		return RichTextField{Base: base}
	default:
		return TextField{Base: base, Variant: KindText}
	}
}

// Schema is the form and table layout of one resource
type Schema struct {
	Resource string
	Title    string
	Columns  []string
	Fields   []Field
}

type schemaSpec struct {
	Title   string      `yaml:"title"`
	Columns []string    `yaml:"columns"`
	Fields  []FieldSpec `yaml:"fields"`
}

type schemaFile struct {
	Forms map[string]schemaSpec `yaml:"forms"`
}

// ParseSchemas parses a yaml schema document keyed by resource name
func ParseSchemas(data []byte) (map[string]Schema, error) {
	var file schemaFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("error parsing form schemas: %w", err)
	}

	schemas := make(map[string]Schema, len(file.Forms))
	for resource, spec := range file.Forms {
		if len(spec.Fields) == 0 {
			return nil, fmt.Errorf("form %q has no fields", resource)
		}
		schema := Schema{Resource: resource, Title: spec.Title, Columns: spec.Columns}
		seen := make(map[string]bool)
		for _, fieldSpec := range spec.Fields {
			if fieldSpec.Name == "" {
				return nil, fmt.Errorf("form %q has a field without name", resource)
			}
			if seen[fieldSpec.Name] {
				return nil, fmt.Errorf("form %q declares %q more than once", resource, fieldSpec.Name)
			}
			seen[fieldSpec.Name] = true
			schema.Fields = append(schema.Fields, fieldSpec.Field())
		}
		if schema.Title == "" {
			schema.Title = resource
		}
		if len(schema.Columns) == 0 {
			for _, f := range schema.Fields {
				schema.Columns = append(schema.Columns, f.Common().Name)
			}
		}
		schemas[resource] = schema
	}
	return schemas, nil
}

// DefaultSchemas returns the embedded schemas
func DefaultSchemas() (map[string]Schema, error) {
	return ParseSchemas(defaultSchemas)
}

// LoadSchemas returns the embedded schemas with the schemas found in path replacing them per resource. An empty
// path returns the defaults
func LoadSchemas(path string) (map[string]Schema, error) {
	schemas, err := DefaultSchemas()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return schemas, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading form schemas %s: %w", path, err)
	}
	overrides, err := ParseSchemas(data)
	if err != nil {
		return nil, err
	}
	for resource, schema := range overrides {
		schemas[resource] = schema
	}
	return schemas, nil
}

// Field returns the field with the given name
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Common().Name == name {
			return f, true
		}
	}
	return nil, false
}

// Initial returns the empty record the form starts from: false for checkboxes, an empty string otherwise
func (s Schema) Initial() Record {
	rec := make(Record, len(s.Fields))
	for _, f := range s.Fields {
		if f.Kind() == KindCheckbox {
			rec[f.Common().Name] = false
		} else {
			rec[f.Common().Name] = ""
		}
	}
	return rec
}

// FieldProblem is one failed check
type FieldProblem struct {
	Field   string
	Message string
}

// ValidationError lists the problems found in a record before it is sent to the server
type ValidationError struct {
	Problems []FieldProblem
}

func (e *ValidationError) Error() string {
	messages := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		messages[i] = p.Message
	}
	return strings.Join(messages, "; ")
}

// Validate checks required fields and the format of email, number, money, date and time fields.
// Postconditions: Returns nil, or a *ValidationError with one problem per failing field
func (s Schema) Validate(rec Record) error {
	var problems []FieldProblem
	add := func(f Field, format string, args ...any) {
		problems = append(problems, FieldProblem{Field: f.Common().Name, Message: fmt.Sprintf(format, args...)})
	}

	for _, f := range s.Fields {
		base := f.Common()
		value, present := rec[base.Name]
		text := strings.TrimSpace(ValueString(value))

		if f.Kind() == KindCheckbox {
			if base.Required && !truthy(value) {
				add(f, "%s must be checked", base.Label)
			}
			continue
		}
		if !present || text == "" {
			if base.Required {
				add(f, "%s is required", base.Label)
			}
			continue
		}

		switch field := f.(type) {
		case TextField:
			if field.Kind() == KindEmail {
				if _, err := mail.ParseAddress(text); err != nil {
					add(f, "%s must be a valid email address", base.Label)
				}
			}
		case NumberField:
			n, err := strconv.ParseFloat(text, 64)
			if err != nil {
				add(f, "%s must be a number", base.Label)
				continue
			}
			if field.Min != nil && n < *field.Min {
				add(f, "%s must be at least %s", base.Label, ValueString(*field.Min))
			}
			if field.Max != nil && n > *field.Max {
				add(f, "%s must be at most %s", base.Label, ValueString(*field.Max))
			}
		case MoneyField:
			n, err := strconv.ParseFloat(text, 64)
			if err != nil || n < 0 {
				add(f, "%s must be a positive amount", base.Label)
			}
		case DateField:
			if _, err := time.Parse("2006-01-02", text); err != nil {
				add(f, "%s must be a date (YYYY-MM-DD)", base.Label)
			}
		case TimeField:
			if _, err := time.Parse("15:04", text); err != nil {
				add(f, "%s must be a time (HH:MM)", base.Label)
			}
		case SelectField:
			if field.Numeric {
				if _, err := strconv.ParseInt(text, 10, 64); err != nil {
					add(f, "%s has an invalid option", base.Label)
				}
			}
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Coerce returns a copy of rec with form strings converted to the types the api expects: numbers for number, money
// and numeric select fields, booleans for checkboxes. Empty numeric values are dropped
func (s Schema) Coerce(rec Record) (Record, error) {
	out := cloneRecord(rec)
	for _, f := range s.Fields {
		name := f.Common().Name
		value, ok := out[name]
		if !ok {
			continue
		}
		text, isString := value.(string)

		switch field := f.(type) {
		case CheckboxField:
			out[name] = truthy(value)
		case NumberField, MoneyField:
			if !isString {
				continue
			}
			text = strings.TrimSpace(text)
			if text == "" {
				delete(out, name)
				continue
			}
			n, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, fmt.Errorf("%s must be a number", f.Common().Label)
			}
			out[name] = n
		case SelectField:
			if !field.Numeric || !isString {
				continue
			}
			text = strings.TrimSpace(text)
			if text == "" {
				delete(out, name)
				continue
			}
			n, err := strconv.ParseInt(text, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%s has an invalid option", f.Common().Label)
			}
			out[name] = n
		}
	}
	return out, nil
}

// ValueString formats a record value for display and for html inputs
func ValueString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1e15 {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return ValueString(float64(v))
	default:
		return fmt.Sprint(v)
	}
}
