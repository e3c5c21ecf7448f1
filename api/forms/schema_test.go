/* schema_test.go
 * Contains unit tests for schema.go and fields.go
 */

package forms

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchemas = `
forms:
  zonas:
    title: Zonas
    fields:
      - {name: nombre, type: text, label: Nombre, required: true}
      - {name: codcantfechas, type: number, label: Fechas, min: 1, max: 40}
      - {name: idtorneo, type: select, label: Torneo, options_from: torneos, required: true}
      - {name: activo, type: checkbox, label: Activo}
      - {name: color, type: colour, label: Color}
      - {name: email, type: email, label: Email}
      - {name: fecha, type: date, label: Fecha}
      - {name: hora, type: time, label: Hora}
      - {name: monto, type: money, label: Monto}
`

func parseTestSchema(t *testing.T) Schema {
	t.Helper()
	schemas, err := ParseSchemas([]byte(testSchemas))
	require.NoError(t, err)
	schema, ok := schemas["zonas"]
	require.True(t, ok)
	return schema
}

// region Parsing

func TestParseSchemas(t *testing.T) {
	schema := parseTestSchema(t)

	assert.Equal(t, "Zonas", schema.Title)
	require.Len(t, schema.Fields, 9)
	assert.Equal(t, []string{"nombre", "codcantfechas", "idtorneo", "activo", "color", "email", "fecha", "hora", "monto"}, schema.Columns)

	sel, ok := schema.Fields[2].(SelectField)
	require.True(t, ok)
	assert.True(t, sel.Numeric)
	assert.Equal(t, "torneos", sel.OptionsFrom)

	num, ok := schema.Fields[1].(NumberField)
	require.True(t, ok)
	require.NotNil(t, num.Min)
	assert.Equal(t, 1.0, *num.Min)
}

func TestParseSchemas_UnknownTypeIsText(t *testing.T) {
	schema := parseTestSchema(t)

	f, ok := schema.Field("color")
	require.True(t, ok)
	assert.Equal(t, KindText, f.Kind())
	assert.IsType(t, TextField{}, f)
}

func TestParseSchemas_Errors(t *testing.T) {
	_, err := ParseSchemas([]byte("forms:\n  zonas:\n    fields: []\n"))
	assert.Error(t, err)

	_, err = ParseSchemas([]byte("forms:\n  zonas:\n    fields:\n      - {type: text}\n"))
	assert.Error(t, err)

	_, err = ParseSchemas([]byte("forms:\n  zonas:\n    fields:\n      - {name: a}\n      - {name: a}\n"))
	assert.Error(t, err)

	_, err = ParseSchemas([]byte("forms: [not, a, map"))
	assert.Error(t, err)
}

func TestDefaultSchemas(t *testing.T) {
	schemas, err := DefaultSchemas()
	require.NoError(t, err)

	for _, name := range []string{"torneos", "zonas", "equipos", "partidos", "jugadores", "usuarios", "proveedores",
		"planillas", "consentimientos", "imagenes", "inscripciones", "codificadores"} {
		schema, ok := schemas[name]
		if assert.True(t, ok, name) {
			assert.NotEmpty(t, schema.Fields, name)
			assert.NotEmpty(t, schema.Columns, name)
		}
	}
}

func TestLoadSchemas_Override(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forms.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testSchemas), 0o600))

	schemas, err := LoadSchemas(path)
	require.NoError(t, err)

	assert.Len(t, schemas["zonas"].Fields, 9)
	assert.NotEmpty(t, schemas["torneos"].Fields)

	_, err = LoadSchemas(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

// endregion

// region Validation

func TestSchema_Initial(t *testing.T) {
	schema := parseTestSchema(t)
	initial := schema.Initial()

	assert.Equal(t, false, initial["activo"])
	assert.Equal(t, "", initial["nombre"])
	assert.Len(t, initial, 9)
}

func TestSchema_Validate(t *testing.T) {
	schema := parseTestSchema(t)

	assert.NoError(t, schema.Validate(Record{"nombre": "Zona A", "idtorneo": "3", "codcantfechas": "10"}))

	err := schema.Validate(Record{
		"nombre":        " ",
		"codcantfechas": "99",
		"email":         "not-an-email",
		"fecha":         "19/10/2026",
		"hora":          "25:00",
		"monto":         "-3",
		"idtorneo":      "abc",
	})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))

	fields := make([]string, len(verr.Problems))
	for i, p := range verr.Problems {
		fields[i] = p.Field
	}
	assert.Equal(t, []string{"nombre", "codcantfechas", "idtorneo", "email", "fecha", "hora", "monto"}, fields)
	assert.Contains(t, err.Error(), "Nombre is required")
}

func TestSchema_Coerce(t *testing.T) {
	schema := parseTestSchema(t)

	out, err := schema.Coerce(Record{
		"nombre":        "Zona A",
		"codcantfechas": "10",
		"idtorneo":      "3",
		"activo":        "on",
		"monto":         "",
	})
	require.NoError(t, err)

	assert.Equal(t, "Zona A", out["nombre"])
	assert.Equal(t, 10.0, out["codcantfechas"])
	assert.Equal(t, int64(3), out["idtorneo"])
	assert.Equal(t, true, out["activo"])
	assert.NotContains(t, out, "monto")

	_, err = schema.Coerce(Record{"codcantfechas": "diez"})
	assert.Error(t, err)
}

func TestWithOptions(t *testing.T) {
	schema := parseTestSchema(t)
	fields := WithOptions(schema.Fields, func(resource string) []Option {
		if resource == "torneos" {
			return []Option{{Label: "Apertura", Value: "1"}}
		}
		return nil
	})

	sel := fields[2].(SelectField)
	assert.Equal(t, []Option{{Label: "Apertura", Value: "1"}}, sel.Options)
	assert.Empty(t, schema.Fields[2].(SelectField).Options)
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "", ValueString(nil))
	assert.Equal(t, "3", ValueString(float64(3)))
	assert.Equal(t, "3.5", ValueString(3.5))
	assert.Equal(t, "true", ValueString(true))
	assert.Equal(t, "12", ValueString(int64(12)))
}

// endregion
