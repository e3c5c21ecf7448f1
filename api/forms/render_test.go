/* render_test.go
 * Contains unit tests for render.go. The rendered html is parsed with goquery
 */

package forms

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderDoc(t *testing.T, f Form) *goquery.Document {
	t.Helper()
	html, err := RenderString(context.Background(), Render(f))
	require.NoError(t, err)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func testFields() []Field {
	lowest := 1.0
	return []Field{
		TextField{Base: Base{Name: "nombre", Label: "Nombre", Placeholder: "Zona A", Required: true}, Variant: KindText},
		SelectField{Base: Base{Name: "idtorneo", Label: "Torneo"}, Numeric: true, Options: []Option{
			{Label: "Apertura", Value: "1"}, {Label: "Clausura", Value: "2"},
		}},
		CheckboxField{Base: Base{Name: "activo", Label: "Activo"}},
		NumberField{Base: Base{Name: "codcantfechas", Label: "Fechas"}, Min: &lowest},
		TextareaField{Base: Base{Name: "observaciones", Label: "Observaciones"}, Rows: 3},
		MoneyField{Base: Base{Name: "monto", Label: "Monto"}, Currency: "$"},
		FileField{Base: Base{Name: "escudo", Label: "Escudo"}, Accept: "image/*"},
		TextField{Base: Base{Name: "password", Label: "Clave"}, Variant: KindPassword},
		DateField{Base: Base{Name: "fecha", Label: "Fecha"}},
	}
}

func TestRender_Layout(t *testing.T) {
	doc := renderDoc(t, Form{
		Action:   "/admin/zonas",
		Fields:   testFields(),
		Values:   Record{"id": float64(4), "nombre": "Zona <B>", "idtorneo": int64(2), "activo": true, "codcantfechas": float64(10), "password": "secret"},
		KeyField: "id",
		Submit:   "Guardar zona",
	})

	form := doc.Find("form")
	require.Equal(t, 1, form.Length())
	action, _ := form.Attr("action")
	assert.Equal(t, "/admin/zonas", action)
	style, _ := form.Attr("style")
	assert.Contains(t, style, "repeat(2")

	// fields render in schema order
	var names []string
	form.Find("[name]").Each(func(_ int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		names = append(names, name)
	})
	assert.Equal(t, []string{"id", "nombre", "idtorneo", "activo", "codcantfechas", "observaciones", "monto", "escudo", "password", "fecha"}, names)

	hidden, _ := form.Find(`input[type=hidden]`).Attr("value")
	assert.Equal(t, "4", hidden)

	value, _ := form.Find(`input[name=nombre]`).Attr("value")
	assert.Equal(t, "Zona <B>", value)
	assert.Equal(t, 1, form.Find(`input[name=nombre][required]`).Length())

	assert.Equal(t, "Clausura", form.Find(`select[name=idtorneo] option[selected]`).Text())
	assert.Equal(t, 3, form.Find(`select[name=idtorneo] option`).Length())

	// checkbox sits inside its label, other inputs follow theirs
	assert.Equal(t, 1, form.Find(`label input[type=checkbox][name=activo][checked]`).Length())
	assert.Equal(t, 0, form.Find(`label input[name=nombre]`).Length())

	textareaStyle, _ := form.Find(`textarea[name=observaciones]`).Parent().Attr("style")
	assert.Contains(t, textareaStyle, "span 2")

	step, _ := form.Find(`input[name=monto]`).Attr("step")
	assert.Equal(t, "0.01", step)
	assert.Equal(t, "$", form.Find(".currency").Text())

	accept, _ := form.Find(`input[type=file]`).Attr("accept")
	assert.Equal(t, "image/*", accept)

	_, hasValue := form.Find(`input[name=password]`).Attr("value")
	assert.False(t, hasValue)

	assert.Equal(t, 1, form.Find(`input[type=date][name=fecha]`).Length())
	assert.Equal(t, "Guardar zona", form.Find(`button[type=submit]`).Text())
}

func TestRender_NoKeyWhenNew(t *testing.T) {
	doc := renderDoc(t, Form{Action: "/admin/zonas", Fields: testFields(), Values: Record{"id": ""}, KeyField: "id"})

	assert.Equal(t, 0, doc.Find(`input[type=hidden]`).Length())
	assert.Equal(t, "Guardar", doc.Find(`button[type=submit]`).Text())
	assert.Equal(t, 0, doc.Find(`input[type=checkbox][checked]`).Length())
}

func TestRender_Error(t *testing.T) {
	doc := renderDoc(t, Form{Action: "/admin/zonas", Fields: testFields(), Error: "Nombre is required"})

	assert.Equal(t, "Nombre is required", doc.Find(".form-error").Text())
}

func TestRender_RichTextSanitised(t *testing.T) {
	doc := renderDoc(t, Form{
		Action: "/admin/torneos",
		Fields: []Field{RichTextField{Base: Base{Name: "descripcion", Label: "Descripción"}}},
		Values: Record{"descripcion": `<b>Final</b><script>alert(1)</script>`},
	})

	preview := doc.Find(".richtext-preview")
	require.Equal(t, 1, preview.Length())
	assert.Equal(t, 1, preview.Find("b").Length())
	assert.Equal(t, 0, preview.Find("script").Length())
	assert.Equal(t, `<b>Final</b><script>alert(1)</script>`, doc.Find("textarea[name=descripcion]").Text())
}

// region Escaping tests

func TestRender_EscapesAttributes(t *testing.T) {
	doc := renderDoc(t, Form{
		Action: "/admin/zonas",
		Fields: []Field{
			TextField{Base: Base{Name: "nombre", Label: `Nombre "oficial"`, Placeholder: `"><script>alert(1)</script>`}, Variant: KindText},
			SelectField{Base: Base{Name: "idtorneo", Label: "Torneo"}, Options: []Option{{Label: "<i>Apertura</i>", Value: `1" selected="`}}},
		},
		Values: Record{"nombre": `" onfocus="alert(1)`},
	})

	assert.Equal(t, 0, doc.Find("script").Length())
	placeholder, _ := doc.Find(`input[name=nombre]`).Attr("placeholder")
	assert.Equal(t, `"><script>alert(1)</script>`, placeholder)
	value, _ := doc.Find(`input[name=nombre]`).Attr("value")
	assert.Equal(t, `" onfocus="alert(1)`, value)
	_, hasHandler := doc.Find(`input[name=nombre]`).Attr("onfocus")
	assert.False(t, hasHandler)

	option := doc.Find(`select[name=idtorneo] option`).Last()
	optionValue, _ := option.Attr("value")
	assert.Equal(t, `1" selected="`, optionValue)
	assert.Equal(t, "<i>Apertura</i>", option.Text())
	assert.Equal(t, 0, doc.Find(`option[selected]`).Length())
	assert.Contains(t, doc.Find("label[for=f-nombre]").Text(), `Nombre "oficial"`)
}

func TestRender_UnsafeActionIsNeutralised(t *testing.T) {
	doc := renderDoc(t, Form{Action: "javascript:alert(1)", Fields: testFields()})

	action, _ := doc.Find("form").Attr("action")
	assert.NotContains(t, action, "javascript")
}

// endregion
