/* server_test.go
 * Contains unit tests for the console routes. Requests go through Server.Handler against a fake api served with
 * httptest, rendered pages are inspected with goquery
 */

package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"torneos-admin/api/admin"
	"torneos-admin/config"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// apiCall is a request seen by the fake api
type apiCall struct {
	Method string
	Path   string
	Query  url.Values
	Body   map[string]any
}

// fakeAPI answers by "METHOD path" and records every call
type fakeAPI struct {
	mu        sync.Mutex
	calls     []apiCall
	responses map[string]string
	statuses  map[string]int
}

func (f *fakeAPI) on(method string, path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[method+" "+path] = body
	f.statuses[method+" "+path] = status
}

func (f *fakeAPI) recorded() []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]apiCall(nil), f.calls...)
}

func (f *fakeAPI) count(method string, path string) int {
	n := 0
	for _, c := range f.recorded() {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

func newTestServer(t *testing.T) (*Server, *fakeAPI) {
	t.Helper()
	fake := &fakeAPI{responses: map[string]string{}, statuses: map[string]int{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fake.mu.Lock()
		defer fake.mu.Unlock()
		call := apiCall{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query()}
		json.NewDecoder(r.Body).Decode(&call.Body)
		fake.calls = append(fake.calls, call)

		key := r.Method + " " + r.URL.Path
		body, ok := fake.responses[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"not found"}`))
			return
		}
		w.WriteHeader(fake.statuses[key])
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	apiPtr, err := admin.NewAPI(context.Background(), config.Config{APIBaseURL: srv.URL, RequestTimeout: 5 * time.Second}, nil, nil)
	require.NoError(t, err)
	s := NewServer(Config{API: apiPtr, RefreshDelay: 20 * time.Millisecond})
	t.Cleanup(s.Close)
	return s, fake
}

func do(t *testing.T, s *Server, method string, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func parse(t *testing.T, w *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	return doc
}

const zonasPage = `{"zonas":[{"id":1,"idtorneo":3,"nombre":"Zona A","abrev":"ZA","codcantfechas":10},{"id":2,"idtorneo":3,"nombre":"Zona B","abrev":"ZB","codcantfechas":8}],"total":12,"page":1,"limit":10}`

// region Config tests

func TestNewServer_Defaults(t *testing.T) {
	s := NewServer(Config{Addr: ":8080"})

	assert.NotNil(t, s.logger)
	assert.Nil(t, s.api)
	assert.NotNil(t, s.refreshers)
}

// endregion

// region List tests

func TestIndex_RedirectsToFirstResource(t *testing.T) {
	s, _ := newTestServer(t)
	w := do(t, s, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/torneos", w.Header().Get("Location"))
}

func TestList_RendersTable(t *testing.T) {
	s, fake := newTestServer(t)
	fake.on("GET", "/api/zonas", 200, zonasPage)
	fake.on("GET", "/api/torneos", 200, `{"torneos":[{"id":3,"nombre":"Clausura"}]}`)

	// load torneos first so the foreign key column shows its label
	do(t, s, http.MethodGet, "/admin/torneos", nil)
	w := do(t, s, http.MethodGet, "/admin/zonas?page=1&limit=10&q=Zona", nil)
	require.Equal(t, http.StatusOK, w.Code)
	doc := parse(t, w)

	assert.Equal(t, "Zonas", doc.Find("section.resource h1").Text())
	assert.Equal(t, 2, doc.Find("tbody tr[data-id]").Length())
	first := doc.Find("tbody tr[data-id=\"1\"] td")
	assert.Equal(t, "Zona A", first.Eq(1).Text())
	assert.Equal(t, "Clausura", first.Eq(4).Text())
	assert.Contains(t, doc.Find(".pagination .summary").Text(), "Página 1 de 2 (12 registros)")
	assert.Equal(t, 1, doc.Find(`.pagination a[rel=next]`).Length())
	assert.Equal(t, 0, doc.Find(".modal").Length())
	assert.Equal(t, 1, doc.Find(`nav.sidebar li.active a[href="/admin/zonas"]`).Length())

	debounce, _ := doc.Find(`input[name=q]`).Attr("data-debounce-ms")
	assert.Equal(t, "300", debounce)

	calls := fake.recorded()
	last := calls[len(calls)-1]
	assert.Equal(t, "Zona", last.Query.Get("searchTerm"))
}

func TestList_FetchErrorKeepsRows(t *testing.T) {
	s, fake := newTestServer(t)
	fake.on("GET", "/api/zonas", 200, zonasPage)
	do(t, s, http.MethodGet, "/admin/zonas", nil)

	fake.on("GET", "/api/zonas", 500, `{"error":"database unavailable"}`)
	w := do(t, s, http.MethodGet, "/admin/zonas", nil)
	doc := parse(t, w)

	assert.Equal(t, 2, doc.Find("tbody tr[data-id]").Length())
	assert.Equal(t, "database unavailable", doc.Find(".error").Text())
	assert.Equal(t, "database unavailable", doc.Find(".notice-error").Text())
}

func TestList_UnknownResource(t *testing.T) {
	s, _ := newTestServer(t)
	w := do(t, s, http.MethodGet, "/admin/arbitros", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestList_OpenModal(t *testing.T) {
	s, fake := newTestServer(t)
	fake.on("GET", "/api/zonas", 200, zonasPage)

	doc := parse(t, do(t, s, http.MethodGet, "/admin/zonas?edit=2", nil))
	modal := doc.Find(".modal form")
	require.Equal(t, 1, modal.Length())
	nombre, _ := modal.Find(`input[name=nombre]`).Attr("value")
	assert.Equal(t, "Zona B", nombre)
	id, _ := modal.Find(`input[type=hidden][name=id]`).Attr("value")
	assert.Equal(t, "2", id)

	doc = parse(t, do(t, s, http.MethodGet, "/admin/zonas?new=1", nil))
	nombre, _ = doc.Find(`.modal input[name=nombre]`).Attr("value")
	assert.Equal(t, "", nombre)
	assert.Equal(t, 0, doc.Find(`.modal input[type=hidden]`).Length())

	w := do(t, s, http.MethodGet, "/admin/zonas?edit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestList_EscapesRecordsAndSearch(t *testing.T) {
	s, fake := newTestServer(t)
	fake.on("GET", "/api/zonas", 200, `{"zonas":[{"id":1,"idtorneo":3,"nombre":"<script>alert(1)</script>","abrev":"ZA"}],"total":1}`)

	doc := parse(t, do(t, s, http.MethodGet, "/admin/zonas?q="+url.QueryEscape(`"><b>x</b>`), nil))

	assert.Equal(t, 0, doc.Find("script").Length())
	assert.Equal(t, "<script>alert(1)</script>", doc.Find(`tbody tr[data-id="1"] td`).Eq(1).Text())
	q, _ := doc.Find(`input[name=q]`).Attr("value")
	assert.Equal(t, `"><b>x</b>`, q)
	assert.Equal(t, 0, doc.Find("form.search b").Length())
}

// endregion

// region Save tests

func TestSave_CreateRedirects(t *testing.T) {
	s, fake := newTestServer(t)
	fake.on("POST", "/api/zonas", 201, `{"zona":{"id":5,"idtorneo":3,"nombre":"Zona A","abrev":"ZA","codcantfechas":10}}`)

	w := do(t, s, http.MethodPost, "/admin/zonas", url.Values{
		"idtorneo": {"3"}, "nombre": {"Zona A"}, "abrev": {"ZA"}, "codcantfechas": {"10"}, "codtipozona": {""},
	})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/zonas", w.Header().Get("Location"))
	require.Equal(t, 1, fake.count("POST", "/api/zonas"))
	body := fake.recorded()[0].Body
	assert.Equal(t, "Zona A", body["nombre"])
	assert.Equal(t, float64(10), body["codcantfechas"])
	assert.NotContains(t, body, "id")
}

func TestSave_FailureKeepsModalOpen(t *testing.T) {
	s, fake := newTestServer(t)
	fake.on("POST", "/api/zonas", 400, `{"message":"La abreviatura ya existe"}`)

	w := do(t, s, http.MethodPost, "/admin/zonas", url.Values{
		"idtorneo": {"3"}, "nombre": {"Zona A"}, "abrev": {"ZA"}, "codcantfechas": {"10"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	doc := parse(t, w)

	modal := doc.Find(".modal form")
	require.Equal(t, 1, modal.Length())
	assert.Equal(t, "La abreviatura ya existe", modal.Find(".form-error").Text())
	nombre, _ := modal.Find(`input[name=nombre]`).Attr("value")
	assert.Equal(t, "Zona A", nombre)
	abrev, _ := modal.Find(`input[name=abrev]`).Attr("value")
	assert.Equal(t, "ZA", abrev)
}

func TestSave_ValidationFailure(t *testing.T) {
	s, fake := newTestServer(t)

	w := do(t, s, http.MethodPost, "/admin/zonas", url.Values{"nombre": {"Zona A"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, 0, fake.count("POST", "/api/zonas"))

	doc := parse(t, w)
	assert.Contains(t, doc.Find(".modal .form-error").Text(), "Torneo is required")
}

func TestSave_UpdateCheckbox(t *testing.T) {
	s, fake := newTestServer(t)
	fake.on("GET", "/api/equipos", 200, `{"equipos":[{"id":42,"nombre":"Los Pumas","escudo":"pumas.png","activo":true}]}`)
	fake.on("PUT", "/api/equipos/42", 200, `{"equipo":{"id":42,"nombre":"Los Pumas","escudo":"pumas.png","activo":false}}`)
	do(t, s, http.MethodGet, "/admin/equipos", nil)

	// an unchecked checkbox is absent from the post
	w := do(t, s, http.MethodPost, "/admin/equipos", url.Values{"id": {"42"}, "nombre": {"Los Pumas"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)

	var put apiCall
	for _, c := range fake.recorded() {
		if c.Method == "PUT" {
			put = c
		}
	}
	assert.Equal(t, "/api/equipos/42", put.Path)
	assert.Equal(t, false, put.Body["activo"])
	assert.Equal(t, "pumas.png", put.Body["escudo"])
}

func TestSave_UpdateOutsideLoadedPageKeepsFileFields(t *testing.T) {
	s, fake := newTestServer(t)
	fake.on("GET", "/api/equipos/42", 200, `{"equipo":{"id":42,"nombre":"Los Pumas","escudo":"pumas.png","activo":true}}`)
	fake.on("PUT", "/api/equipos/42", 200, `{"equipo":{"id":42,"nombre":"Pumas","escudo":"pumas.png","activo":true}}`)

	w := do(t, s, http.MethodPost, "/admin/equipos", url.Values{"id": {"42"}, "nombre": {"Pumas"}, "activo": {"on"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, 1, fake.count("GET", "/api/equipos/42"))

	var put apiCall
	for _, c := range fake.recorded() {
		if c.Method == "PUT" {
			put = c
		}
	}
	assert.Equal(t, "Pumas", put.Body["nombre"])
	assert.Equal(t, "pumas.png", put.Body["escudo"])
}

func TestSave_UpdateOfMissingRecordRerendersForm(t *testing.T) {
	s, fake := newTestServer(t)

	w := do(t, s, http.MethodPost, "/admin/equipos", url.Values{"id": {"77"}, "nombre": {"Pumas"}})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Zero(t, fake.count("PUT", "/api/equipos/77"))
	doc := parse(t, w)
	assert.Equal(t, "Pumas", doc.Find(`.modal input[name="nombre"]`).AttrOr("value", ""))
	assert.Contains(t, doc.Find(".modal .form-error").Text(), "not found")
}

// endregion

// region Delete tests

func TestDelete(t *testing.T) {
	s, fake := newTestServer(t)
	fake.on("GET", "/api/equipos", 200, `[{"id":42,"nombre":"Los Pumas"},{"id":43,"nombre":"Halcones"}]`)
	fake.on("DELETE", "/api/equipos/42", 200, `{}`)
	do(t, s, http.MethodGet, "/admin/equipos", nil)

	w := do(t, s, http.MethodPost, "/admin/equipos/42/delete", url.Values{})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, 1, fake.count("DELETE", "/api/equipos/42"))

	h, _ := s.api.Resource("equipos")
	_, found := h.FindRecord(42)
	assert.False(t, found)

	w = do(t, s, http.MethodPost, "/admin/equipos/abc/delete", url.Values{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// endregion

// region Search tests

func TestSearch(t *testing.T) {
	s, fake := newTestServer(t)
	fake.on("GET", "/api/equipos", 200, `[{"id":42,"nombre":"Los Pumas"},{"id":43,"nombre":"Halcones"}]`)
	do(t, s, http.MethodGet, "/admin/equipos", nil)

	w := do(t, s, http.MethodGet, "/admin/equipos/search?q=halc", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var results []suggestion
	require.NoError(t, json.NewDecoder(w.Body).Decode(&results))
	assert.Equal(t, []suggestion{{ID: 43, Label: "Halcones"}}, results)

	w = do(t, s, http.MethodGet, "/admin/arbitros/search?q=x", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// endregion

// region Login tests

func TestLogin(t *testing.T) {
	s, fake := newTestServer(t)
	fake.on("POST", "/api/auth/login", 200, `{"token":"abc","user":{"id":1,"username":"ana"}}`)
	fake.on("GET", "/api/torneos", 200, `{"torneos":[]}`)

	doc := parse(t, do(t, s, http.MethodGet, "/login", nil))
	assert.Equal(t, 1, doc.Find(`form#login input[name=password][type=password]`).Length())

	w := do(t, s, http.MethodPost, "/login", url.Values{"username": {"ana"}, "password": {"secret"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.True(t, s.api.Session.LoggedIn())

	doc = parse(t, do(t, s, http.MethodGet, "/admin/torneos", nil))
	assert.Equal(t, "ana", doc.Find("form.logout span").Text())

	w = do(t, s, http.MethodPost, "/logout", url.Values{})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.False(t, s.api.Session.LoggedIn())
}

func TestLogin_Rejected(t *testing.T) {
	s, fake := newTestServer(t)
	fake.on("POST", "/api/auth/login", 401, `{"message":"Credenciales inválidas"}`)

	w := do(t, s, http.MethodPost, "/login", url.Values{"username": {"ana"}, "password": {"bad"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	doc := parse(t, w)
	assert.Equal(t, "Credenciales inválidas", doc.Find("form#login .form-error").Text())
	username, _ := doc.Find(`form#login input[name=username]`).Attr("value")
	assert.Equal(t, "ana", username)
}

// endregion
