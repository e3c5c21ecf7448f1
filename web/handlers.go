/* handlers.go
 * Contains the HTTP handlers of the console. Every page request builds its own form controller, so a failed save
 * is re-rendered with the modal open and the submitted data intact
 */

package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"torneos-admin/api/forms"
	"torneos-admin/api/resource"

	"github.com/a-h/templ"
	"go.uber.org/zap"
)

// maxSuggestions caps the search endpoint results
const maxSuggestions = 10

// IndexHandler redirects to the first resource
func (s *Server) IndexHandler(w http.ResponseWriter, r *http.Request) {
	names := s.api.Resources()
	if len(names) == 0 {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/admin/"+names[0], http.StatusSeeOther)
}

// ListHandler renders one page of a resource. ?edit=<id> opens the form seeded with that record, ?new=1 opens an
// empty form
func (s *Server) ListHandler(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("resource")
	h, err := s.api.Resource(name)
	if err != nil {
		s.notFound(w, r, name)
		return
	}

	q := queryFrom(r)
	if err := s.api.Fetch(r.Context(), name, q); err != nil && !errors.Is(err, resource.ErrStale) {
		s.logger.Warn("list fetch failed", zap.String("resource", name), zap.Error(err))
	}
	view := s.buildView(name, h, q.Search)

	params := r.URL.Query()
	controller := s.newController(name)
	if raw := params.Get("edit"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			http.Error(w, "invalid id", http.StatusBadRequest)
			return
		}
		seed, err := s.seed(r.Context(), h, id)
		if err != nil {
			view.Error = err.Error()
		} else {
			controller.Open(seed)
		}
	} else if params.Get("new") != "" {
		controller.Open(nil)
	}
	if controller.IsOpen() {
		view.Form = s.formFor(name, h, controller.Values(), "")
	}

	s.renderPage(w, r, http.StatusOK, name, view.Title, listPage(view))
}

// SaveHandler decodes a posted form and saves it. On success it redirects to the list, on failure the page is
// rendered again with the modal open
func (s *Server) SaveHandler(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("resource")
	h, err := s.api.Resource(name)
	if err != nil {
		s.notFound(w, r, name)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	fields, _ := s.api.Fields(name)

	controller := s.newController(name)
	events := forms.DecodeForm(fields, r.PostForm, h.KeyField())
	controller.Open(nil)
	if id, err := resource.KeyOf(r.PostForm.Get(h.KeyField())); err == nil && id > 0 {
		seed, err := s.seed(r.Context(), h, id)
		if err != nil {
			s.logger.Warn("failed to load record for update", zap.String("resource", name), zap.Int64("id", id), zap.Error(err))
			controller.HandleChanges(events)
			view := s.buildView(name, h, "")
			view.Form = s.formFor(name, h, controller.Values(), err.Error())
			s.renderPage(w, r, http.StatusUnprocessableEntity, name, view.Title, listPage(view))
			return
		}
		controller.Open(seed)
	}
	controller.HandleChanges(events)

	if _, err := s.api.SaveRecord(r.Context(), name, controller.Values()); err != nil {
		s.logger.Info("save rejected", zap.String("resource", name), zap.Error(err))
		view := s.buildView(name, h, "")
		view.Form = s.formFor(name, h, controller.Values(), err.Error())
		s.renderPage(w, r, http.StatusUnprocessableEntity, name, view.Title, listPage(view))
		return
	}
	controller.Close()
	http.Redirect(w, r, "/admin/"+name, http.StatusSeeOther)
}

// DeleteHandler deletes a record and redirects to the list. The outcome is shown through the notice banner
func (s *Server) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("resource")
	if _, err := s.api.Resource(name); err != nil {
		s.notFound(w, r, name)
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	if err := s.api.DeleteRecord(r.Context(), name, id); err != nil {
		s.logger.Warn("delete failed", zap.String("resource", name), zap.Int64("id", id), zap.Error(err))
	}
	http.Redirect(w, r, "/admin/"+name, http.StatusSeeOther)
}

// suggestion is one search result
type suggestion struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

// SearchHandler fuzzy-filters the loaded records of a resource and returns the best matches as json
func (s *Server) SearchHandler(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("resource")
	h, err := s.api.Resource(name)
	if err != nil {
		respondWithJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}

	results := []suggestion{}
	for _, rec := range h.FilterRecords(r.URL.Query().Get("q")) {
		if len(results) == maxSuggestions {
			break
		}
		id, err := resource.KeyOf(rec[h.KeyField()])
		if err != nil {
			continue
		}
		label, _ := h.LabelOf(id)
		results = append(results, suggestion{ID: id, Label: label})
	}
	respondWithJSON(w, http.StatusOK, results)
}

// LoginPageHandler renders the login form
func (s *Server) LoginPageHandler(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusOK, "", "Ingresar", loginPage(loginForm("", "")))
}

// LoginHandler authenticates and redirects to the console
func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	username := strings.TrimSpace(r.PostForm.Get("username"))
	if _, err := s.api.Login(r.Context(), username, r.PostForm.Get("password")); err != nil {
		s.logger.Info("login rejected", zap.String("user", username), zap.Error(err))
		s.renderPage(w, r, http.StatusUnauthorized, "", "Ingresar", loginPage(loginForm(username, err.Error())))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// LogoutHandler clears the session
func (s *Server) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.api.Logout(r.Context()); err != nil {
		s.logger.Warn("logout failed", zap.Error(err))
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func loginForm(username string, errMessage string) forms.Form {
	return forms.Form{
		ID:     "login",
		Action: "/login",
		Fields: []forms.Field{
			forms.TextField{Base: forms.Base{Name: "username", Label: "Usuario", Required: true}, Variant: forms.KindText},
			forms.TextField{Base: forms.Base{Name: "password", Label: "Contraseña", Required: true}, Variant: forms.KindPassword},
		},
		Values: forms.Record{"username": username},
		Submit: "Ingresar",
		Error:  errMessage,
	}
}

func (s *Server) newController(name string) *forms.Controller {
	schema, _ := s.api.Schema(name)
	return forms.NewController(schema.Initial())
}

// seed returns the record to edit, from the loaded list when possible
func (s *Server) seed(ctx context.Context, h resource.Handle, id int64) (forms.Record, error) {
	if rec, found := h.FindRecord(id); found {
		return rec, nil
	}
	return h.GetRecord(ctx, id)
}

func (s *Server) formFor(name string, h resource.Handle, values forms.Record, errMessage string) *forms.Form {
	fields, _ := s.api.Fields(name)
	return &forms.Form{
		ID:       "form-" + name,
		Action:   "/admin/" + name,
		Fields:   fields,
		Values:   values,
		KeyField: h.KeyField(),
		Error:    errMessage,
	}
}

// buildView formats the loaded list of a resource. Foreign keys show the label of the referenced record
func (s *Server) buildView(name string, h resource.Handle, term string) listView {
	schema, _ := s.api.Schema(name)
	meta := h.Meta()
	view := listView{
		Resource: name,
		Title:    schema.Title,
		Columns:  make([]string, 0, len(schema.Columns)),
		Search:   term,
		Page:     meta.Page,
		Limit:    meta.Limit,
		Total:    meta.Total,
		Error:    meta.Error,
	}
	for _, col := range schema.Columns {
		if f, ok := schema.Field(col); ok {
			view.Columns = append(view.Columns, f.Common().Label)
		} else {
			view.Columns = append(view.Columns, strings.ToUpper(col))
		}
	}

	for _, rec := range h.Rows() {
		id, _ := resource.KeyOf(rec[h.KeyField()])
		cells := make([]string, len(schema.Columns))
		for i, col := range schema.Columns {
			cells[i] = s.cell(schema, col, rec[col])
		}
		view.Rows = append(view.Rows, row{ID: id, Cells: cells})
	}
	return view
}

func (s *Server) cell(schema forms.Schema, col string, value any) string {
	f, ok := schema.Field(col)
	if !ok {
		return forms.ValueString(value)
	}
	switch field := f.(type) {
	case forms.CheckboxField:
		if b, _ := value.(bool); b {
			return "Sí"
		}
		return "No"
	case forms.SelectField:
		text := forms.ValueString(value)
		if field.OptionsFrom != "" {
			id, err := resource.KeyOf(value)
			if err != nil || id == 0 {
				return ""
			}
			if ref, err := s.api.Resource(field.OptionsFrom); err == nil {
				if label, ok := ref.LabelOf(id); ok {
					return label
				}
			}
			return "#" + text
		}
		for _, opt := range field.Options {
			if opt.Value == text {
				return opt.Label
			}
		}
		return text
	default:
		return forms.ValueString(value)
	}
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, current string, title string, body templ.Component) {
	data := layoutData{Title: title, Current: current}
	for _, name := range s.api.Resources() {
		schema, _ := s.api.Schema(name)
		data.Nav = append(data.Nav, navItem{Name: name, Title: schema.Title})
	}
	if s.api.Session.LoggedIn() {
		data.User = s.api.Session.User().Username
	}
	if notice, ok := s.api.Notifier.Current(); ok {
		data.Notice = &notice
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := layout(data, body).Render(r.Context(), w); err != nil {
		s.logger.Error("render failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request, name string) {
	body := templ.ComponentFunc(func(ctx context.Context, w2 io.Writer) error {
		_, err := io.WriteString(w2, `<p class="error">Recurso desconocido: `+templ.EscapeString(name)+`</p>`)
		return err
	})
	s.renderPage(w, r, http.StatusNotFound, "", "No encontrado", body)
}

// queryFrom reads page, limit and q from the url
func queryFrom(r *http.Request) resource.Query {
	params := r.URL.Query()
	page, _ := strconv.Atoi(params.Get("page"))
	limit, _ := strconv.Atoi(params.Get("limit"))
	return resource.Query{Page: page, Limit: limit, Search: strings.TrimSpace(params.Get("q"))}.Normalized()
}

// respondWithJSON writes payload as a json response
func respondWithJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
