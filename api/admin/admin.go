/* admin.go
 * This file contains the public methods used by the admin surfaces (web console and chat bot). Surfaces should only
 * call into resources through this facade so that validation, persistence and notifications stay consistent
 */

package admin

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"torneos-admin/api/client"
	"torneos-admin/api/forms"
	"torneos-admin/api/models"
	"torneos-admin/api/notify"
	"torneos-admin/api/resource"
	"torneos-admin/api/session"
	"torneos-admin/api/store"
	"torneos-admin/config"
	"torneos-admin/logging"

	"go.uber.org/zap"
)

// ErrUnknownResource is returned for names not in the registry
var ErrUnknownResource = errors.New("unknown resource")

// API ties the resource slices to their schemas, the session and the persisted client state
type API struct {
	Store    store.Interface // nil disables persistence
	Session  *session.Manager
	Admin    *client.Client // authenticated requests
	Public   *client.Client // unauthenticated requests
	Notifier *notify.Notifier

	schemas map[string]forms.Schema
	handles map[string]resource.Handle
	order   []string
	public  *resource.Slice[models.Tournament]
	logger  *zap.Logger
}

// NewAPI creates a new API instance with the provided configuration
// Preconditions: Receives a loaded config, an optional store (nil for memory only) and a logger
// Postconditions: Returns the API with the session and any fresh snapshots restored, or an error if the config or
// the form schemas are invalid
func NewAPI(ctx context.Context, cfg config.Config, st store.Interface, logger *zap.Logger) (*API, error) {
	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("api base url is required")
	}
	logger = logging.OrNop(logger)

	schemas, err := forms.LoadSchemas(cfg.FormsFile)
	if err != nil {
		return nil, err
	}

	a := &API{
		Store:    st,
		Notifier: notify.New(notify.DefaultTTL),
		schemas:  schemas,
		handles:  make(map[string]resource.Handle),
		logger:   logger,
	}

	var persister session.Persister
	if st != nil {
		persister = st
	}
	a.Session = session.NewManager(persister, logger)

	burst := int(cfg.RateLimit)
	a.Admin, err = client.New(cfg.APIBaseURL,
		client.WithTimeout(cfg.RequestTimeout),
		client.WithRateLimit(cfg.RateLimit, burst),
		client.WithTokenSource(a.Session.Token),
		client.WithLogger(logger.Named("admin-client")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize api client: %w", err)
	}
	a.Public, err = client.New(cfg.APIBaseURL,
		client.WithTimeout(cfg.RequestTimeout),
		client.WithRateLimit(cfg.RateLimit, burst),
		client.WithLogger(logger.Named("public-client")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize public client: %w", err)
	}

	a.registerResources()
	a.public = resource.New[models.Tournament](a.Public, resource.Definition[models.Tournament]{
		Name: "torneos-publicos", Path: "/api/public/torneos", ListKey: "torneos",
		Label: func(t models.Tournament) string { return t.Nombre },
	}, logger)

	for name := range a.handles {
		if _, ok := a.schemas[name]; !ok {
			return nil, fmt.Errorf("no form schema for resource %s", name)
		}
	}

	if err := a.Session.Load(ctx); err != nil {
		logger.Warn("session not restored", zap.Error(err))
	}
	a.restoreSnapshots(ctx)
	return a, nil
}

// Close releases the store connection
func (a *API) Close(ctx context.Context) error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Close(ctx)
}

// Resource returns the handle registered under name
func (a *API) Resource(name string) (resource.Handle, error) {
	h, ok := a.handles[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownResource, name)
	}
	return h, nil
}

// Resources returns the registered resource names in registration order
func (a *API) Resources() []string {
	return append([]string(nil), a.order...)
}

// Schema returns the form schema of a resource
func (a *API) Schema(name string) (forms.Schema, error) {
	schema, ok := a.schemas[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return forms.Schema{}, fmt.Errorf("%w: %s", ErrUnknownResource, name)
	}
	return schema, nil
}

// Fields returns the form fields of a resource with the options of foreign key selects filled from the loaded lists
func (a *API) Fields(name string) ([]forms.Field, error) {
	schema, err := a.Schema(name)
	if err != nil {
		return nil, err
	}
	return forms.WithOptions(schema.Fields, a.Options), nil
}

// Options returns the select options of a resource built from its in-memory list, sorted by label
func (a *API) Options(name string) []forms.Option {
	h, ok := a.handles[name]
	if !ok {
		return nil
	}
	var options []forms.Option
	for _, row := range h.Rows() {
		id, err := resource.KeyOf(row[h.KeyField()])
		if err != nil || id == 0 {
			continue
		}
		label, _ := h.LabelOf(id)
		options = append(options, forms.Option{Label: label, Value: strconv.FormatInt(id, 10)})
	}
	sort.SliceStable(options, func(i, j int) bool {
		return strings.ToLower(options[i].Label) < strings.ToLower(options[j].Label)
	})
	return options
}

// Fetch loads a page of a resource. Failures are also reported through the notifier
func (a *API) Fetch(ctx context.Context, name string, q resource.Query) error {
	h, err := a.Resource(name)
	if err != nil {
		return err
	}
	if err := h.Fetch(ctx, q); err != nil {
		if !errors.Is(err, resource.ErrStale) {
			a.Notifier.Error(err.Error())
		}
		return err
	}
	return nil
}

// Refresh re-fetches a resource with its current pagination
func (a *API) Refresh(ctx context.Context, name string) error {
	h, err := a.Resource(name)
	if err != nil {
		return err
	}
	meta := h.Meta()
	return a.Fetch(ctx, name, resource.Query{Page: meta.Page, Limit: meta.Limit})
}

// SaveRecord contains the logic to save a record coming from a form.
// Preconditions: Receives the resource name and the form record, the key field empty or absent for a create
// Postconditions: Returns the saved record as returned by the server, a *forms.ValidationError when the record is
// invalid (nothing is sent), or the api error. The outcome is reported through the notifier
func (a *API) SaveRecord(ctx context.Context, name string, rec forms.Record) (forms.Record, error) {
	h, err := a.Resource(name)
	if err != nil {
		return nil, err
	}
	schema, err := a.Schema(name)
	if err != nil {
		return nil, err
	}

	if err := schema.Validate(rec); err != nil {
		a.Notifier.Error(err.Error())
		return nil, err
	}
	coerced, err := schema.Coerce(rec)
	if err != nil {
		a.Notifier.Error(err.Error())
		return nil, err
	}

	saved, err := h.SaveRecord(ctx, coerced)
	if err != nil {
		a.Notifier.Error(err.Error())
		return nil, err
	}
	id, _ := resource.KeyOf(saved[h.KeyField()])
	a.Notifier.Success(fmt.Sprintf("%s: record #%d saved", schema.Title, id))
	a.logger.Info("record saved", zap.String("resource", h.Name()), zap.Int64("id", id))
	return saved, nil
}

// DeleteRecord deletes a record and reports the outcome through the notifier
func (a *API) DeleteRecord(ctx context.Context, name string, id int64) error {
	h, err := a.Resource(name)
	if err != nil {
		return err
	}
	if id <= 0 {
		return fmt.Errorf("invalid id %d", id)
	}
	if err := h.Delete(ctx, id); err != nil {
		a.Notifier.Error(err.Error())
		return err
	}
	a.Notifier.Success(fmt.Sprintf("%s: record #%d deleted", h.Name(), id))
	a.logger.Info("record deleted", zap.String("resource", h.Name()), zap.Int64("id", id))
	return nil
}

// loginResponse accepts the token under either name the auth endpoint has used
type loginResponse struct {
	Token       string      `json:"token"`
	AccessToken string      `json:"accessToken"`
	User        models.User `json:"user"`
}

// Login authenticates against the api and saves the session
// Preconditions: Receives a non empty username and password
// Postconditions: Returns the logged in user, or an error if the credentials were rejected
func (a *API) Login(ctx context.Context, username string, password string) (models.User, error) {
	if username == "" || password == "" {
		return models.User{}, fmt.Errorf("username and password are required")
	}

	var res loginResponse
	body := map[string]string{"username": username, "password": password}
	if err := a.Public.Post(ctx, "/api/auth/login", body, &res); err != nil {
		return models.User{}, err
	}
	token := res.Token
	if token == "" {
		token = res.AccessToken
	}
	if token == "" {
		return models.User{}, fmt.Errorf("login response did not include a token")
	}
	if res.User.Username == "" {
		res.User.Username = username
	}

	if err := a.Session.Save(ctx, token, res.User); err != nil {
		a.logger.Warn("session not persisted", zap.Error(err))
	}
	a.logger.Info("logged in", zap.String("user", res.User.Username))
	return a.Session.User(), nil
}

// Logout clears the session
func (a *API) Logout(ctx context.Context) error {
	return a.Session.Clear(ctx)
}

// Register posts a public team registration
// Preconditions: The registration names a tournament, a team, a contact and an email
// Postconditions: Returns the created registration, a *forms.ValidationError, or the api error
func (a *API) Register(ctx context.Context, reg models.Registration) (models.Registration, error) {
	schema, err := a.Schema("inscripciones")
	if err != nil {
		return models.Registration{}, err
	}
	rec, err := resource.ToRecord(reg)
	if err != nil {
		return models.Registration{}, err
	}
	if err := schema.Validate(rec); err != nil {
		return models.Registration{}, err
	}

	var res struct {
		Inscripcion *models.Registration `json:"inscripcion"`
		models.Registration
	}
	if err := a.Public.Post(ctx, "/api/public/inscripciones", reg, &res); err != nil {
		return models.Registration{}, err
	}
	if res.Inscripcion != nil {
		return *res.Inscripcion, nil
	}
	if res.ID == 0 {
		return models.Registration{}, resource.ErrMissingKey
	}
	return res.Registration, nil
}

// PublicTournaments lists the tournaments open to the public
func (a *API) PublicTournaments(ctx context.Context, q resource.Query) (resource.State[models.Tournament], error) {
	if err := a.public.Fetch(ctx, q); err != nil {
		return resource.State[models.Tournament]{}, err
	}
	return a.public.State(), nil
}
