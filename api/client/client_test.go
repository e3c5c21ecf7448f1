/* client_test.go
 * Contains unit tests for client.go and errors.go using httptest
 */

package client

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type zona struct {
	ID     int64  `json:"id"`
	Nombre string `json:"nombre"`
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := New(server.URL, opts...)
	require.NoError(t, err)
	return c
}

// region New tests

func TestNew_InvalidURL(t *testing.T) {
	_, err := New("not a url")
	assert.Error(t, err)
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	c, err := New("http://localhost:3000/")

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000/api/zonas?page=1", c.URL("/api/zonas", url.Values{"page": {"1"}}))
}

// endregion

// region Do tests

func TestGet_DecodesJSONAndSendsHeaders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/zonas/7", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Equal(t, defaultUserAgent, r.Header.Get("User-Agent"))
		w.Write([]byte(`{"id":7,"nombre":"Zona A"}`))
	}, WithTokenSource(func() string { return "secret" }))

	var out zona
	err := c.Get(context.Background(), "/api/zonas/7", nil, &out)

	require.NoError(t, err)
	assert.Equal(t, zona{ID: 7, Nombre: "Zona A"}, out)
}

func TestGet_NoTokenNoAuthorizationHeader(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}, WithTokenSource(func() string { return "" }))

	err := c.Get(context.Background(), "/api/public/torneos", nil, nil)

	assert.NoError(t, err)
}

func TestPost_SendsJSONBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var buf bytes.Buffer
		buf.ReadFrom(r.Body)
		assert.JSONEq(t, `{"id":0,"nombre":"Zona A"}`, buf.String())
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":3,"nombre":"Zona A"}`))
	})

	var out zona
	err := c.Post(context.Background(), "/api/zonas", zona{Nombre: "Zona A"}, &out)

	require.NoError(t, err)
	assert.Equal(t, int64(3), out.ID)
}

func TestGet_GzipResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gzip", r.Header.Get("Accept-Encoding"))
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		gz.Write([]byte(`{"id":1,"nombre":"gzip"}`))
		gz.Close()
		w.Header().Set("Content-Encoding", "gzip")
		w.Write(buf.Bytes())
	})

	var out zona
	err := c.Get(context.Background(), "/api/zonas/1", nil, &out)

	require.NoError(t, err)
	assert.Equal(t, "gzip", out.Nombre)
}

func TestDelete_EmptyBodyIsSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusOK)
	})

	var out zona
	err := c.Delete(context.Background(), "/api/equipos/42", &out)

	assert.NoError(t, err)
}

// endregion

// region error tests

func TestDo_ServerErrorMessageField(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"El nombre es obligatorio"}`))
	})

	err := c.Get(context.Background(), "/api/zonas", nil, nil)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, KindServer, apiErr.Kind)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "El nombre es obligatorio", err.Error())
}

func TestDo_ServerErrorErrorField(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"Inscripcion duplicada"}`))
	})

	err := c.Post(context.Background(), "/api/public/inscripciones", map[string]string{}, nil)

	require.Error(t, err)
	assert.Equal(t, "Inscripcion duplicada", err.Error())
}

func TestDo_MessageWinsOverError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"primero","error":"segundo"}`))
	})

	err := c.Get(context.Background(), "/api/x", nil, nil)

	require.Error(t, err)
	assert.Equal(t, "primero", err.Error())
}

func TestDo_NestedErrorObject(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Token vencido"}}`))
	})

	err := c.Get(context.Background(), "/api/x", nil, nil)

	require.Error(t, err)
	assert.Equal(t, "Token vencido", err.Error())
}

func TestDo_ServerErrorWithoutPayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("<html>not found</html>"))
	})

	err := c.Get(context.Background(), "/api/x", nil, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "404 Not Found")
}

func TestDo_DecodeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{broken"))
	})

	var out zona
	err := c.Get(context.Background(), "/api/zonas/1", nil, &out)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, KindDecode, apiErr.Kind)
}

func TestDo_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c, err := New(server.URL)
	require.NoError(t, err)
	server.Close()

	err = c.Get(context.Background(), "/api/zonas", nil, nil)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, KindTransport, apiErr.Kind)
	assert.Contains(t, err.Error(), "network error")
}

func TestDo_CancelledContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}, WithRateLimit(1, 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.Get(ctx, "/api/zonas", nil, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

// endregion
