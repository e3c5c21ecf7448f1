/* webhook_test.go
 * Contains unit tests for webhook.go
 */

package web

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"torneos-admin/api/admin"
	"torneos-admin/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// region isRelevantResource tests

func TestIsRelevantResource(t *testing.T) {
	registered := []string{"torneos", "zonas"}

	assert.True(t, isRelevantResource("zonas", registered))
	assert.False(t, isRelevantResource("Zonas", registered))
	assert.False(t, isRelevantResource("arbitros", registered))
	assert.False(t, isRelevantResource("", registered))
}

// endregion

// region RefreshWebhookHandler tests

func TestRefreshWebhookHandler_WrongMethod(t *testing.T) {
	server := &Server{}

	req := httptest.NewRequest(http.MethodGet, "/webhooks/refresh", nil)
	w := httptest.NewRecorder()

	server.RefreshWebhookHandler(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRefreshWebhookHandler_InvalidJSON(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/refresh", bytes.NewBufferString("invalid json"))
	w := httptest.NewRecorder()

	s.RefreshWebhookHandler(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRefreshWebhookHandler_IrrelevantResource(t *testing.T) {
	s, fake := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/refresh", bytes.NewBufferString(`{"resource":"arbitros","event":"updated"}`))
	w := httptest.NewRecorder()

	s.RefreshWebhookHandler(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, fake.recorded())
}

func TestRefreshWebhookHandler_CoalescesBursts(t *testing.T) {
	s, fake := newTestServer(t)
	fake.on("GET", "/api/zonas", 200, zonasPage)

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/refresh", bytes.NewBufferString(`{"resource":"zonas","event":"updated"}`))
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)
		assert.Equal(t, http.StatusAccepted, w.Code)
	}

	assert.Eventually(t, func() bool {
		return fake.count("GET", "/api/zonas") == 1
	}, 2*time.Second, 10*time.Millisecond)

	// no further refresh fires once the burst settled
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, fake.count("GET", "/api/zonas"))

	h, _ := s.api.Resource("zonas")
	assert.Len(t, h.Rows(), 2)
}

func TestClose_WaitsForRunningRefresh(t *testing.T) {
	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	var finished atomic.Bool
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entered <- struct{}{}
		<-release
		w.Write([]byte(`{"zonas":[]}`))
	}))
	t.Cleanup(api.Close)

	apiPtr, err := admin.NewAPI(context.Background(), config.Config{APIBaseURL: api.URL, RequestTimeout: 5 * time.Second}, nil, nil)
	require.NoError(t, err)
	s := NewServer(Config{API: apiPtr, RefreshDelay: 5 * time.Millisecond})

	s.scheduleRefresh("zonas")
	<-entered

	closed := make(chan struct{})
	go func() {
		s.Close()
		finished.Store(true)
		close(closed)
	}()

	time.Sleep(50 * time.Millisecond)
	assert.False(t, finished.Load())

	close(release)
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return after the refresh finished")
	}
}

func TestRefreshWebhookHandler_IgnoredAfterClose(t *testing.T) {
	s, fake := newTestServer(t)
	fake.on("GET", "/api/zonas", 200, zonasPage)
	s.Close()

	req := httptest.NewRequest(http.MethodPost, "/webhooks/refresh", bytes.NewBufferString(`{"resource":"zonas","event":"updated"}`))
	w := httptest.NewRecorder()
	s.RefreshWebhookHandler(w, req)

	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, fake.count("GET", "/api/zonas"))
}

// endregion
