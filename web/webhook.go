/* webhook.go
 * Contains the refresh webhook. The tournament api calls it after data changed outside the console, bursts of
 * events for the same resource are coalesced into a single re-fetch
 */

package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"torneos-admin/api/search"

	"go.uber.org/zap"
)

// refreshTimeout bounds a webhook triggered re-fetch
const refreshTimeout = 30 * time.Second

type RefreshEvent struct {
	Resource string `json:"resource"`
	Event    string `json:"event"` // created, updated or deleted, informational only
}

// isRelevantResource reports whether the event names a registered resource
func isRelevantResource(resource string, registered []string) bool {
	for _, name := range registered {
		if name == resource {
			return true
		}
	}
	return false
}

// RefreshWebhookHandler HTTP endpoint that receives a change notification and schedules a re-fetch of the resource
// Preconditions: HTTP server has been started, receives HTTP ResponseWriter and Http Request
// Postconditions: Responds 202 and re-fetches the resource with its current pagination once events settle
func (s *Server) RefreshWebhookHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	defer r.Body.Close()

	var event RefreshEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		s.logger.Warn("failed to decode webhook", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if !isRelevantResource(event.Resource, s.api.Resources()) {
		w.WriteHeader(http.StatusOK)
		return
	}

	s.logger.Info("refresh event", zap.String("resource", event.Resource), zap.String("event", event.Event))
	s.scheduleRefresh(event.Resource)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) scheduleRefresh(resource string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	d, ok := s.refreshers[resource]
	if !ok {
		d = search.NewDebouncer(s.refreshDelay, s.refresh)
		s.refreshers[resource] = d
	}
	s.mu.Unlock()
	d.Trigger(resource)
}

func (s *Server) refresh(resource string) {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()
	if err := s.api.Refresh(ctx, resource); err != nil {
		s.logger.Warn("refresh failed", zap.String("resource", resource), zap.Error(err))
	}
}

// Close cancels scheduled refreshes and waits for running ones. Later webhooks are not scheduled
func (s *Server) Close() {
	s.mu.Lock()
	s.closed = true
	refreshers := make([]*search.Debouncer, 0, len(s.refreshers))
	for _, d := range s.refreshers {
		refreshers = append(refreshers, d)
	}
	s.mu.Unlock()

	for _, d := range refreshers {
		d.Stop()
	}
}
