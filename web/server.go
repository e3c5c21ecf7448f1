/* server.go
 * Contains the routes of the web console and the Start function that listens for incoming connections
 */

package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Handler returns the router of the console
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.IndexHandler)
	mux.HandleFunc("GET /login", s.LoginPageHandler)
	mux.HandleFunc("POST /login", s.LoginHandler)
	mux.HandleFunc("POST /logout", s.LogoutHandler)
	mux.HandleFunc("GET /admin/{resource}", s.ListHandler)
	mux.HandleFunc("POST /admin/{resource}", s.SaveHandler)
	mux.HandleFunc("POST /admin/{resource}/{id}/delete", s.DeleteHandler)
	mux.HandleFunc("GET /admin/{resource}/search", s.SearchHandler)
	mux.HandleFunc("/webhooks/refresh", s.RefreshWebhookHandler)
	return mux
}

// Start initializes and starts the HTTP server with the given configuration. It returns once ctx is cancelled and
// the server has shut down
func Start(ctx context.Context, cfg Config) error {
	s := NewServer(cfg)
	defer s.Close()

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
