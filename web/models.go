/* models.go
 * Contains the configuration and state of the web console
 */

package web

import (
	"sync"
	"time"

	"torneos-admin/api/admin"
	"torneos-admin/api/search"
	"torneos-admin/logging"

	"go.uber.org/zap"
)

// Config holds the configuration for the web server
type Config struct {
	Addr         string
	API          *admin.API
	Logger       *zap.Logger
	RefreshDelay time.Duration // quiet period used to coalesce refresh webhooks, defaults to search.DefaultDelay
}

// Server is the HTTP server for the admin console and the refresh webhook
type Server struct {
	api    *admin.API
	logger *zap.Logger

	refreshDelay time.Duration
	mu           sync.Mutex
	refreshers   map[string]*search.Debouncer
	closed       bool
}

// NewServer creates a Server from cfg
func NewServer(cfg Config) *Server {
	logger := logging.OrNop(cfg.Logger)
	return &Server{
		api:          cfg.API,
		logger:       logger.Named("web"),
		refreshDelay: cfg.RefreshDelay,
		refreshers:   make(map[string]*search.Debouncer),
	}
}
