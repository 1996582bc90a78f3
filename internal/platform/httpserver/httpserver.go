package httpserver

import (
	"net/http"
	"time"

	"taskboard/internal/platform/config"
)

const (
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 60 * time.Second
	// writeSlack lets a handler that hit the request timeout still write its 504.
	writeSlack = 5 * time.Second
)

// New builds the API server. Read and write deadlines follow the configured
// per-request timeout.
func New(cfg config.Server, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       cfg.RequestTimeout,
		WriteTimeout:      cfg.RequestTimeout + writeSlack,
		IdleTimeout:       idleTimeout,
	}
}
