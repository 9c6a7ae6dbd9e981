package httpserver

import (
	"net/http"

	"loanintake/internal/platform/config"
)

// New builds the API server. The write timeout has to cover an identity
// lookup or a multipart submission round trip to the backends.
func New(cfg config.Server, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}
}
