package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with the timeouts used for the decision aid.
// Requests are small JSON bodies and static assets, so the limits are tight.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    64 << 10,
	}
}
