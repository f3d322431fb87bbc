package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with sane defaults for this project. There is no
// WriteTimeout because disclosure calls wait on user interaction; handlers
// bound themselves with the broker's surface timeout instead.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
