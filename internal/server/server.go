package server

import (
	"context"
	"net/http"
	"time"
)

// Server encapsulates the HTTP server of the application, providing controlled startup and shutdown.
type Server struct {
	server *http.Server
}

// ListenAndServe starts the HTTP server and blocks until it stops.
// After Shutdown it returns http.ErrServerClosed.
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server, letting active requests complete
// within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// NewServer creates a server listening on address and serving router.
// Responses must be written within 15s, headers are limited to 10 KiB.
func NewServer(address string, router *Router) *Server {
	s := Server{&http.Server{
		Addr:           address,
		Handler:        withMiddleware(router.Mux()),
		ReadTimeout:    time.Second * 5,
		WriteTimeout:   time.Second * 15,
		MaxHeaderBytes: 1024 * 10,
	}}

	return &s
}
