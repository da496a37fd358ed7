package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	identityservice "cosmetic-compliance-platform/backend/internal/identity/service"
)

// RouteRegistrar mounts handlers on the public and protected routers.
// The protected router runs behind the bearer-token middleware.
type RouteRegistrar interface {
	Register(public, protected *mux.Router)
}

// Server is the HTTP front of the platform.
type Server struct {
	httpServer *http.Server
	log        *slog.Logger
}

// New assembles the router: security headers, tracing, and request logging
// on everything; token authentication on the protected subtree only.
func New(addr string, log *slog.Logger, auth *identityservice.AuthService, registrars ...RouteRegistrar) *Server {
	root := mux.NewRouter()
	root.Use(SecurityHeaders)
	root.Use(RecordClientIP)
	root.Use(Tracing())
	root.Use(RequestLogging(log))

	protected := root.PathPrefix("/").Subrouter()
	protected.Use(RequireAuth(auth))

	for _, reg := range registrars {
		reg.Register(root, protected)
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           root,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		log: log,
	}
}

// ListenAndServe blocks until the listener fails or Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.log.Info("http server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
