// Package handler serves liveness and readiness probes.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"cosmetic-compliance-platform/backend/internal/server"
)

const pingTimeout = 2 * time.Second

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler answers /healthz. With a nil pinger it reports liveness only.
type Handler struct {
	db Pinger
}

func New(db Pinger) *Handler {
	return &Handler{db: db}
}

// Register mounts the health route on the public router.
func (h *Handler) Register(public, _ *mux.Router) {
	public.HandleFunc("/healthz", h.Healthz).Methods(http.MethodGet)
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			server.WriteError(w, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "database unreachable")
			return
		}
	}
	server.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
