// Package handler exposes a company's audit trail over HTTP.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	auditrepo "cosmetic-compliance-platform/backend/internal/audit/repository"
	"cosmetic-compliance-platform/backend/internal/server"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

type Handler struct {
	repo auditrepo.Repository
}

func New(repo auditrepo.Repository) *Handler {
	return &Handler{repo: repo}
}

// Register mounts the audit route on the protected router.
func (h *Handler) Register(_, protected *mux.Router) {
	protected.HandleFunc("/api/audit", h.List).Methods(http.MethodGet)
}

type entryResponse struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject,omitempty"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource,omitempty"`
	IP        string    `json:"ip,omitempty"`
	Metadata  string    `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// List returns the calling company's audit entries, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	companyID, ok := server.GetCompanyID(r.Context())
	if !ok {
		server.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid authorization")
		return
	}
	limit := queryInt(r, "limit", defaultLimit)
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	entries, err := h.repo.ListByCompany(r.Context(), companyID, int32(limit), int32(offset))
	if err != nil {
		server.WriteError(w, http.StatusInternalServerError, "INTERNAL", "audit query failed")
		return
	}
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryResponse{
			ID:        e.ID,
			Subject:   e.Subject,
			Action:    e.Action,
			Resource:  e.Resource,
			IP:        e.IP,
			Metadata:  e.Metadata,
			CreatedAt: e.CreatedAt,
		})
	}
	server.WriteJSON(w, http.StatusOK, out)
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
