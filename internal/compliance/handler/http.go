// Package handler exposes compliance logs and the dashboard over HTTP.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"cosmetic-compliance-platform/backend/internal/compliance/domain"
	complianceservice "cosmetic-compliance-platform/backend/internal/compliance/service"
	"cosmetic-compliance-platform/backend/internal/server"
)

type Handler struct {
	logs *complianceservice.Service
}

func New(logs *complianceservice.Service) *Handler {
	return &Handler{logs: logs}
}

// Register mounts the compliance routes on the protected router.
func (h *Handler) Register(_, protected *mux.Router) {
	protected.HandleFunc("/api/logs", h.Upsert).Methods(http.MethodPost)
	protected.HandleFunc("/api/logs", h.List).Methods(http.MethodGet)
	protected.HandleFunc("/api/logs/{country}", h.ListByCountry).Methods(http.MethodGet)
	protected.HandleFunc("/api/dashboard/stats", h.Dashboard).Methods(http.MethodGet)
}

type upsertRequest struct {
	ProductID          int64  `json:"productId"`
	Country            string `json:"country"`
	ApprovalStatus     string `json:"approvalStatus"`
	CautiousIngredient string `json:"cautiousIngredient"`
	IngredientLaw      string `json:"ingredientLaw"`
	MarketingLaw       string `json:"marketingLaw"`
}

type logResponse struct {
	ID                 int64     `json:"id"`
	ProductID          int64     `json:"productId"`
	Country            string    `json:"country"`
	ApprovalStatus     string    `json:"approvalStatus,omitempty"`
	CautiousIngredient string    `json:"cautiousIngredient,omitempty"`
	IngredientLaw      string    `json:"ingredientLaw,omitempty"`
	MarketingLaw       string    `json:"marketingLaw,omitempty"`
	UpdDate            time.Time `json:"updDate"`
}

func toResponse(l *domain.Log) logResponse {
	return logResponse{
		ID:                 l.ID,
		ProductID:          l.ProductID,
		Country:            string(l.Country),
		ApprovalStatus:     string(l.ApprovalStatus),
		CautiousIngredient: l.CautiousIngredient,
		IngredientLaw:      l.IngredientLaw,
		MarketingLaw:       l.MarketingLaw,
		UpdDate:            l.UpdDate,
	}
}

func (h *Handler) Upsert(w http.ResponseWriter, r *http.Request) {
	companyID, ok := server.GetCompanyID(r.Context())
	if !ok {
		server.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid authorization")
		return
	}
	var req upsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	l, err := h.logs.Upsert(r.Context(), companyID, complianceservice.UpsertRequest{
		ProductID:          req.ProductID,
		Country:            domain.Country(req.Country),
		ApprovalStatus:     domain.ApprovalStatus(req.ApprovalStatus),
		CautiousIngredient: req.CautiousIngredient,
		IngredientLaw:      req.IngredientLaw,
		MarketingLaw:       req.MarketingLaw,
	})
	if err != nil {
		h.writeLogError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, toResponse(l))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "")
}

func (h *Handler) ListByCountry(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, mux.Vars(r)["country"])
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, country string) {
	companyID, ok := server.GetCompanyID(r.Context())
	if !ok {
		server.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid authorization")
		return
	}
	list, err := h.logs.List(r.Context(), companyID, country)
	if err != nil {
		h.writeLogError(w, err)
		return
	}
	out := make([]logResponse, 0, len(list))
	for _, l := range list {
		out = append(out, toResponse(l))
	}
	server.WriteJSON(w, http.StatusOK, out)
}

type dashboardResponse struct {
	ProductCount int64 `json:"productCount"`
	RecentChecks int64 `json:"recentChecks"`
	WarningCount int64 `json:"warningCount"`
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	companyID, ok := server.GetCompanyID(r.Context())
	if !ok {
		server.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid authorization")
		return
	}
	stats, err := h.logs.Dashboard(r.Context(), companyID)
	if err != nil {
		server.WriteError(w, http.StatusInternalServerError, "INTERNAL", "dashboard query failed")
		return
	}
	server.WriteJSON(w, http.StatusOK, dashboardResponse{
		ProductCount: stats.ProductCount,
		RecentChecks: stats.RecentChecks,
		WarningCount: stats.WarningCount,
	})
}

func (h *Handler) writeLogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, complianceservice.ErrProductNotFound), errors.Is(err, complianceservice.ErrNotOwner):
		server.WriteError(w, http.StatusNotFound, "PRODUCT_NOT_FOUND", "product not found")
	case errors.Is(err, domain.ErrInvalidCountry), errors.Is(err, domain.ErrInvalidApproval):
		server.WriteError(w, http.StatusBadRequest, "INVALID_LOG", err.Error())
	default:
		server.WriteError(w, http.StatusInternalServerError, "INTERNAL", "compliance log operation failed")
	}
}
