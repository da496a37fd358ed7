// Package handler exposes the product catalog over HTTP. All routes are
// protected; the owning company comes from the request context.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"cosmetic-compliance-platform/backend/internal/product/domain"
	productservice "cosmetic-compliance-platform/backend/internal/product/service"
	"cosmetic-compliance-platform/backend/internal/server"
)

const maxImageUpload = 10 << 20

type Handler struct {
	products *productservice.Service
}

func New(products *productservice.Service) *Handler {
	return &Handler{products: products}
}

// Register mounts the product routes on the protected router.
func (h *Handler) Register(_, protected *mux.Router) {
	protected.HandleFunc("/api/products", h.Create).Methods(http.MethodPost)
	protected.HandleFunc("/api/products", h.List).Methods(http.MethodGet)
	protected.HandleFunc("/api/products/{id:[0-9]+}", h.Get).Methods(http.MethodGet)
	protected.HandleFunc("/api/products/{id:[0-9]+}", h.Update).Methods(http.MethodPut)
	protected.HandleFunc("/api/products/{id:[0-9]+}/image", h.UploadImage).Methods(http.MethodPost)
}

type productRequest struct {
	Name           string `json:"name"`
	Type           string `json:"type"`
	Image          string `json:"image"`
	FullIngredient string `json:"fullIngredient"`
	Status         string `json:"status"`
}

type productResponse struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Type           string    `json:"type"`
	Image          string    `json:"image,omitempty"`
	FullIngredient string    `json:"fullIngredient,omitempty"`
	Status         string    `json:"status"`
	RegDate        time.Time `json:"regDate"`
	UpdDate        time.Time `json:"updDate"`
}

func toResponse(p *domain.Product) productResponse {
	return productResponse{
		ID:             p.ID,
		Name:           p.Name,
		Type:           string(p.Type),
		Image:          p.Image,
		FullIngredient: p.FullIngredient,
		Status:         string(p.Status),
		RegDate:        p.RegDate,
		UpdDate:        p.UpdDate,
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	companyID, ok := server.GetCompanyID(r.Context())
	if !ok {
		server.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid authorization")
		return
	}
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	p := &domain.Product{
		Name:           req.Name,
		Type:           domain.Type(req.Type),
		Image:          req.Image,
		FullIngredient: req.FullIngredient,
		Status:         domain.Status(req.Status),
	}
	if p.Status == "" {
		p.Status = domain.StatusStep1
	}
	if err := h.products.Create(r.Context(), companyID, p); err != nil {
		h.writeProductError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusCreated, toResponse(p))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	companyID, ok := server.GetCompanyID(r.Context())
	if !ok {
		server.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid authorization")
		return
	}
	list, err := h.products.List(r.Context(), companyID)
	if err != nil {
		server.WriteError(w, http.StatusInternalServerError, "INTERNAL", "product listing failed")
		return
	}
	out := make([]productResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toResponse(p))
	}
	server.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	companyID, productID, ok := h.scope(w, r)
	if !ok {
		return
	}
	p, err := h.products.Get(r.Context(), companyID, productID)
	if err != nil {
		h.writeProductError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, toResponse(p))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	companyID, productID, ok := h.scope(w, r)
	if !ok {
		return
	}
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	p, err := h.products.Update(r.Context(), companyID, productID, &domain.Product{
		Name:           req.Name,
		Type:           domain.Type(req.Type),
		Image:          req.Image,
		FullIngredient: req.FullIngredient,
		Status:         domain.Status(req.Status),
	})
	if err != nil {
		h.writeProductError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, toResponse(p))
}

// UploadImage accepts a multipart form with an "image" part, stores it in
// object storage, and records the URL on the product.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	companyID, productID, ok := h.scope(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(maxImageUpload); err != nil {
		server.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		server.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "missing image part")
		return
	}
	defer file.Close()

	url, err := h.products.AttachImage(r.Context(), companyID, productID,
		header.Header.Get("Content-Type"), file)
	if err != nil {
		if errors.Is(err, productservice.ErrUploadsDisabled) {
			server.WriteError(w, http.StatusNotImplemented, "UPLOADS_DISABLED", "image uploads are not configured")
			return
		}
		h.writeProductError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]string{"image": url})
}

func (h *Handler) scope(w http.ResponseWriter, r *http.Request) (companyID, productID int64, ok bool) {
	companyID, idOK := server.GetCompanyID(r.Context())
	if !idOK {
		server.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid authorization")
		return 0, 0, false
	}
	productID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		server.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid product id")
		return 0, 0, false
	}
	return companyID, productID, true
}

// writeProductError maps service errors to responses. Another company's
// product is reported as not found so listings cannot be probed.
func (h *Handler) writeProductError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, productservice.ErrProductNotFound), errors.Is(err, productservice.ErrNotOwner):
		server.WriteError(w, http.StatusNotFound, "PRODUCT_NOT_FOUND", "product not found")
	case errors.Is(err, domain.ErrEmptyName), errors.Is(err, domain.ErrInvalidType), errors.Is(err, domain.ErrInvalidStatus):
		server.WriteError(w, http.StatusBadRequest, "INVALID_PRODUCT", err.Error())
	default:
		server.WriteError(w, http.StatusInternalServerError, "INTERNAL", "product operation failed")
	}
}
