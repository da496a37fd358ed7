// Package service enforces tenant ownership over the product catalog.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"cosmetic-compliance-platform/backend/internal/product/domain"
	"cosmetic-compliance-platform/backend/internal/product/repository"
)

var (
	ErrProductNotFound = errors.New("product not found")
	// ErrNotOwner is returned when a product exists but belongs to another
	// company. Handlers must not leak the distinction to unrelated tenants.
	ErrNotOwner        = errors.New("product belongs to another company")
	ErrUploadsDisabled = errors.New("image uploads are not configured")
)

// Uploader stores an object and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, r io.Reader) (string, error)
}

// Service owns product CRUD. Every operation is scoped to the calling
// company; cross-tenant access is rejected.
type Service struct {
	products repository.Repository
	uploads  Uploader
}

// New returns a product service. uploads may be nil when object storage is
// not configured.
func New(products repository.Repository, uploads Uploader) *Service {
	return &Service{products: products, uploads: uploads}
}

// Create registers a product under the calling company.
func (s *Service) Create(ctx context.Context, companyID int64, p *domain.Product) error {
	p.CompanyID = companyID
	if err := p.Validate(); err != nil {
		return err
	}
	return s.products.Create(ctx, p)
}

// Update rewrites a product the calling company owns.
func (s *Service) Update(ctx context.Context, companyID, productID int64, updated *domain.Product) (*domain.Product, error) {
	existing, err := s.owned(ctx, companyID, productID)
	if err != nil {
		return nil, err
	}
	existing.Name = updated.Name
	existing.Type = updated.Type
	existing.FullIngredient = updated.FullIngredient
	existing.Status = updated.Status
	if updated.Image != "" {
		existing.Image = updated.Image
	}
	if err := existing.Validate(); err != nil {
		return nil, err
	}
	if err := s.products.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// Get returns a product the calling company owns.
func (s *Service) Get(ctx context.Context, companyID, productID int64) (*domain.Product, error) {
	return s.owned(ctx, companyID, productID)
}

// List returns the calling company's products, newest first.
func (s *Service) List(ctx context.Context, companyID int64) ([]*domain.Product, error) {
	return s.products.ListByCompany(ctx, companyID)
}

// AttachImage uploads the image to object storage and stores the resulting
// URL on the product.
func (s *Service) AttachImage(ctx context.Context, companyID, productID int64, contentType string, r io.Reader) (string, error) {
	if s.uploads == nil {
		return "", ErrUploadsDisabled
	}
	if _, err := s.owned(ctx, companyID, productID); err != nil {
		return "", err
	}
	key := fmt.Sprintf("products/%d/%s", productID, uuid.NewString())
	url, err := s.uploads.Upload(ctx, key, contentType, r)
	if err != nil {
		return "", err
	}
	if err := s.products.UpdateImage(ctx, productID, url); err != nil {
		return "", err
	}
	return url, nil
}

func (s *Service) owned(ctx context.Context, companyID, productID int64) (*domain.Product, error) {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	if p.CompanyID != companyID {
		return nil, ErrNotOwner
	}
	return p, nil
}
