package repository

import (
	"context"

	"cosmetic-compliance-platform/backend/internal/product/domain"
)

// Repository defines persistence for products.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	ListByCompany(ctx context.Context, companyID int64) ([]*domain.Product, error)
	CountByCompany(ctx context.Context, companyID int64) (int64, error)
	Create(ctx context.Context, p *domain.Product) error
	Update(ctx context.Context, p *domain.Product) error
	UpdateImage(ctx context.Context, id int64, imageURL string) error
}
