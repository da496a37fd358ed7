package repository

import (
	"context"

	"cosmetic-compliance-platform/backend/internal/company/domain"
)

// Repository defines persistence for companies.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*domain.Company, error)
	GetByDomain(ctx context.Context, emailDomain string) (*domain.Company, error)
	Create(ctx context.Context, c *domain.Company) error
}
