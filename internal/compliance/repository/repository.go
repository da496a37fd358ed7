package repository

import (
	"context"
	"time"

	"cosmetic-compliance-platform/backend/internal/compliance/domain"
)

// Repository defines persistence for compliance logs.
type Repository interface {
	GetByProductAndCountry(ctx context.Context, productID int64, country domain.Country) (*domain.Log, error)
	ListByCompany(ctx context.Context, companyID int64) ([]*domain.Log, error)
	ListByCompanyAndCountry(ctx context.Context, companyID int64, country domain.Country) ([]*domain.Log, error)
	Create(ctx context.Context, l *domain.Log) error
	Update(ctx context.Context, l *domain.Log) error
	CountUpdatedSince(ctx context.Context, companyID int64, since time.Time) (int64, error)
	CountByApproval(ctx context.Context, companyID int64, statuses []domain.ApprovalStatus) (int64, error)
}
