package repository

import (
	"context"

	"cosmetic-compliance-platform/backend/internal/audit/domain"
)

// Repository defines persistence for audit logs.
type Repository interface {
	Create(ctx context.Context, e *domain.AuditLog) error
	ListByCompany(ctx context.Context, companyID int64, limit, offset int32) ([]*domain.AuditLog, error)
}
