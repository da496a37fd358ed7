package repository

import (
	"context"

	"cosmetic-compliance-platform/backend/internal/user/domain"
)

// Repository defines persistence for users.
type Repository interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Delete(ctx context.Context, id int64) error
}
