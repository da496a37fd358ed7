package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"cosmetic-compliance-platform/backend/internal/user/domain"
)

// PostgresRepository persists users in the users table.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByEmail returns the user with the given email, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, company_id, email, password_hash, reg_date FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.CompanyID, &u.Email, &u.PasswordHash, &u.RegDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// Create persists the user and assigns its generated ID.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	if u.RegDate.IsZero() {
		u.RegDate = time.Now().UTC()
	}
	return r.db.QueryRowContext(ctx,
		`INSERT INTO users (company_id, email, password_hash, reg_date)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		u.CompanyID, u.Email, u.PasswordHash, u.RegDate,
	).Scan(&u.ID)
}

// UpdatePassword replaces the stored password hash for the user.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes the user row.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}
