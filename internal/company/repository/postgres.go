package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"cosmetic-compliance-platform/backend/internal/company/domain"
)

// PostgresRepository persists companies in the companies table.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a company repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the company for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*domain.Company, error) {
	return r.get(ctx, `SELECT id, company_name, domain, reg_date FROM companies WHERE id = $1`, id)
}

// GetByDomain returns the company registered for the given email domain, or nil if not found.
func (r *PostgresRepository) GetByDomain(ctx context.Context, emailDomain string) (*domain.Company, error) {
	return r.get(ctx, `SELECT id, company_name, domain, reg_date FROM companies WHERE domain = $1`, emailDomain)
}

func (r *PostgresRepository) get(ctx context.Context, query string, arg any) (*domain.Company, error) {
	var c domain.Company
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&c.ID, &c.Name, &c.Domain, &c.RegDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// Create persists the company and assigns its generated ID.
func (r *PostgresRepository) Create(ctx context.Context, c *domain.Company) error {
	if c.RegDate.IsZero() {
		c.RegDate = time.Now().UTC()
	}
	return r.db.QueryRowContext(ctx,
		`INSERT INTO companies (company_name, domain, reg_date) VALUES ($1, $2, $3) RETURNING id`,
		c.Name, c.Domain, c.RegDate,
	).Scan(&c.ID)
}
