package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"cosmetic-compliance-platform/backend/internal/product/domain"
)

// PostgresRepository persists products in the products table.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const productColumns = `id, company_id, name, type, image, full_ingredient, status, reg_date, upd_date`

func scanProduct(row interface{ Scan(...any) error }) (*domain.Product, error) {
	var p domain.Product
	var image, fullIngredient sql.NullString
	err := row.Scan(&p.ID, &p.CompanyID, &p.Name, &p.Type, &image, &fullIngredient, &p.Status, &p.RegDate, &p.UpdDate)
	if err != nil {
		return nil, err
	}
	p.Image = image.String
	p.FullIngredient = fullIngredient.String
	return &p, nil
}

// GetByID returns the product, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// ListByCompany returns all products owned by the company, newest first.
func (r *PostgresRepository) ListByCompany(ctx context.Context, companyID int64) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE company_id = $1 ORDER BY reg_date DESC, id DESC`,
		companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CountByCompany returns the number of products owned by the company.
func (r *PostgresRepository) CountByCompany(ctx context.Context, companyID int64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products WHERE company_id = $1`, companyID).Scan(&n)
	return n, err
}

// Create persists the product and assigns its generated ID.
func (r *PostgresRepository) Create(ctx context.Context, p *domain.Product) error {
	now := time.Now().UTC()
	if p.RegDate.IsZero() {
		p.RegDate = now
	}
	p.UpdDate = now
	return r.db.QueryRowContext(ctx,
		`INSERT INTO products (company_id, name, type, image, full_ingredient, status, reg_date, upd_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		p.CompanyID, p.Name, p.Type, nullString(p.Image), nullString(p.FullIngredient), p.Status, p.RegDate, p.UpdDate,
	).Scan(&p.ID)
}

// Update rewrites the mutable fields of the product row.
func (r *PostgresRepository) Update(ctx context.Context, p *domain.Product) error {
	p.UpdDate = time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET name = $2, type = $3, image = $4, full_ingredient = $5, status = $6, upd_date = $7
		 WHERE id = $1`,
		p.ID, p.Name, p.Type, nullString(p.Image), nullString(p.FullIngredient), p.Status, p.UpdDate)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateImage stores the uploaded image URL for the product.
func (r *PostgresRepository) UpdateImage(ctx context.Context, id int64, imageURL string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET image = $2, upd_date = $3 WHERE id = $1`,
		id, imageURL, time.Now().UTC())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
