package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"cosmetic-compliance-platform/backend/internal/compliance/domain"
)

// PostgresRepository persists compliance logs in the compliance_logs table.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const logColumns = `id, company_id, product_id, country, approval_status, cautious_ingredient, ingredient_law, marketing_law, upd_date`

func scanLog(row interface{ Scan(...any) error }) (*domain.Log, error) {
	var l domain.Log
	var approval, cautious, ingredientLaw, marketingLaw sql.NullString
	err := row.Scan(&l.ID, &l.CompanyID, &l.ProductID, &l.Country, &approval, &cautious, &ingredientLaw, &marketingLaw, &l.UpdDate)
	if err != nil {
		return nil, err
	}
	l.ApprovalStatus = domain.ApprovalStatus(approval.String)
	l.CautiousIngredient = cautious.String
	l.IngredientLaw = ingredientLaw.String
	l.MarketingLaw = marketingLaw.String
	return &l, nil
}

// GetByProductAndCountry returns the log for the pair, or nil if none exists.
func (r *PostgresRepository) GetByProductAndCountry(ctx context.Context, productID int64, country domain.Country) (*domain.Log, error) {
	l, err := scanLog(r.db.QueryRowContext(ctx,
		`SELECT `+logColumns+` FROM compliance_logs WHERE product_id = $1 AND country = $2`,
		productID, country))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return l, err
}

// ListByCompany returns the company's logs, most recently updated first.
func (r *PostgresRepository) ListByCompany(ctx context.Context, companyID int64) ([]*domain.Log, error) {
	return r.list(ctx,
		`SELECT `+logColumns+` FROM compliance_logs WHERE company_id = $1 ORDER BY upd_date DESC, id DESC`,
		companyID)
}

// ListByCompanyAndCountry narrows ListByCompany to one market.
func (r *PostgresRepository) ListByCompanyAndCountry(ctx context.Context, companyID int64, country domain.Country) ([]*domain.Log, error) {
	return r.list(ctx,
		`SELECT `+logColumns+` FROM compliance_logs WHERE company_id = $1 AND country = $2 ORDER BY upd_date DESC, id DESC`,
		companyID, country)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Log, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Log
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Create persists the log and assigns its generated ID.
func (r *PostgresRepository) Create(ctx context.Context, l *domain.Log) error {
	l.UpdDate = time.Now().UTC()
	return r.db.QueryRowContext(ctx,
		`INSERT INTO compliance_logs (company_id, product_id, country, approval_status, cautious_ingredient, ingredient_law, marketing_law, upd_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		l.CompanyID, l.ProductID, l.Country,
		nullString(string(l.ApprovalStatus)), nullString(l.CautiousIngredient),
		nullString(l.IngredientLaw), nullString(l.MarketingLaw), l.UpdDate,
	).Scan(&l.ID)
}

// Update rewrites the analysis fields of an existing log.
func (r *PostgresRepository) Update(ctx context.Context, l *domain.Log) error {
	l.UpdDate = time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE compliance_logs
		 SET approval_status = $2, cautious_ingredient = $3, ingredient_law = $4, marketing_law = $5, upd_date = $6
		 WHERE id = $1`,
		l.ID, nullString(string(l.ApprovalStatus)), nullString(l.CautiousIngredient),
		nullString(l.IngredientLaw), nullString(l.MarketingLaw), l.UpdDate)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountUpdatedSince counts the company's checks updated after the cutoff.
func (r *PostgresRepository) CountUpdatedSince(ctx context.Context, companyID int64, since time.Time) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM compliance_logs WHERE company_id = $1 AND upd_date > $2`,
		companyID, since).Scan(&n)
	return n, err
}

// CountByApproval counts the company's logs in any of the given grades.
func (r *PostgresRepository) CountByApproval(ctx context.Context, companyID int64, statuses []domain.ApprovalStatus) (int64, error) {
	if len(statuses) == 0 {
		return 0, nil
	}
	args := make([]any, 0, len(statuses)+1)
	args = append(args, companyID)
	placeholders := make([]string, len(statuses))
	for i, s := range statuses {
		args = append(args, string(s))
		placeholders[i] = fmt.Sprintf("$%d", i+2)
	}
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM compliance_logs WHERE company_id = $1 AND approval_status IN (`+strings.Join(placeholders, ", ")+`)`,
		args...).Scan(&n)
	return n, err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
