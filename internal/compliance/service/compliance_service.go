// Package service owns compliance-check records and the dashboard rollup.
package service

import (
	"context"
	"errors"
	"time"

	"cosmetic-compliance-platform/backend/internal/compliance/domain"
	"cosmetic-compliance-platform/backend/internal/compliance/repository"
	productrepo "cosmetic-compliance-platform/backend/internal/product/repository"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrNotOwner        = errors.New("product belongs to another company")
)

const recentWindow = 7 * 24 * time.Hour

// UpsertRequest carries one analysis result for a (product, country) pair.
// Empty fields leave the stored value untouched.
type UpsertRequest struct {
	ProductID          int64
	Country            domain.Country
	ApprovalStatus     domain.ApprovalStatus
	CautiousIngredient string
	IngredientLaw      string
	MarketingLaw       string
}

// Service records analysis results and answers company-scoped queries.
type Service struct {
	logs     repository.Repository
	products productrepo.Repository
	now      func() time.Time
}

func New(logs repository.Repository, products productrepo.Repository) *Service {
	return &Service{logs: logs, products: products, now: time.Now}
}

// Upsert stores an analysis result, creating the (product, country) row on
// first sight and updating it afterwards. The product must belong to the
// calling company.
func (s *Service) Upsert(ctx context.Context, companyID int64, req UpsertRequest) (*domain.Log, error) {
	if !req.Country.Valid() {
		return nil, domain.ErrInvalidCountry
	}
	if req.ApprovalStatus != "" && !req.ApprovalStatus.Valid() {
		return nil, domain.ErrInvalidApproval
	}

	product, err := s.products.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if product.CompanyID != companyID {
		return nil, ErrNotOwner
	}

	l, err := s.logs.GetByProductAndCountry(ctx, req.ProductID, req.Country)
	if err != nil {
		return nil, err
	}
	if l == nil {
		l = &domain.Log{
			CompanyID: companyID,
			ProductID: req.ProductID,
			Country:   req.Country,
		}
		applyAnalysis(l, req)
		if err := s.logs.Create(ctx, l); err != nil {
			return nil, err
		}
		return l, nil
	}

	applyAnalysis(l, req)
	if err := s.logs.Update(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func applyAnalysis(l *domain.Log, req UpsertRequest) {
	if req.ApprovalStatus != "" {
		l.ApprovalStatus = req.ApprovalStatus
	}
	if req.CautiousIngredient != "" {
		l.CautiousIngredient = req.CautiousIngredient
	}
	if req.IngredientLaw != "" {
		l.IngredientLaw = req.IngredientLaw
	}
	if req.MarketingLaw != "" {
		l.MarketingLaw = req.MarketingLaw
	}
}

// List returns the company's logs, optionally narrowed to one country.
func (s *Service) List(ctx context.Context, companyID int64, country string) ([]*domain.Log, error) {
	if country == "" {
		return s.logs.ListByCompany(ctx, companyID)
	}
	c := domain.Country(country)
	if !c.Valid() {
		return nil, domain.ErrInvalidCountry
	}
	return s.logs.ListByCompanyAndCountry(ctx, companyID, c)
}

// Dashboard reports the company's product count, checks updated in the last
// seven days, and logs graded medium or high.
func (s *Service) Dashboard(ctx context.Context, companyID int64) (*domain.DashboardStats, error) {
	productCount, err := s.products.CountByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	recent, err := s.logs.CountUpdatedSince(ctx, companyID, s.now().Add(-recentWindow))
	if err != nil {
		return nil, err
	}
	warnings, err := s.logs.CountByApproval(ctx, companyID,
		[]domain.ApprovalStatus{domain.ApprovalMedium, domain.ApprovalHigh})
	if err != nil {
		return nil, err
	}
	return &domain.DashboardStats{
		ProductCount: productCount,
		RecentChecks: recent,
		WarningCount: warnings,
	}, nil
}
