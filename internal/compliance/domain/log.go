// Package domain holds the compliance-check models.
package domain

import (
	"errors"
	"time"
)

// Country is a regulated market.
type Country string

const (
	CountryUS Country = "us"
	CountryJP Country = "jp"
	CountryCN Country = "cn"
	CountryEU Country = "eu"
)

// ApprovalStatus grades the regulatory risk of a check result.
type ApprovalStatus string

const (
	ApprovalHigh   ApprovalStatus = "high"
	ApprovalMedium ApprovalStatus = "medium"
	ApprovalLow    ApprovalStatus = "low"
)

var (
	ErrInvalidCountry  = errors.New("invalid country")
	ErrInvalidApproval = errors.New("invalid approval status")
)

// Log records the latest compliance analysis of one product in one country.
// There is at most one row per (product, country) pair; re-running an
// analysis updates the row in place.
type Log struct {
	ID                 int64
	CompanyID          int64
	ProductID          int64
	Country            Country
	ApprovalStatus     ApprovalStatus
	CautiousIngredient string
	IngredientLaw      string
	MarketingLaw       string
	UpdDate            time.Time
}

// Valid reports whether c is a supported market.
func (c Country) Valid() bool {
	switch c {
	case CountryUS, CountryJP, CountryCN, CountryEU:
		return true
	}
	return false
}

// Valid reports whether s is a known risk grade.
func (s ApprovalStatus) Valid() bool {
	switch s {
	case ApprovalHigh, ApprovalMedium, ApprovalLow:
		return true
	}
	return false
}

// DashboardStats summarizes a company's compliance posture.
type DashboardStats struct {
	ProductCount int64
	RecentChecks int64
	WarningCount int64
}
