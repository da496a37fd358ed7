// Package domain holds the product model.
package domain

import (
	"errors"
	"time"
)

// Type classifies a product line.
type Type string

const (
	TypeSkincare  Type = "skincare"
	TypeMakeup    Type = "makeup"
	TypeSunscreen Type = "sunscreen"
	TypeBodycare  Type = "bodycare"
)

// Status tracks how far a product has moved through the compliance pipeline.
type Status string

const (
	StatusStep1 Status = "step_1"
	StatusStep2 Status = "step_2"
	StatusStep3 Status = "step_3"
	StatusStep4 Status = "step_4"
	StatusStep5 Status = "step_5"
)

var (
	ErrInvalidType   = errors.New("invalid product type")
	ErrInvalidStatus = errors.New("invalid product status")
	ErrEmptyName     = errors.New("product name is required")
)

// Product is a cosmetic product owned by one company.
type Product struct {
	ID             int64
	CompanyID      int64
	Name           string
	Type           Type
	Image          string
	FullIngredient string
	Status         Status
	RegDate        time.Time
	UpdDate        time.Time
}

// Valid reports whether t is a known product type.
func (t Type) Valid() bool {
	switch t {
	case TypeSkincare, TypeMakeup, TypeSunscreen, TypeBodycare:
		return true
	}
	return false
}

// Valid reports whether s is a known pipeline status.
func (s Status) Valid() bool {
	switch s {
	case StatusStep1, StatusStep2, StatusStep3, StatusStep4, StatusStep5:
		return true
	}
	return false
}

// Validate checks the fields a create or update must carry.
func (p *Product) Validate() error {
	if p.Name == "" {
		return ErrEmptyName
	}
	if !p.Type.Valid() {
		return ErrInvalidType
	}
	if !p.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}
