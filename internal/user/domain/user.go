package domain

import (
	"errors"
	"time"
)

// User is a registered account belonging to exactly one company.
type User struct {
	ID           int64
	CompanyID    int64
	Email        string
	PasswordHash string
	RegDate      time.Time
}

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.CompanyID == 0 {
		return errors.New("company is required")
	}
	if u.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	return nil
}
