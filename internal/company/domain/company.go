package domain

import "time"

// Company is a tenant. Users are attached to a company by the domain part of
// their email address at sign-up.
type Company struct {
	ID      int64
	Name    string
	Domain  string
	RegDate time.Time
}
