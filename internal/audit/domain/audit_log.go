package domain

import "time"

// AuditLog represents one auth event (login, logout, password change, ...).
type AuditLog struct {
	ID        string
	CompanyID int64 // 0 when the event has no tenant (e.g. unknown-email login failure)
	Subject   string
	Action    string
	Resource  string
	IP        string
	Metadata  string
	CreatedAt time.Time
}
