package audit

import (
	"context"
	"errors"
	"sync"
	"testing"

	"cosmetic-compliance-platform/backend/internal/audit/domain"
)

type memAuditRepo struct {
	mu      sync.Mutex
	entries []*domain.AuditLog
	fail    bool
}

func (r *memAuditRepo) Create(ctx context.Context, e *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("db down")
	}
	r.entries = append(r.entries, e)
	return nil
}

func (r *memAuditRepo) ListByCompany(ctx context.Context, companyID int64, limit, offset int32) ([]*domain.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries, nil
}

func TestLogger_LogEvent(t *testing.T) {
	repo := &memAuditRepo{}
	l := NewLogger(repo, func(context.Context) string { return "10.0.0.1" }, nil)

	l.LogEvent(context.Background(), 7, "eng@acme.com", "login_success", "session", "")

	if len(repo.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(repo.entries))
	}
	e := repo.entries[0]
	if e.ID == "" {
		t.Error("entry has no ID")
	}
	if e.CompanyID != 7 || e.Subject != "eng@acme.com" || e.Action != "login_success" || e.IP != "10.0.0.1" {
		t.Errorf("entry = %+v", e)
	}
}

func TestLogger_BestEffort(t *testing.T) {
	l := NewLogger(&memAuditRepo{fail: true}, nil, nil)
	// Must not panic or propagate.
	l.LogEvent(context.Background(), 0, "eng@acme.com", "logout", "session", "")

	nilRepo := NewLogger(nil, nil, nil)
	nilRepo.LogEvent(context.Background(), 0, "", "noop", "", "")
}
