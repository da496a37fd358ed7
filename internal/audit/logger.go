// Package audit records best-effort auth events. Failures are logged and
// never propagated to the caller.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"cosmetic-compliance-platform/backend/internal/audit/domain"
	auditrepo "cosmetic-compliance-platform/backend/internal/audit/repository"
)

// IPExtractor returns the client IP from the request context.
type IPExtractor func(context.Context) string

// Logger persists audit events via the repository.
type Logger struct {
	repo        auditrepo.Repository
	ipExtractor IPExtractor
	log         *slog.Logger
	emitter     Emitter
}

// NewLogger returns a Logger that persists to repo and uses ipExtractor for
// client IP. ipExtractor may be nil; then IP is recorded as "unknown".
func NewLogger(repo auditrepo.Repository, ipExtractor IPExtractor, log *slog.Logger) *Logger {
	if log == nil {
		log = slog.Default()
	}
	return &Logger{repo: repo, ipExtractor: ipExtractor, log: log}
}

// WithEmitter also forwards entries to the given emitter, on top of the
// repository write.
func (l *Logger) WithEmitter(e Emitter) *Logger {
	l.emitter = e
	return l
}

// LogEvent writes one audit log entry. Best-effort: errors are logged and not returned.
func (l *Logger) LogEvent(ctx context.Context, companyID int64, subject, action, resource, metadata string) {
	if l.repo == nil {
		return
	}
	ip := "unknown"
	if l.ipExtractor != nil {
		ip = l.ipExtractor(ctx)
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Subject:   subject,
		Action:    action,
		Resource:  resource,
		IP:        ip,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		l.log.Warn("audit: failed to log event", "action", action, "resource", resource, "error", err)
	}
	if l.emitter != nil {
		if err := l.emitter.Emit(ctx, entry); err != nil {
			l.log.Warn("audit: failed to emit event", "action", action, "error", err)
		}
	}
}
