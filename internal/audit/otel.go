package audit

import (
	"context"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"cosmetic-compliance-platform/backend/internal/audit/domain"
)

// Emitter forwards audit entries to an external sink.
type Emitter interface {
	Emit(ctx context.Context, entry *domain.AuditLog) error
}

// NewOTelEmitter returns an Emitter that sends audit entries as OTel log
// records via the given LoggerProvider. If provider is nil, returns a no-op
// emitter.
func NewOTelEmitter(provider *sdklog.LoggerProvider) Emitter {
	if provider == nil {
		return noopEmitter{}
	}
	return &otelEmitter{logger: provider.Logger("cosy.audit")}
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, *domain.AuditLog) error { return nil }

type otelEmitter struct {
	logger otellog.Logger
}

// Emit converts the audit entry to an OTel log record and emits it.
func (e *otelEmitter) Emit(ctx context.Context, entry *domain.AuditLog) error {
	if entry == nil {
		return nil
	}
	rec := otellog.Record{}
	if !entry.CreatedAt.IsZero() {
		rec.SetTimestamp(entry.CreatedAt)
	} else {
		rec.SetTimestamp(time.Now().UTC())
	}
	rec.SetSeverity(otellog.SeverityInfo)
	rec.SetBody(otellog.StringValue(entry.Action))
	rec.AddAttributes(
		otellog.String("audit.id", entry.ID),
		otellog.Int64("audit.company_id", entry.CompanyID),
		otellog.String("audit.subject", entry.Subject),
		otellog.String("audit.resource", entry.Resource),
		otellog.String("audit.ip", entry.IP),
	)
	if entry.Metadata != "" {
		rec.AddAttributes(otellog.String("audit.metadata", entry.Metadata))
	}
	e.logger.Emit(ctx, rec)
	return nil
}
