package server

import "context"

type contextKey struct{ name string }

var (
	subjectKey   = contextKey{"subject"}
	companyIDKey = contextKey{"company_id"}
	clientIPKey  = contextKey{"client_ip"}
)

// WithIdentity returns a context carrying the verified subject and company.
// Handlers read these via GetSubject and GetCompanyID.
func WithIdentity(ctx context.Context, subject string, companyID int64) context.Context {
	ctx = context.WithValue(ctx, subjectKey, subject)
	ctx = context.WithValue(ctx, companyIDKey, companyID)
	return ctx
}

// GetSubject returns the subject from context and true if set; otherwise "", false.
func GetSubject(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(subjectKey).(string)
	return v, ok
}

// GetCompanyID returns the company id from context and true if set; otherwise 0, false.
func GetCompanyID(ctx context.Context) (int64, bool) {
	v, ok := ctx.Value(companyIDKey).(int64)
	return v, ok
}

func withClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// ContextClientIP returns the client IP recorded by the middleware, or
// "unknown" if the request did not pass through it. Shaped as an audit
// IPExtractor.
func ContextClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(clientIPKey).(string); ok && v != "" {
		return v
	}
	return "unknown"
}
