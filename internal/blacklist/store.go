// Package blacklist records revoked token identifiers (jti) until the token
// would have expired anyway. Entries are never explicitly deleted on the hot
// path; natural expiry bounds store growth.
package blacklist

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned when the backing store cannot be reached. Access
// checks must treat this as a hard failure, never as "not revoked".
var ErrUnavailable = errors.New("revocation store unavailable")

// Store is the narrow key-with-expiry contract for token revocation. Shared
// between the session manager (writes) and the auth middleware (reads).
type Store interface {
	// Revoke records jti as revoked for the next ttl. A ttl <= 0 is a no-op:
	// a token that has already lapsed needs no explicit revocation.
	// Revoking an already-revoked jti overwrites the entry; concurrent calls
	// leave the entry present with some valid expiry.
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	// IsRevoked reports whether jti is currently revoked. Absence means
	// "not known to be revoked".
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
