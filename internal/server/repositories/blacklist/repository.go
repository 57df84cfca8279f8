// Package blacklist declares the repository contract for revoked access
// tokens. Presence of a token string here means the access guard rejects it
// regardless of signature validity.
package blacklist

import (
	"context"
	"time"
)

// Repository defines operations over the revoked-token set. The exact
// serialized token string is the key.
type Repository interface {
	// Revoke records the token with the current timestamp. Revoking an
	// already-revoked token is a no-op success.
	Revoke(ctx context.Context, token string) error

	// IsRevoked reports whether the exact token string was revoked before.
	IsRevoked(ctx context.Context, token string) (bool, error)

	// PurgeExpired removes entries revoked before cutoff and returns how
	// many were dropped. Entries older than the maximum token lifetime can
	// no longer verify anyway, so pruning them never affects correctness.
	PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
