package models

import "time"

// BlacklistedToken marks a still-unexpired access token as unusable. The
// exact serialized token string is the key; entries are append-only.
type BlacklistedToken struct {
	Token     string
	RevokedAt time.Time
}
