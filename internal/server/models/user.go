// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account record. Usernames are unique under case-insensitive
// comparison; PasswordHash must never leave the server core.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
