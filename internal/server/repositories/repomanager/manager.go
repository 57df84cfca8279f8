// Package repomanager wires repository implementations to a storage backend.
// The composition root picks a manager once at startup; business logic never
// branches on the backend itself.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/blacklist"
	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Users() users.Repository
	BlacklistedTokens() blacklist.Repository
	Close() error
}
