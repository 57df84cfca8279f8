package repomanager

import (
	"context"

	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/blacklist"
	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/users"
)

// InMemoryRepositoryManager backs the repositories with process memory.
// Data is lost on restart; intended for tests and local runs.
type InMemoryRepositoryManager struct {
	users     users.Repository
	blacklist blacklist.Repository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		users:     users.NewInMemoryRepository(),
		blacklist: blacklist.NewInMemoryRepository(),
	}
}

func (m *InMemoryRepositoryManager) RunMigrations(ctx context.Context) error {
	return nil
}

func (m *InMemoryRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *InMemoryRepositoryManager) BlacklistedTokens() blacklist.Repository {
	return m.blacklist
}

func (m *InMemoryRepositoryManager) Close() error {
	return nil
}
