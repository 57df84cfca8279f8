package users

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
)

// InMemoryRepository keeps users in process memory. Data is lost on restart;
// intended for tests and local runs. A single mutex serializes writes so
// Create/Update stay atomic with respect to concurrent callers.
type InMemoryRepository struct {
	mu    sync.RWMutex
	users map[int64]*models.User
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{users: make(map[int64]*models.User)}
}

// findByUsername scans under a held lock. Linear scan is fine at the scale
// this backend is meant for.
func (r *InMemoryRepository) findByUsername(username string) *models.User {
	for _, u := range r.users {
		if strings.EqualFold(u.Username, username) {
			return u
		}
	}
	return nil
}

func (r *InMemoryRepository) maxID() int64 {
	var max int64
	for id := range r.users {
		if id > max {
			max = id
		}
	}
	return max
}

func clone(u *models.User) *models.User {
	c := *u
	return &c
}

func (r *InMemoryRepository) Create(ctx context.Context, username string, passwordHash string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findByUsername(username) != nil {
		return nil, common.ErrorAlreadyExists
	}

	now := time.Now()
	user := &models.User{
		ID:           r.maxID() + 1,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.users[user.ID] = user

	return clone(user), nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(user), nil
}

func (r *InMemoryRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user := r.findByUsername(username)
	if user == nil {
		return nil, common.ErrorNotFound
	}
	return clone(user), nil
}

func (r *InMemoryRepository) Update(ctx context.Context, id int64, upd Update) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}

	if upd.Username != nil {
		if existing := r.findByUsername(*upd.Username); existing != nil && existing.ID != id {
			return nil, common.ErrorAlreadyExists
		}
		user.Username = *upd.Username
	}
	if upd.PasswordHash != nil {
		user.PasswordHash = *upd.PasswordHash
	}
	user.UpdatedAt = time.Now()

	return clone(user), nil
}
