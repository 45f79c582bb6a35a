package users

import (
	"context"
	"sync"

	"github.com/NikhilKartha5/ai-journal/internal/common"
	"github.com/NikhilKartha5/ai-journal/internal/server/models"
)

// InMemoryRepository is a map-backed Repository used in tests and local runs
// without a database.
type InMemoryRepository struct {
	mu    sync.RWMutex
	byID  map[string]models.User
	email map[string]string
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		byID:  make(map[string]models.User),
		email: make(map[string]string),
	}
}

func (r *InMemoryRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.email[user.Email]; exists {
		return common.ErrorAlreadyExists
	}
	r.byID[user.ID] = *user
	r.email[user.Email] = user.ID
	return nil
}

func (r *InMemoryRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.email[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	user := r.byID[id]
	return &user, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &user, nil
}
