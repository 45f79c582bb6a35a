package entries

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/NikhilKartha5/ai-journal/internal/common"
	"github.com/NikhilKartha5/ai-journal/internal/server/models"
)

// InMemoryRepository is a map-backed Repository used in tests and local runs
// without a database.
type InMemoryRepository struct {
	mu      sync.RWMutex
	entries map[string]models.Entry
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{entries: make(map[string]models.Entry)}
}

func (r *InMemoryRepository) Create(ctx context.Context, entry *models.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.ID] = *entry
	return nil
}

func (r *InMemoryRepository) Get(ctx context.Context, userID, id string) (*models.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[id]
	if !ok || entry.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return &entry, nil
}

func (r *InMemoryRepository) ListByUser(ctx context.Context, userID string) ([]models.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []models.Entry
	for _, entry := range r.entries {
		if entry.UserID == userID {
			result = append(result, entry)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date > result[j].Date })
	return result, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, entry *models.Entry, baseVersion time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.entries[entry.ID]
	if !ok || stored.UserID != entry.UserID {
		return common.ErrorNotFound
	}
	if !baseVersion.IsZero() && !stored.UpdatedAt.Equal(baseVersion) {
		return common.ErrVersionConflict
	}
	r.entries[entry.ID] = *entry
	return nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[id]
	if !ok || entry.UserID != userID {
		return common.ErrorNotFound
	}
	delete(r.entries, id)
	return nil
}

func (r *InMemoryRepository) DeleteByUser(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, entry := range r.entries {
		if entry.UserID == userID {
			delete(r.entries, id)
		}
	}
	return nil
}
