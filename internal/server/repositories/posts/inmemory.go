package posts

import (
	"context"
	"sort"
	"sync"

	"github.com/NikhilKartha5/ai-journal/internal/common"
	"github.com/NikhilKartha5/ai-journal/internal/server/models"
)

// InMemoryRepository is a map-backed Repository used in tests and local runs
// without a database.
type InMemoryRepository struct {
	mu    sync.RWMutex
	posts map[string]models.Post
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{posts: make(map[string]models.Post)}
}

func (r *InMemoryRepository) Create(ctx context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts[post.ID] = *post
	return nil
}

func (r *InMemoryRepository) List(ctx context.Context, limit int) ([]models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]models.Post, 0, len(r.posts))
	for _, post := range r.posts {
		result = append(result, post)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *InMemoryRepository) Like(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return common.ErrorNotFound
	}
	post.Likes++
	r.posts[id] = post
	return nil
}
