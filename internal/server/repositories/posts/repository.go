// Package posts provides community-feed persistence.
package posts

import (
	"context"

	"github.com/NikhilKartha5/ai-journal/internal/server/models"
)

// Repository stores community posts. The feed is global; posts carry no
// personally identifying content beyond the chosen display name.
type Repository interface {
	// Create inserts a new post.
	Create(ctx context.Context, post *models.Post) error
	// List returns the most recent posts, newest first, up to limit.
	List(ctx context.Context, limit int) ([]models.Post, error)
	// Like increments a post's like counter, or common.ErrorNotFound.
	Like(ctx context.Context, id string) error
}
