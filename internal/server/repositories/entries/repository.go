// Package entries provides diary-entry persistence with optimistic-lock
// update semantics.
package entries

import (
	"context"
	"time"

	"github.com/NikhilKartha5/ai-journal/internal/server/models"
)

// Repository stores diary entries. All reads and writes are scoped to the
// owning user; an id belonging to another user behaves as not found.
type Repository interface {
	// Create inserts a new entry.
	Create(ctx context.Context, entry *models.Entry) error
	// Get returns one entry, or common.ErrorNotFound.
	Get(ctx context.Context, userID, id string) (*models.Entry, error)
	// ListByUser returns the user's entries, newest first.
	ListByUser(ctx context.Context, userID string) ([]models.Entry, error)
	// Update applies changed fields and bumps UpdatedAt. When baseVersion is
	// non-zero and no longer matches the stored UpdatedAt, nothing is
	// written and common.ErrVersionConflict is returned.
	Update(ctx context.Context, entry *models.Entry, baseVersion time.Time) error
	// Delete removes one entry, or common.ErrorNotFound when absent.
	Delete(ctx context.Context, userID, id string) error
	// DeleteByUser removes every entry of the user.
	DeleteByUser(ctx context.Context, userID string) error
}
