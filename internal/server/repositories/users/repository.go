// Package users provides user-account persistence.
package users

import (
	"context"

	"github.com/NikhilKartha5/ai-journal/internal/server/models"
)

// Repository stores user accounts.
type Repository interface {
	// Create inserts a new user. A duplicate email yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) error
	// GetByEmail returns the user with the given email, or common.ErrorNotFound.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetByID returns the user with the given id, or common.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*models.User, error)
}
