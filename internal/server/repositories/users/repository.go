// Package users declares the user profile store contract and its PostgreSQL
// implementation.
package users

import (
	"context"

	"github.com/osenouci/tokenkeeper/internal/server/models"
)

type Repository interface {
	// Create stores a new profile and returns it with its generated ID.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// FindByID returns the profile or common.ErrorNotFound.
	FindByID(ctx context.Context, id string) (*models.User, error)

	// Activate marks the account as activated.
	Activate(ctx context.Context, id string) error
}
