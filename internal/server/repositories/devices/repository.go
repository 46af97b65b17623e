// Package devices declares the device registry contract and its PostgreSQL
// implementation. The registry is what makes revocation work: deleting or
// superseding a record kills its tokens at their next presentation, however
// long their signatures remain valid.
package devices

import (
	"context"

	"github.com/osenouci/tokenkeeper/internal/server/models"
)

// Repository is the durable mapping from device identity to the last-issued
// token pair.
type Repository interface {
	// CreateOrReplace registers a device, atomically deleting any existing
	// record with the same (name, userID) first. The superseded record's
	// tokens become invalid because their deviceId no longer resolves.
	CreateOrReplace(ctx context.Context, name, signature, userID, credentialID string) (*models.Device, error)

	// FindByID returns the device record or common.ErrorNotFound.
	FindByID(ctx context.Context, id string) (*models.Device, error)

	// ListByUser returns all devices registered for a user, newest first.
	ListByUser(ctx context.Context, userID string) ([]*models.Device, error)

	// UpdateTokens stores the latest issued tokens on the record. An empty
	// string leaves the corresponding token untouched.
	UpdateTokens(ctx context.Context, id, accessToken, refreshToken string) error

	// Delete removes the record identified by (name, userID). Deleting an
	// absent record is not an error.
	Delete(ctx context.Context, name, userID string) error
}
