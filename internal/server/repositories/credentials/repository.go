// Package credentials declares the credential store contract and its
// PostgreSQL implementation. A credential is one way to log in: a local
// email/password pair or a linked social identity.
package credentials

import (
	"context"

	"github.com/osenouci/tokenkeeper/internal/server/models"
)

type Repository interface {
	// Create stores a new credential and returns it with its generated ID.
	Create(ctx context.Context, cred *models.Credential) (*models.Credential, error)

	// FindByID returns the credential or common.ErrorNotFound.
	FindByID(ctx context.Context, id string) (*models.Credential, error)

	// FindByEmail returns the credential of the given kind registered under
	// email, or common.ErrorNotFound.
	FindByEmail(ctx context.Context, email, kind string) (*models.Credential, error)
}
