package models

import "time"

// Device is one registered client installation, the revocation anchor for its
// tokens. At most one live record exists per (Name, UserID) pair:
// re-registering the same name supersedes the old record, which invalidates
// the tokens bound to it regardless of their remaining signature validity.
type Device struct {
	ID           string
	UserID       string
	CredentialID string
	Name         string
	Signature    string
	AccessToken  string
	RefreshToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
