package models

import (
	"regexp"
	"time"
)

// Credential kinds. A user may hold one credential per kind; the (email,
// kind) pair is unique across the store.
const (
	CredentialLocal    = "local"
	CredentialGoogle   = "google"
	CredentialFacebook = "facebook"
)

// Credential is a way to log in: a local email/password pair or a social
// identity. PasswordHash is empty for social kinds.
type Credential struct {
	ID           string
	UserID       string
	Kind         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// EmailValid reports whether s looks like an email address. Deliverability is
// not checked.
func EmailValid(s string) bool {
	return emailPattern.MatchString(s)
}
