// Package models defines the persistent entities shared by the repositories
// and services: user profiles, login credentials, and registered devices.
package models

import "time"

// User is an account profile. Credentials and devices reference it by ID.
type User struct {
	ID        string
	Name      string
	Gender    string
	Language  string
	Activated bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
