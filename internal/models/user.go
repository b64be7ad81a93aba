package models

import "time"

// User represents a registered account.
type User struct {
	ID                string    `json:"id"`
	FirstName         string    `json:"firstName"`
	LastName          string    `json:"lastName"`
	Email             string    `json:"email"`
	PasswordHash      string    `json:"-"` // Never expose this to the client
	PreferredLanguage string    `json:"preferredLanguage"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// UserPatch carries the optional fields of a profile update.
// A nil field is left untouched.
type UserPatch struct {
	FirstName         *string `json:"firstName"`
	LastName          *string `json:"lastName"`
	PreferredLanguage *string `json:"preferredLanguage"`
}
