package models

import "time"

// User is an authentication principal. PasswordHash never leaves the auth provider.
type User struct {
	UID          string    `json:"uid"`
	Email        string    `json:"email"`
	DisplayName  *string   `json:"displayName"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
}
