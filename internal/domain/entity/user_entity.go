package entity

import (
	"time"
)

// User is the aggregate root for the user domain.
// Password holds the bcrypt hash, never the plaintext credential.
//
// LastSeen is nil until the user's first authenticated request.
type User struct {
	ID        string
	Username  string
	Email     string
	Password  string
	AboutMe   string
	AvatarURL string
	LastSeen  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
