package domain

import "time"

// User is an identity known to the remote collection.
// Users are created on their first completed email-link sign-in.
type User struct {
	ID        string
	Email     string
	CreatedAt time.Time
}

// Session is an authenticated user plus the token that proves it.
type Session struct {
	User      User
	Token     string
	TokenID   string
	ExpiresAt time.Time
}
