package models

import "time"

// User is an account that owns tasks. Username is the normalized
// (trimmed, lowercased) signup email and is unique.
type User struct {
	ID        string
	Username  string
	Email     string
	FirstName string
	LastName  string
	Password  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Requester is the authenticated user a request is made on behalf of.
type Requester struct {
	UserID   string
	Username string
}
