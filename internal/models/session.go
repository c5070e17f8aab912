package models

import "time"

// Session represents an issued refresh token. ID is the token's jti.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
