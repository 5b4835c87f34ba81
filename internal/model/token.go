package model

import "github.com/google/uuid"

// Session holds the claims embedded in a session token. The token is
// self-contained: verifying it requires no store round trip.
type Session struct {
	UserID   uuid.UUID
	Email    string
	Username string
	AuthType AuthType
}

// TokenManager issues and verifies bearer session tokens.
type TokenManager interface {
	GenerateSessionToken(identity Identity) (string, error)
	ParseSessionToken(token string) (Session, error)
}
