package models

import "time"

const TokenTypeRefresh = "refresh"

type RefreshToken struct {
	ID          string    `bson:"_id"`
	UserID      string    `bson:"user_id"`
	Token       string    `bson:"token"`
	Type        string    `bson:"type"`
	ExpiresAt   time.Time `bson:"expires_at"`
	Blacklisted bool      `bson:"blacklisted"`
	CreatedAt   time.Time `bson:"created_at"`
}

// Active reports whether the token may be exchanged or revoked at now.
func (t *RefreshToken) Active(now time.Time) bool {
	return t.Type == TokenTypeRefresh && !t.Blacklisted && now.Before(t.ExpiresAt)
}
