package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUser_PublicOmitsHash(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	u := &User{
		ID: "u1", Email: "a@x.com", Username: "alice", Name: "Alice", MobileNumber: "9876543210",
		PasswordHash: "$2a$10$hash", IsEmailVerified: true, CreatedAt: now,
	}

	p := u.Public()
	assert.Equal(t, &PublicUser{
		ID: "u1", Email: "a@x.com", Username: "alice", Name: "Alice", MobileNumber: "9876543210",
		IsEmailVerified: true, CreatedAt: now,
	}, p)
}

func TestOneTimeCode_Active(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		code OneTimeCode
		want bool
	}{
		{"fresh", OneTimeCode{ExpiresAt: now.Add(time.Minute)}, true},
		{"used", OneTimeCode{ExpiresAt: now.Add(time.Minute), IsUsed: true}, false},
		{"expired", OneTimeCode{ExpiresAt: now.Add(-time.Second)}, false},
		{"expires exactly now", OneTimeCode{ExpiresAt: now}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.Active(now))
		})
	}
}

func TestRefreshToken_Active(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name  string
		token RefreshToken
		want  bool
	}{
		{"fresh", RefreshToken{Type: TokenTypeRefresh, ExpiresAt: now.Add(time.Hour)}, true},
		{"blacklisted", RefreshToken{Type: TokenTypeRefresh, ExpiresAt: now.Add(time.Hour), Blacklisted: true}, false},
		{"expired", RefreshToken{Type: TokenTypeRefresh, ExpiresAt: now}, false},
		{"wrong type", RefreshToken{Type: "access", ExpiresAt: now.Add(time.Hour)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.token.Active(now))
		})
	}
}
