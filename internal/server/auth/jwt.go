// Package auth issues and verifies the signed tokens and hashes passwords.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// AccessClaims is the payload of a short-lived access token.
type AccessClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Type   string `json:"type"`
}

// RefreshClaims is the payload of a refresh token. RegisteredClaims.ID holds
// a random jti so two tokens minted in the same second never collide.
type RefreshClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
	Type   string `json:"type"`
}

// TokenIssuer signs and parses HS256 tokens with a server-held secret.
type TokenIssuer struct {
	secret          []byte
	accessLifetime  time.Duration
	refreshLifetime time.Duration
	now             func() time.Time
}

func NewTokenIssuer(secret []byte, accessLifetime, refreshLifetime time.Duration, now func() time.Time) *TokenIssuer {
	if now == nil {
		now = time.Now
	}
	return &TokenIssuer{
		secret:          secret,
		accessLifetime:  accessLifetime,
		refreshLifetime: refreshLifetime,
		now:             now,
	}
}

func (i *TokenIssuer) AccessLifetime() time.Duration  { return i.accessLifetime }
func (i *TokenIssuer) RefreshLifetime() time.Duration { return i.refreshLifetime }

func (i *TokenIssuer) IssueAccess(userID, email string) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(i.accessLifetime)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		UserID: userID,
		Email:  email,
		Type:   TypeAccess,
	})

	s, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return s, exp, nil
}

func (i *TokenIssuer) IssueRefresh(userID string) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(i.refreshLifetime)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		UserID: userID,
		Type:   TypeRefresh,
	})

	s, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return s, exp, nil
}

// ParseAccessToken verifies signature, expiry and token type. It returns
// common.ErrTokenExpired or common.ErrInvalidToken.
func (i *TokenIssuer) ParseAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := i.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Type != TypeAccess || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

// ParseRefreshToken checks only the signature side of a refresh token. The
// store still decides whether it may be used.
func (i *TokenIssuer) ParseRefreshToken(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := i.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Type != TypeRefresh || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

func (i *TokenIssuer) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return common.ErrTokenExpired
		}
		return common.ErrInvalidToken
	}
	if !token.Valid {
		return common.ErrInvalidToken
	}
	return nil
}
