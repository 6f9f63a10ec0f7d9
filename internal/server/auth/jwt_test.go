package auth

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func newIssuer(c *clock) *TokenIssuer {
	return NewTokenIssuer([]byte("super-secret"), time.Minute, 30*24*time.Hour, c.Now)
}

func TestIssueAndParseAccess(t *testing.T) {
	t.Parallel()

	c := &clock{t: time.Now().Truncate(time.Second)}
	iss := newIssuer(c)

	tok, exp, err := iss.IssueAccess("user-123", "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, c.t.Add(time.Minute), exp)

	claims, err := iss.ParseAccessToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, TypeAccess, claims.Type)
}

func TestParseAccess_Expired(t *testing.T) {
	t.Parallel()

	c := &clock{t: time.Now()}
	iss := newIssuer(c)

	tok, _, err := iss.IssueAccess("u1", "a@x.com")
	require.NoError(t, err)

	c.t = c.t.Add(2 * time.Minute)
	_, err = iss.ParseAccessToken(tok)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestParseAccess_WrongSecret(t *testing.T) {
	t.Parallel()

	c := &clock{t: time.Now()}
	tok, _, err := NewTokenIssuer([]byte("right-secret"), time.Hour, time.Hour, c.Now).IssueAccess("u2", "b@x.com")
	require.NoError(t, err)

	_, err = NewTokenIssuer([]byte("wrong-secret"), time.Hour, time.Hour, c.Now).ParseAccessToken(tok)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParseAccess_RejectsRefreshToken(t *testing.T) {
	t.Parallel()

	iss := newIssuer(&clock{t: time.Now()})
	refresh, _, err := iss.IssueRefresh("u1")
	require.NoError(t, err)

	_, err = iss.ParseAccessToken(refresh)
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	access, _, err := iss.IssueAccess("u1", "a@x.com")
	require.NoError(t, err)
	_, err = iss.ParseRefreshToken(access)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParse_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	iss := newIssuer(&clock{t: time.Now()})
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           "u1",
		Type:             TypeAccess,
	})
	s, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = iss.ParseAccessToken(s)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParse_Garbage(t *testing.T) {
	t.Parallel()

	_, err := newIssuer(&clock{t: time.Now()}).ParseAccessToken("not-a-jwt")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestIssueRefresh_UniqueWithinSameInstant(t *testing.T) {
	t.Parallel()

	c := &clock{t: time.Now()}
	iss := newIssuer(c)

	a, expA, err := iss.IssueRefresh("u1")
	require.NoError(t, err)
	b, _, err := iss.IssueRefresh("u1")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Equal(t, c.t.Add(30*24*time.Hour), expA)

	claims, err := iss.ParseRefreshToken(a)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.NotEmpty(t, claims.ID)
}
