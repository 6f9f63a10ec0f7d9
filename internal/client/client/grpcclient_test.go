package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	gs "github.com/dmitrijs2005/gophauth/internal/server/grpc"
	"github.com/dmitrijs2005/gophauth/internal/server/notify"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type codes6 struct {
	mu   sync.Mutex
	n    int
	last string
}

func (g *codes6) next() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	g.last = fmt.Sprintf("%06d", 300000+g.n)
	return g.last, nil
}

type nopSender struct{}

func (nopSender) Send(context.Context, notify.Message) (*notify.Delivery, error) {
	return &notify.Delivery{}, nil
}

type harness struct {
	client *GRPCClient
	clock  *clock
	codes  *codes6
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{clock: &clock{now: time.Now()}, codes: &codes6{}}
	tokens := auth.NewTokenIssuer([]byte("k"), time.Minute, 24*time.Hour, h.clock.Now)
	svc := services.NewIdentityService(repomanager.NewMemoryRepositoryManager(), tokens, nopSender{},
		logging.Discard(), services.IdentityConfig{BcryptCost: bcrypt.MinCost},
		services.WithClock(h.clock), services.WithCodeGenerator(h.codes.next))

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = gs.NewGRPCServer("bufnet", logging.Discard(), svc).Serve(ctx, lis)
		close(done)
	}()

	c, err := NewIdentityClient("passthrough:///bufnet", 5*time.Second,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }))
	require.NoError(t, err)
	h.client = c

	t.Cleanup(func() {
		_ = c.Close()
		cancel()
		<-done
	})
	return h
}

func (h *harness) signIn(t *testing.T, email string) {
	t.Helper()
	ctx := context.Background()

	_, err := h.client.Register(ctx, RegisterRequest{Email: email, Password: "secret1"})
	require.NoError(t, err)
	_, err = h.client.VerifyEmail(ctx, email, h.codes.last)
	require.NoError(t, err)
}

func TestClient_Flow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.client.Register(ctx, RegisterRequest{Email: "a@x.com", Password: "secret1", Name: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", res.User.Email)
	assert.False(t, h.client.LoggedIn())

	_, err = h.client.Login(ctx, "a@x.com", []byte("secret1"))
	assert.True(t, errors.Is(err, common.ErrorEmailNotVerified), "got %v", err)

	_, err = h.client.VerifyEmail(ctx, "a@x.com", "000000")
	assert.Equal(t, common.CodeInvalidOrExpiredCode, common.Code(err))

	user, err := h.client.VerifyEmail(ctx, "a@x.com", h.codes.last)
	require.NoError(t, err)
	assert.True(t, user.IsEmailVerified)
	assert.True(t, h.client.LoggedIn())

	name := "Alice B"
	user, err = h.client.UpdateProfile(ctx, ProfileUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Alice B", user.Name)

	_, err = h.client.Refresh(ctx)
	require.NoError(t, err)

	require.NoError(t, h.client.Logout(ctx))
	assert.False(t, h.client.LoggedIn())
	_, err = h.client.Profile(ctx)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestClient_RefreshesExpiredAccessToken(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, "a@x.com")
	before, _ := h.client.tokens()

	h.clock.advance(2 * time.Minute)

	user, err := h.client.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)

	after, _ := h.client.tokens()
	assert.NotEqual(t, before, after)
}

func TestClient_PasswordReset(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.signIn(t, "a@x.com")

	require.NoError(t, h.client.RequestPasswordReset(ctx, "a@x.com"))
	require.NoError(t, h.client.ResetPassword(ctx, "a@x.com", h.codes.last, []byte("newpass1")))

	_, err := h.client.Refresh(ctx)
	assert.Equal(t, common.CodeInvalidRefreshToken, common.Code(err))

	_, err = h.client.Login(ctx, "a@x.com", []byte("newpass1"))
	assert.NoError(t, err)
}

func TestClient_NotLoggedIn(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.client.Refresh(ctx)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	assert.ErrorIs(t, h.client.Logout(ctx), ErrNotLoggedIn)
	_, err = h.client.UpdateProfile(ctx, ProfileUpdate{})
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestMapError(t *testing.T) {
	c := &GRPCClient{}

	assert.Nil(t, c.mapError(nil, nil))
	assert.ErrorIs(t, c.mapError(status.Error(codes.Unavailable, "down"), nil), ErrUnavailable)
	assert.ErrorIs(t, c.mapError(status.Error(codes.Unauthenticated, "missing token"), nil), ErrUnauthorized)

	err := c.mapError(status.Error(codes.ResourceExhausted, "slow down"), metadata.Pairs("error-code", common.CodeRateLimited))
	assert.ErrorIs(t, err, common.ErrorRateLimited)
	assert.Equal(t, "slow down", common.Message(err))

	assert.ErrorContains(t, c.mapError(status.Error(codes.Unknown, "x"), nil), "rpc error")
}

func TestWithAccessToken_ReplacesExisting(t *testing.T) {
	ctx := metadata.AppendToOutgoingContext(context.Background(), common.AccessTokenHeaderName, "old", "x", "1")
	ctx = withAccessToken(ctx, "new")

	md, _ := metadata.FromOutgoingContext(ctx)
	assert.Equal(t, []string{"new"}, md.Get(common.AccessTokenHeaderName))
	assert.Equal(t, []string{"1"}, md.Get("x"))
}
