package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/config"
)

// api is the part of client.GRPCClient the commands use.
type api interface {
	Register(ctx context.Context, in client.RegisterRequest) (*client.RegisterResult, error)
	VerifyEmail(ctx context.Context, email, code string) (*client.User, error)
	ResendVerification(ctx context.Context, email string) error
	Login(ctx context.Context, email string, password []byte) (*client.User, error)
	Refresh(ctx context.Context) (*client.Tokens, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (*client.User, error)
	UpdateProfile(ctx context.Context, in client.ProfileUpdate) (*client.User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code string, newPassword []byte) error
	LoggedIn() bool
	Close() error
}

type App struct {
	config *config.Config
	api    api
	reader *bufio.Reader
	out    io.Writer
	email  string
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := client.NewIdentityClient(c.ServerEndpointAddr, c.RequestTimeout)
	if err != nil {
		return nil, err
	}
	return &App{config: c, api: apiClient, reader: bufio.NewReader(os.Stdin), out: os.Stdout}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.api.Close()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.api.LoggedIn()
}
