// Package grpc exposes the identity service over gRPC. Handlers work on the
// typed messages of the proto package, which travel as google.protobuf.Struct
// values carrying the same field names as the JSON API.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"google.golang.org/grpc"
)

type identity interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.RegisterResult, error)
	VerifyEmail(ctx context.Context, email, code string) (*services.AuthResult, error)
	ResendVerification(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	GetProfile(ctx context.Context, userID string) (*models.PublicUser, error)
	UpdateProfile(ctx context.Context, userID string, in services.ProfileUpdate) (*models.PublicUser, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
	Authenticate(ctx context.Context, accessToken string) (string, error)
}

type GRPCServer struct {
	address  string
	identity identity
	logger   logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, id identity) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		identity: id,
	}
}

// newServer builds the grpc.Server with the service and interceptors wired.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	srv.RegisterService(&ServiceDesc, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on listen until ctx is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
