package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const expiredAccessTokenMessage = "access token expired"

type GRPCClient struct {
	endpointURL string
	timeout     time.Duration
	conn        *grpc.ClientConn

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) tokens() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

func (s *GRPCClient) setTokens(t *Tokens) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t == nil {
		s.accessToken, s.refreshToken = "", ""
		return
	}
	s.accessToken, s.refreshToken = t.AccessToken, t.RefreshToken
}

// accessTokenInterceptor attaches the access token and, when the server
// reports it expired, rotates the pair once and retries.
func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	access, refresh := s.tokens()
	if access == "" || method == pb.MethodRefresh {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	err := invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Unauthenticated || st.Message() != expiredAccessTokenMessage || refresh == "" {
		return err
	}

	if _, rerr := s.Refresh(ctx); rerr != nil {
		return err
	}

	// tokens refreshed, retrying with the new access token
	access, _ = s.tokens()
	return invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
}

func NewIdentityClient(endpointURL string, timeout time.Duration, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, timeout: timeout}

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	return c, nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

// LoggedIn reports whether the client holds a token pair.
func (s *GRPCClient) LoggedIn() bool {
	access, _ := s.tokens()
	return access != ""
}

// call sends in as a Struct and decodes the reply into out. Both are
// messages from the proto package.
func (s *GRPCClient) call(ctx context.Context, method string, in, out any) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	req, err := pb.EncodeStruct(in)
	if err != nil {
		return err
	}

	resp := new(structpb.Struct)
	var trailer metadata.MD
	if err := s.conn.Invoke(ctx, method, req, resp, grpc.Trailer(&trailer)); err != nil {
		return s.mapError(err, trailer)
	}

	return pb.DecodeStruct(resp, out)
}

func (s *GRPCClient) Register(ctx context.Context, in RegisterRequest) (*RegisterResult, error) {
	var out RegisterResult
	if err := s.call(ctx, pb.MethodRegister, &in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyEmail confirms the email and keeps the issued tokens.
func (s *GRPCClient) VerifyEmail(ctx context.Context, email, code string) (*User, error) {
	var out pb.AuthResponse
	if err := s.call(ctx, pb.MethodVerifyEmail, &pb.VerifyEmailRequest{Email: email, Code: code}, &out); err != nil {
		return nil, err
	}
	s.setTokens(out.Tokens)
	return out.User, nil
}

func (s *GRPCClient) ResendVerification(ctx context.Context, email string) error {
	return s.call(ctx, pb.MethodResendVerification, &pb.EmailRequest{Email: email}, &pb.DispatchResponse{})
}

func (s *GRPCClient) Login(ctx context.Context, email string, password []byte) (*User, error) {
	var out pb.AuthResponse
	if err := s.call(ctx, pb.MethodLogin, &pb.LoginRequest{Email: email, Password: string(password)}, &out); err != nil {
		return nil, err
	}
	s.setTokens(out.Tokens)
	return out.User, nil
}

// Refresh rotates the stored token pair.
func (s *GRPCClient) Refresh(ctx context.Context) (*Tokens, error) {
	_, refresh := s.tokens()
	if refresh == "" {
		return nil, ErrNotLoggedIn
	}

	var out pb.RefreshResponse
	if err := s.call(ctx, pb.MethodRefresh, &pb.RefreshRequest{RefreshToken: refresh}, &out); err != nil {
		return nil, err
	}
	s.setTokens(out.Tokens)
	return out.Tokens, nil
}

// Logout revokes the refresh token and forgets the pair.
func (s *GRPCClient) Logout(ctx context.Context) error {
	_, refresh := s.tokens()
	if refresh == "" {
		return ErrNotLoggedIn
	}
	err := s.call(ctx, pb.MethodLogout, &pb.RefreshRequest{RefreshToken: refresh}, &pb.OKResponse{})
	s.setTokens(nil)
	return err
}

func (s *GRPCClient) Profile(ctx context.Context) (*User, error) {
	if !s.LoggedIn() {
		return nil, ErrNotLoggedIn
	}
	var out pb.ProfileResponse
	if err := s.call(ctx, pb.MethodGetProfile, &pb.GetProfileRequest{}, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

func (s *GRPCClient) UpdateProfile(ctx context.Context, in ProfileUpdate) (*User, error) {
	if !s.LoggedIn() {
		return nil, ErrNotLoggedIn
	}
	var out pb.ProfileResponse
	if err := s.call(ctx, pb.MethodUpdateProfile, &in, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

func (s *GRPCClient) RequestPasswordReset(ctx context.Context, email string) error {
	return s.call(ctx, pb.MethodRequestPasswordReset, &pb.EmailRequest{Email: email}, &pb.OKResponse{})
}

func (s *GRPCClient) ResetPassword(ctx context.Context, email, code string, newPassword []byte) error {
	return s.call(ctx, pb.MethodResetPassword, &pb.ResetPasswordRequest{
		Email: email, Code: code, NewPassword: string(newPassword),
	}, &pb.OKResponse{})
}

// mapError turns a status error into a common.Error when the server sent an
// error code, and into ErrUnavailable for transport failures.
func (s *GRPCClient) mapError(err error, trailer metadata.MD) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)

	if vals := trailer.Get(pb.ErrorCodeTrailer); len(vals) > 0 {
		return common.NewError(common.KindOf(vals[0]), "%s", st.Message())
	}

	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
