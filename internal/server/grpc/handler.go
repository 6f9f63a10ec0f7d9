package grpc

import (
	"context"

	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
)

func toUser(u *models.PublicUser) *pb.User {
	if u == nil {
		return nil
	}
	return &pb.User{
		ID:               u.ID,
		Email:            u.Email,
		Name:             u.Name,
		Username:         u.Username,
		MobileNumber:     u.MobileNumber,
		IsEmailVerified:  u.IsEmailVerified,
		IsMobileVerified: u.IsMobileVerified,
		CreatedAt:        u.CreatedAt,
	}
}

func toTokens(t *services.TokenPair) *pb.TokenPair {
	if t == nil {
		return nil
	}
	return &pb.TokenPair{
		AccessToken:           t.AccessToken,
		AccessTokenExpiresAt:  t.AccessTokenExpiresAt,
		RefreshToken:          t.RefreshToken,
		RefreshTokenExpiresAt: t.RefreshTokenExpiresAt,
	}
}

func toAuth(r *services.AuthResult) *pb.AuthResponse {
	if r == nil {
		return &pb.AuthResponse{}
	}
	return &pb.AuthResponse{User: toUser(r.User), Tokens: toTokens(r.Tokens)}
}

func (s *GRPCServer) Register(ctx context.Context, req *pb.RegisterRequest) (*pb.RegisterResponse, error) {
	res, err := s.identity.Register(ctx, services.RegisterInput{
		Email:        req.Email,
		Password:     req.Password,
		Name:         req.Name,
		Username:     req.Username,
		MobileNumber: req.MobileNumber,
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.RegisterResponse{
		User:              toUser(res.User),
		EmailDispatchNote: res.EmailDispatchNote,
		PreviewURL:        res.PreviewURL,
	}, nil
}

func (s *GRPCServer) VerifyEmail(ctx context.Context, req *pb.VerifyEmailRequest) (*pb.AuthResponse, error) {
	res, err := s.identity.VerifyEmail(ctx, req.Email, req.Code)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return toAuth(res), nil
}

func (s *GRPCServer) ResendVerification(ctx context.Context, req *pb.EmailRequest) (*pb.DispatchResponse, error) {
	if err := s.identity.ResendVerification(ctx, req.Email); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.DispatchResponse{Dispatched: true}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *pb.LoginRequest) (*pb.AuthResponse, error) {
	res, err := s.identity.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return toAuth(res), nil
}

func (s *GRPCServer) Refresh(ctx context.Context, req *pb.RefreshRequest) (*pb.RefreshResponse, error) {
	pair, err := s.identity.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.RefreshResponse{Tokens: toTokens(pair)}, nil
}

func (s *GRPCServer) Logout(ctx context.Context, req *pb.RefreshRequest) (*pb.OKResponse, error) {
	if err := s.identity.Logout(ctx, req.RefreshToken); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.OKResponse{OK: true}, nil
}

func (s *GRPCServer) GetProfile(ctx context.Context, _ *pb.GetProfileRequest) (*pb.ProfileResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.identity.GetProfile(ctx, userID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.ProfileResponse{User: toUser(user)}, nil
}

func (s *GRPCServer) UpdateProfile(ctx context.Context, req *pb.UpdateProfileRequest) (*pb.ProfileResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.identity.UpdateProfile(ctx, userID, services.ProfileUpdate{
		Name:         req.Name,
		Username:     req.Username,
		MobileNumber: req.MobileNumber,
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.ProfileResponse{User: toUser(user)}, nil
}

func (s *GRPCServer) RequestPasswordReset(ctx context.Context, req *pb.EmailRequest) (*pb.OKResponse, error) {
	if err := s.identity.RequestPasswordReset(ctx, req.Email); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.OKResponse{OK: true}, nil
}

func (s *GRPCServer) ResetPassword(ctx context.Context, req *pb.ResetPasswordRequest) (*pb.OKResponse, error) {
	if err := s.identity.ResetPassword(ctx, req.Email, req.Code, req.NewPassword); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.OKResponse{OK: true}, nil
}
