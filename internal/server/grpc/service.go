package grpc

import (
	"context"

	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// IdentityServiceServer is the server side of gophauth.v1.IdentityService.
type IdentityServiceServer interface {
	Register(context.Context, *pb.RegisterRequest) (*pb.RegisterResponse, error)
	VerifyEmail(context.Context, *pb.VerifyEmailRequest) (*pb.AuthResponse, error)
	ResendVerification(context.Context, *pb.EmailRequest) (*pb.DispatchResponse, error)
	Login(context.Context, *pb.LoginRequest) (*pb.AuthResponse, error)
	Refresh(context.Context, *pb.RefreshRequest) (*pb.RefreshResponse, error)
	Logout(context.Context, *pb.RefreshRequest) (*pb.OKResponse, error)
	GetProfile(context.Context, *pb.GetProfileRequest) (*pb.ProfileResponse, error)
	UpdateProfile(context.Context, *pb.UpdateProfileRequest) (*pb.ProfileResponse, error)
	RequestPasswordReset(context.Context, *pb.EmailRequest) (*pb.OKResponse, error)
	ResetPassword(context.Context, *pb.ResetPasswordRequest) (*pb.OKResponse, error)
}

// unary builds a method that decodes the incoming Struct into Req, calls h
// and encodes Resp back. Interceptors see the Struct values.
func unary[Req, Resp any](name string, h func(IdentityServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	full := "/" + pb.ServiceName + "/" + name

	call := func(srv any, ctx context.Context, req any) (any, error) {
		in := new(Req)
		if err := pb.DecodeStruct(req.(*structpb.Struct), in); err != nil {
			return nil, status.Error(codes.InvalidArgument, "invalid payload")
		}
		out, err := h(srv.(IdentityServiceServer), ctx, in)
		if err != nil {
			return nil, err
		}
		resp, err := pb.EncodeStruct(out)
		if err != nil {
			return nil, status.Error(codes.Internal, "internal error")
		}
		return resp, nil
	}

	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: full}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv, ctx, req)
			})
		},
	}
}

// ServiceDesc describes gophauth.v1.IdentityService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: pb.ServiceName,
	HandlerType: (*IdentityServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Register", IdentityServiceServer.Register),
		unary("VerifyEmail", IdentityServiceServer.VerifyEmail),
		unary("ResendVerification", IdentityServiceServer.ResendVerification),
		unary("Login", IdentityServiceServer.Login),
		unary("Refresh", IdentityServiceServer.Refresh),
		unary("Logout", IdentityServiceServer.Logout),
		unary("GetProfile", IdentityServiceServer.GetProfile),
		unary("UpdateProfile", IdentityServiceServer.UpdateProfile),
		unary("RequestPasswordReset", IdentityServiceServer.RequestPasswordReset),
		unary("ResetPassword", IdentityServiceServer.ResetPassword),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "identity.proto",
}
