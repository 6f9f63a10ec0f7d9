package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophauth/internal/common"
	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var grpcCodes = map[string]codes.Code{
	common.CodeValidationFailed:     codes.InvalidArgument,
	common.CodeAlreadyExists:        codes.AlreadyExists,
	common.CodeInvalidCredentials:   codes.Unauthenticated,
	common.CodeInvalidOrExpiredCode: codes.InvalidArgument,
	common.CodeInvalidRefreshToken:  codes.Unauthenticated,
	common.CodeEmailNotVerified:     codes.PermissionDenied,
	common.CodeAlreadyVerified:      codes.AlreadyExists,
	common.CodeNotFound:             codes.NotFound,
	common.CodeRateLimited:          codes.ResourceExhausted,
	common.CodeUnauthorized:         codes.Unauthenticated,
	common.CodeInternal:             codes.Internal,
}

func grpcCode(err error) codes.Code {
	if c, ok := grpcCodes[common.Code(err)]; ok {
		return c
	}
	return codes.Internal
}

// toStatus converts a service error into a status error and attaches the
// stable code as a trailer.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	code := common.Code(err)

	var known *common.Error
	if !errors.As(err, &known) && code == common.CodeInternal {
		s.logger.Error(ctx, "unhandled error", "error", err)
	}

	_ = grpc.SetTrailer(ctx, metadata.Pairs(pb.ErrorCodeTrailer, code))
	return status.Error(grpcCode(err), common.Message(err))
}
