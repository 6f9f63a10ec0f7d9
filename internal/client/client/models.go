package client

import pb "github.com/dmitrijs2005/gophauth/internal/proto"

type (
	User            = pb.User
	Tokens          = pb.TokenPair
	RegisterRequest = pb.RegisterRequest
	RegisterResult  = pb.RegisterResponse
	// ProfileUpdate changes only the non-nil fields.
	ProfileUpdate = pb.UpdateProfileRequest
)
