// Package proto defines the wire contract of gophauth.v1.IdentityService
// shared by server and client. The typed messages in messages.go travel as
// google.protobuf.Struct values whose fields use the JSON names of the HTTP
// API.
package proto

import (
	"encoding/json"

	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "gophauth.v1.IdentityService"

// Full method names.
const (
	MethodRegister             = "/" + ServiceName + "/Register"
	MethodVerifyEmail          = "/" + ServiceName + "/VerifyEmail"
	MethodResendVerification   = "/" + ServiceName + "/ResendVerification"
	MethodLogin                = "/" + ServiceName + "/Login"
	MethodRefresh              = "/" + ServiceName + "/Refresh"
	MethodLogout               = "/" + ServiceName + "/Logout"
	MethodGetProfile           = "/" + ServiceName + "/GetProfile"
	MethodUpdateProfile        = "/" + ServiceName + "/UpdateProfile"
	MethodRequestPasswordReset = "/" + ServiceName + "/RequestPasswordReset"
	MethodResetPassword        = "/" + ServiceName + "/ResetPassword"
)

// ErrorCodeTrailer carries the stable error code next to the gRPC status.
const ErrorCodeTrailer = "error-code"

// DecodeStruct fills v from a Struct using the JSON field names of v.
func DecodeStruct(in *structpb.Struct, v any) error {
	b, err := json.Marshal(in.AsMap())
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// EncodeStruct turns v into a Struct through its JSON form.
func EncodeStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	m := map[string]any{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}
