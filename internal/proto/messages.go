package proto

import "time"

// Messages of gophauth.v1.IdentityService. On the wire each one travels as a
// google.protobuf.Struct keyed by the json names below (see identity.proto).

type User struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	Name             string    `json:"name,omitempty"`
	Username         string    `json:"username,omitempty"`
	MobileNumber     string    `json:"mobileNumber,omitempty"`
	IsEmailVerified  bool      `json:"isEmailVerified"`
	IsMobileVerified bool      `json:"isMobileVerified"`
	CreatedAt        time.Time `json:"createdAt"`
}

type TokenPair struct {
	AccessToken           string    `json:"accessToken"`
	AccessTokenExpiresAt  time.Time `json:"accessTokenExpiresAt"`
	RefreshToken          string    `json:"refreshToken"`
	RefreshTokenExpiresAt time.Time `json:"refreshTokenExpiresAt"`
}

type RegisterRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	Name         string `json:"name,omitempty"`
	Username     string `json:"username,omitempty"`
	MobileNumber string `json:"mobileNumber,omitempty"`
}

type RegisterResponse struct {
	User              *User  `json:"user"`
	EmailDispatchNote string `json:"emailDispatchNote,omitempty"`
	PreviewURL        string `json:"previewURL,omitempty"`
}

type VerifyEmailRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// EmailRequest is the input of ResendVerification and RequestPasswordReset.
type EmailRequest struct {
	Email string `json:"email"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by VerifyEmail and Login.
type AuthResponse struct {
	User   *User      `json:"user"`
	Tokens *TokenPair `json:"tokens"`
}

// RefreshRequest is the input of Refresh and Logout.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type RefreshResponse struct {
	Tokens *TokenPair `json:"tokens"`
}

type GetProfileRequest struct{}

// UpdateProfileRequest changes only the non-nil fields.
type UpdateProfileRequest struct {
	Name         *string `json:"name,omitempty"`
	Username     *string `json:"username,omitempty"`
	MobileNumber *string `json:"mobileNumber,omitempty"`
}

type ProfileResponse struct {
	User *User `json:"user"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

type DispatchResponse struct {
	Dispatched bool `json:"dispatched"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}
