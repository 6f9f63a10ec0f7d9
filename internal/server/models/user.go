package models

import "time"

// User is a stored identity. PasswordHash holds the bcrypt hash only.
type User struct {
	ID               string    `bson:"_id"`
	Email            string    `bson:"email"`
	Username         string    `bson:"username,omitempty"`
	Name             string    `bson:"name,omitempty"`
	MobileNumber     string    `bson:"mobile_number,omitempty"`
	PasswordHash     string    `bson:"password_hash"`
	IsEmailVerified  bool      `bson:"is_email_verified"`
	IsMobileVerified bool      `bson:"is_mobile_verified"`
	CreatedAt        time.Time `bson:"created_at"`
	UpdatedAt        time.Time `bson:"updated_at"`
}

// PublicUser is the part of a user that leaves the service.
type PublicUser struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	Name             string    `json:"name,omitempty"`
	Username         string    `json:"username,omitempty"`
	MobileNumber     string    `json:"mobileNumber,omitempty"`
	IsEmailVerified  bool      `json:"isEmailVerified"`
	IsMobileVerified bool      `json:"isMobileVerified"`
	CreatedAt        time.Time `json:"createdAt"`
}

func (u *User) Public() *PublicUser {
	return &PublicUser{
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
