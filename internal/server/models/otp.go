package models

import "time"

type OTPPurpose string

const (
	PurposeVerification  OTPPurpose = "verification"
	PurposePasswordReset OTPPurpose = "passwordReset"
)

// OneTimeCode is a short-lived numeric code bound to an email and purpose.
type OneTimeCode struct {
	ID        string     `bson:"_id"`
	Email     string     `bson:"email"`
	Code      string     `bson:"code"`
	Purpose   OTPPurpose `bson:"purpose"`
	ExpiresAt time.Time  `bson:"expires_at"`
	IsUsed    bool       `bson:"is_used"`
	CreatedAt time.Time  `bson:"created_at"`
}

// Active reports whether the code can still be consumed at now.
func (c *OneTimeCode) Active(now time.Time) bool {
	return !c.IsUsed && now.Before(c.ExpiresAt)
}
