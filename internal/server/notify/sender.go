// Package notify delivers identity emails. Senders report failures to the
// caller; the identity service logs them and carries on.
package notify

import (
	"context"
	"fmt"
	"time"
)

// Message is a rendered email.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Delivery describes a successful send. PreviewURL is set only by senders
// that archive a copy of the message.
type Delivery struct {
	PreviewURL string
}

type Sender interface {
	Send(ctx context.Context, msg Message) (*Delivery, error)
}

func VerificationMessage(to, code string, ttl time.Duration) Message {
	return Message{
		To:      to,
		Subject: "Verify your email",
		Body: fmt.Sprintf("Your verification code is %s.\n\nIt expires in %d minutes. "+
			"If you did not create an account, ignore this email.\n", code, int(ttl.Minutes())),
	}
}

func PasswordResetMessage(to, code string, ttl time.Duration) Message {
	return Message{
		To:      to,
		Subject: "Reset your password",
		Body: fmt.Sprintf("Your password reset code is %s.\n\nIt expires in %d minutes. "+
			"If you did not ask for a reset, ignore this email.\n", code, int(ttl.Minutes())),
	}
}
