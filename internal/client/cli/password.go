package cli

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

// Forgot requests a password reset code. The server does not reveal whether
// the email is registered.
func (a *App) Forgot(ctx context.Context) error {
	email, err := a.askEmail()
	if err != nil {
		return err
	}
	if err := a.api.RequestPasswordReset(ctx, email); err != nil {
		return a.report(err)
	}
	a.email = email
	printlnFn("If the email is registered, a reset code was sent")
	return nil
}

// Reset sets a new password using the emailed code. All sessions are revoked,
// so the user has to log in again.
func (a *App) Reset(ctx context.Context) error {
	email, err := a.askEmail()
	if err != nil {
		return err
	}
	code, err := getSimpleText(a.reader, "Enter code", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.api.ResetPassword(ctx, email, code, password); err != nil {
		return a.report(err)
	}
	if a.isLoggedIn() && email == a.email {
		// the server revoked this session too
		_ = a.api.Logout(ctx)
	}
	printlnFn("Password changed, please log in")
	return nil
}
