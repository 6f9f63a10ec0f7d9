package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/common"
)

// getSimpleText and getPassword point to the interactive input helpers and
// are swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// report prints a user-facing description of err and returns it.
func (a *App) report(err error) error {
	switch {
	case errors.Is(err, client.ErrUnavailable):
		printlnFn("Server unavailable, try again later")
	case errors.Is(err, client.ErrNotLoggedIn):
		printlnFn("You are not logged in")
	case errors.Is(err, client.ErrUnauthorized):
		printlnFn("Session expired, please log in again")
	default:
		msg := err.Error()
		var svcErr *common.Error
		if errors.As(err, &svcErr) {
			msg = common.Message(err)
		}
		printlnFn("Error:", msg)
	}
	return err
}

// Register prompts for the account details and creates it. The server emails
// a verification code; use "verify" next.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	name, err := getSimpleText(a.reader, "Enter name (optional)", a.out)
	if err != nil {
		return err
	}
	username, err := getSimpleText(a.reader, "Enter username (optional)", a.out)
	if err != nil {
		return err
	}

	res, err := a.api.Register(ctx, client.RegisterRequest{
		Email: email, Password: string(password), Name: name, Username: username,
	})
	if err != nil {
		return a.report(err)
	}

	a.email = res.User.Email
	if res.EmailDispatchNote != "" {
		printlnFn(res.EmailDispatchNote)
	} else {
		printlnFn("Registered. Check your inbox for the verification code.")
	}
	if res.PreviewURL != "" {
		printlnFn("Preview:", res.PreviewURL)
	}
	return nil
}

// Verify confirms the email with the emailed code and logs in.
func (a *App) Verify(ctx context.Context) error {
	email, err := a.askEmail()
	if err != nil {
		return err
	}
	code, err := getSimpleText(a.reader, "Enter code", a.out)
	if err != nil {
		return err
	}

	user, err := a.api.VerifyEmail(ctx, email, code)
	if err != nil {
		return a.report(err)
	}
	a.email = user.Email
	printlnFn("Email verified, you are logged in")
	return nil
}

func (a *App) Resend(ctx context.Context) error {
	email, err := a.askEmail()
	if err != nil {
		return err
	}
	if err := a.api.ResendVerification(ctx, email); err != nil {
		return a.report(err)
	}
	printlnFn("Verification code sent")
	return nil
}

// Login authenticates with email and password. An unverified account gets a
// fresh code by email.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.api.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, common.ErrorEmailNotVerified) {
			a.email = email
			printlnFn(fmt.Sprintf("%s, use 'verify'", common.Message(err)))
			return err
		}
		return a.report(err)
	}

	a.email = user.Email
	printlnFn(fmt.Sprintf("Logged in as %s", user.Email))
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	tokens, err := a.api.Refresh(ctx)
	if err != nil {
		return a.report(err)
	}
	printlnFn("Session refreshed, access token valid until", tokens.AccessTokenExpiresAt.Local().Format("15:04:05"))
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.api.Logout(ctx); err != nil {
		return a.report(err)
	}
	printlnFn("Logged out")
	return nil
}

// askEmail offers the last used email as the default.
func (a *App) askEmail() (string, error) {
	prompt := "Enter email"
	if a.email != "" {
		prompt = fmt.Sprintf("Enter email [%s]", a.email)
	}
	email, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return "", err
	}
	if email == "" {
		email = a.email
	}
	return email, nil
}
