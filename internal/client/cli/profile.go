package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
)

func (a *App) Profile(ctx context.Context) error {
	user, err := a.api.Profile(ctx)
	if err != nil {
		return a.report(err)
	}
	printUser(user)
	return nil
}

// UpdateProfile asks for each field; an empty answer leaves it unchanged and
// "-" clears it.
func (a *App) UpdateProfile(ctx context.Context) error {
	var in client.ProfileUpdate
	fields := []struct {
		prompt string
		dst    **string
	}{
		{"New name", &in.Name},
		{"New username", &in.Username},
		{"New mobile number", &in.MobileNumber},
	}

	for _, f := range fields {
		v, err := getSimpleText(a.reader, f.prompt+" (empty to keep, - to clear)", a.out)
		if err != nil {
			return err
		}
		switch v {
		case "":
		case "-":
			empty := ""
			*f.dst = &empty
		default:
			value := v
			*f.dst = &value
		}
	}

	user, err := a.api.UpdateProfile(ctx, in)
	if err != nil {
		return a.report(err)
	}
	printUser(user)
	return nil
}

func printUser(u *client.User) {
	printlnFn(fmt.Sprintf("ID:        %s", u.ID))
	printlnFn(fmt.Sprintf("Email:     %s (verified: %t)", u.Email, u.IsEmailVerified))
	printlnFn(fmt.Sprintf("Name:      %s", u.Name))
	printlnFn(fmt.Sprintf("Username:  %s", u.Username))
	printlnFn(fmt.Sprintf("Mobile:    %s", u.MobileNumber))
	printlnFn(fmt.Sprintf("Created:   %s", u.CreatedAt.Local().Format("2006-01-02 15:04")))
}
