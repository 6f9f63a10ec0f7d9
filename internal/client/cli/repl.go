package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL drives. App satisfies it.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Verify(ctx context.Context) error
	Resend(ctx context.Context) error
	Login(ctx context.Context) error
	Forgot(ctx context.Context) error
	Reset(ctx context.Context) error
	Profile(ctx context.Context) error
	UpdateProfile(ctx context.Context) error
	Refresh(ctx context.Context) error
	Logout(ctx context.Context) error
}

const (
	guestHelp  = "Available commands: register, verify, resend, login, forgot, reset, exit"
	memberHelp = "Available commands: profile, update, refresh, logout, forgot, reset, exit"
)

// runREPL reads commands from scanner until EOF, "exit" or "quit". Command
// errors are reported by the commands themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("ga %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		if a.isLoggedIn() {
			switch cmd {
			case "profile", "p":
				_ = a.Profile(ctx)
				continue
			case "update":
				_ = a.UpdateProfile(ctx)
				continue
			case "refresh":
				_ = a.Refresh(ctx)
				continue
			case "logout":
				_ = a.Logout(ctx)
				continue
			}
		} else {
			switch cmd {
			case "register":
				_ = a.Register(ctx)
				continue
			case "verify":
				_ = a.Verify(ctx)
				continue
			case "resend":
				_ = a.Resend(ctx)
				continue
			case "login":
				_ = a.Login(ctx)
				continue
			}
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(memberHelp)
			} else {
				printlnFn(guestHelp)
			}

		case "forgot":
			_ = a.Forgot(ctx)

		case "reset":
			_ = a.Reset(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
