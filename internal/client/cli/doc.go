// Package cli provides the interactive gophauth command-line client.
//
// The REPL is started with App.Run, which blocks until the user exits. Before
// login it offers register, verify, resend, login, forgot and reset; after
// login it adds profile, update, refresh and logout. Expired access tokens are
// rotated transparently by the underlying client.
package cli
