package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
)

func (a *App) getStatus() string {
	if a.isLoggedIn() && a.email != "" {
		return fmt.Sprintf("(%s) ", a.email)
	}
	return ""
}

// Root runs the REPL on stdin until the user leaves.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to gophauth CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
}
