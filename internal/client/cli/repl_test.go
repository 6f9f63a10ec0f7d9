package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"
)

type fakeExec struct {
	loggedIn bool
	calls    []string
}

func (f *fakeExec) record(name string) error {
	f.calls = append(f.calls, name)
	return nil
}

func (f *fakeExec) isLoggedIn() bool                      { return f.loggedIn }
func (f *fakeExec) Register(ctx context.Context) error      { return f.record("register") }
func (f *fakeExec) Resend(ctx context.Context) error        { return f.record("resend") }
func (f *fakeExec) Forgot(ctx context.Context) error        { return f.record("forgot") }
func (f *fakeExec) Reset(ctx context.Context) error         { return f.record("reset") }
func (f *fakeExec) Profile(ctx context.Context) error       { return f.record("profile") }
func (f *fakeExec) UpdateProfile(ctx context.Context) error { return f.record("update") }
func (f *fakeExec) Refresh(ctx context.Context) error       { return f.record("refresh") }
func (f *fakeExec) Verify(ctx context.Context) error {
	f.loggedIn = true
	return f.record("verify")
}
func (f *fakeExec) Login(ctx context.Context) error {
	f.loggedIn = true
	return f.record("login")
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}

func capturePrints(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_GuestThenMember(t *testing.T) {
	lines := capturePrints(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"register",
		"profile",
		"verify",
		"help",
		"p",
		"update",
		"refresh",
		"login",
		"logout",
		"forgot",
		"reset",
		"",
		"foobar",
		"exit",
		"register",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(input))

	want := []string{"register", "verify", "profile", "update", "refresh", "logout", "forgot", "reset"}
	if strings.Join(exec.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("calls = %v, want %v", exec.calls, want)
	}

	joined := strings.Join(*lines, "\n")
	for _, s := range []string{guestHelp, memberHelp, "Unknown command: profile", "Unknown command: login",
		"Unknown command: foobar", "Bye!"} {
		if !strings.Contains(joined, s) {
			t.Fatalf("output misses %q:\n%s", s, joined)
		}
	}
}

func TestRunREPL_StopsOnEOF(t *testing.T) {
	lines := capturePrints(t)

	exec := &fakeExec{loggedIn: true}
	runREPL(context.Background(), exec, func() string { return "(a@x.com) " }, bufio.NewScanner(strings.NewReader("quit\n")))

	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
	if (*lines)[0] != "ga (a@x.com) > " {
		t.Fatalf("unexpected prompt %q", (*lines)[0])
	}
}
