package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool

	calls []string
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(ctx context.Context) error {
	f.calls = append(f.calls, "register")
	return nil
}
func (f *fakeExec) Login(ctx context.Context) error {
	f.calls = append(f.calls, "login")
	f.loggedIn = true
	return nil
}
func (f *fakeExec) WhoAmI(ctx context.Context) error {
	f.calls = append(f.calls, "whoami")
	return nil
}
func (f *fakeExec) Home(ctx context.Context) error { f.calls = append(f.calls, "home"); return nil }
func (f *fakeExec) Post(ctx context.Context) error { f.calls = append(f.calls, "post"); return nil }
func (f *fakeExec) ShowPost(ctx context.Context, id string) error {
	f.calls = append(f.calls, "show "+id)
	return nil
}
func (f *fakeExec) EditPost(ctx context.Context, id string) error {
	f.calls = append(f.calls, "edit "+id)
	return nil
}
func (f *fakeExec) DeletePost(ctx context.Context, id string) error {
	f.calls = append(f.calls, "delete "+id)
	return nil
}
func (f *fakeExec) Creators(ctx context.Context) error {
	f.calls = append(f.calls, "creators")
	return nil
}
func (f *fakeExec) Follow(ctx context.Context, userID string) error {
	f.calls = append(f.calls, "follow "+userID)
	return nil
}
func (f *fakeExec) Unfollow(ctx context.Context, userID string) error {
	f.calls = append(f.calls, "unfollow "+userID)
	return nil
}
func (f *fakeExec) Followers(ctx context.Context, userID string) error {
	f.calls = append(f.calls, "followers "+userID)
	return nil
}
func (f *fakeExec) Profile(ctx context.Context) error {
	f.calls = append(f.calls, "profile")
	return nil
}
func (f *fakeExec) Check(ctx context.Context) error {
	f.calls = append(f.calls, "check")
	return nil
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.calls = append(f.calls, "logout")
	f.loggedIn = false
	return nil
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	input := strings.Join([]string{
		"help",
		"login",
		"help",
		"whoami",
		"",
		"home",
		"post",
		"check",
		"foobar",
		"logout",
		"register",
		"exit",
		"home",
	}, "\n")

	exec := &fakeExec{}
	var out bytes.Buffer

	runREPL(context.Background(), exec, func() string { return "(status)" }, rdr(input), &out)

	assert.Equal(t, []string{"login", "whoami", "home", "post", "check", "logout", "register"}, exec.calls)
	assert.Contains(t, out.String(), "Available commands: register, login, check, exit")
	assert.Contains(t, out.String(), "Available commands: whoami, home, post, show, edit, delete, creators, follow, unfollow, followers, profile, check, logout, exit")
	assert.Contains(t, out.String(), "Unknown command: foobar")
	assert.Contains(t, out.String(), "verde (status)> ")
}

func TestRunREPL_CommandsWithArguments(t *testing.T) {
	input := strings.Join([]string{
		"show p1",
		"edit p1",
		"delete p1 extra",
		"show",
		"follow u2",
		"unfollow u2",
		"followers",
		"followers u2",
		"creators",
		"profile",
		"exit",
	}, "\n")

	exec := &fakeExec{loggedIn: true}
	var out bytes.Buffer

	runREPL(context.Background(), exec, func() string { return "s" }, rdr(input), &out)

	assert.Equal(t, []string{
		"show p1", "edit p1", "delete p1",
		"follow u2", "unfollow u2",
		"followers ", "followers u2",
		"creators", "profile",
	}, exec.calls)
	assert.Contains(t, out.String(), "Usage: show <id>")
}

func TestRunREPL_StopsOnEOF(t *testing.T) {
	exec := &fakeExec{loggedIn: true}
	var out bytes.Buffer

	runREPL(context.Background(), exec, func() string { return "s" }, rdr("whoami"), &out)

	assert.Equal(t, []string{"whoami"}, exec.calls)
}

func TestRunREPL_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	exec := &fakeExec{}
	var out bytes.Buffer

	runREPL(ctx, exec, func() string { return "s" }, rdr("login\n"), &out)

	assert.Empty(t, exec.calls)
}
