package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Home(ctx context.Context) error
	Post(ctx context.Context) error
	ShowPost(ctx context.Context, id string) error
	EditPost(ctx context.Context, id string) error
	DeletePost(ctx context.Context, id string) error
	Creators(ctx context.Context) error
	Follow(ctx context.Context, userID string) error
	Unfollow(ctx context.Context, userID string) error
	Followers(ctx context.Context, userID string) error
	Profile(ctx context.Context) error
	Check(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the verde CLI.
//
// It reads a line from reader, parses the first token as the command and the
// second as its argument, and dispatches to methods on 'a'. Unknown commands are reported back to the
// user. The loop exits on EOF, when ctx is done, or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Signed out:
//	  - help             show available commands
//	  - register         create an account and sign in
//	  - login            sign in
//	  - check            re-validate the stored session
//	  - exit | quit      leave the program
//
//	Signed in:
//	  - help             show available commands
//	  - whoami           show the profile card
//	  - home             show the most recent posts
//	  - post             publish a post
//	  - show <id>        show a post and its creator's other posts
//	  - edit <id>        edit one of your posts
//	  - delete <id>      delete one of your posts
//	  - creators         list the newest creators
//	  - follow <id>      follow a creator
//	  - unfollow <id>    stop following a creator
//	  - followers [id]   list the followers of a creator, or yours
//	  - profile          edit your profile
//	  - check            re-validate the session
//	  - logout           sign out here and in every other instance
//	  - exit | quit      leave the program
//
// Errors returned by command handlers are ignored here; handlers report
// their own errors to the user.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(w, "verde %s> ", statusFn())
		line, err := readLine(reader)
		if err != nil {
			fmt.Fprintln(w)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		arg := ""
		if len(parts) > 1 {
			arg = parts[1]
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(w, "Available commands: whoami, home, post, show, edit, delete, creators, follow, unfollow, followers, profile, check, logout, exit")
			} else {
				fmt.Fprintln(w, "Available commands: register, login, check, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "home":
			_ = a.Home(ctx)

		case "post":
			_ = a.Post(ctx)

		case "show", "edit", "delete", "follow", "unfollow":
			if arg == "" {
				fmt.Fprintf(w, "Usage: %s <id>\n", cmd)
				continue
			}
			switch cmd {
			case "show":
				_ = a.ShowPost(ctx, arg)
			case "edit":
				_ = a.EditPost(ctx, arg)
			case "delete":
				_ = a.DeletePost(ctx, arg)
			case "follow":
				_ = a.Follow(ctx, arg)
			case "unfollow":
				_ = a.Unfollow(ctx, arg)
			}

		case "creators":
			_ = a.Creators(ctx)

		case "followers":
			_ = a.Followers(ctx, arg)

		case "profile":
			_ = a.Profile(ctx)

		case "check":
			_ = a.Check(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			fmt.Fprintln(w, "¡Hasta pronto!")
			return

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}
	}
}
