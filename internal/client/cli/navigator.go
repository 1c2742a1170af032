package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/hablemosverde/verde/internal/common"
)

// navigator tracks the screen the user is on. A CLI has no screens, so the
// route only shows in the prompt; moving to sign-in prints a notice.
type navigator struct {
	mu    sync.Mutex
	route string
	out   io.Writer
}

func newNavigator(out io.Writer) *navigator {
	return &navigator{route: common.RouteHome, out: out}
}

func (n *navigator) Navigate(route string) {
	n.mu.Lock()
	changed := n.route != route
	n.route = route
	n.mu.Unlock()

	if changed && route == common.RouteSignIn {
		fmt.Fprintln(n.out, "You are signed out. Type 'login' or 'register'.")
	}
}

func (n *navigator) Route() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.route
}
