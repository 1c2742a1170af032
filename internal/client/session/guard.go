package session

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/hablemosverde/verde/internal/client/client"
	"github.com/hablemosverde/verde/internal/client/repositories/kvstore"
	"github.com/hablemosverde/verde/internal/client/signal"
	"github.com/hablemosverde/verde/internal/common"
	"github.com/hablemosverde/verde/internal/logging"
)

// DefaultSessionDuration is the absolute lifetime of a login, counted from
// the first successful validation. Activity does not extend it.
const DefaultSessionDuration = 20 * time.Minute

// Navigator moves the user between screens.
type Navigator interface {
	Navigate(route string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(route string)

func (f NavigatorFunc) Navigate(route string) { f(route) }

// Guard runs the session lifecycle of one client instance.
type Guard struct {
	store   *Store
	backend client.Client
	kv      kvstore.Repository
	bus     signal.Bus
	nav     Navigator
	log     logging.Logger

	origin          string
	sessionDuration time.Duration
	checkTimeout    time.Duration
	now             func() time.Time

	flight singleflight.Group
	// epoch changes on every logout so a check that started before the
	// logout cannot resurrect the session. A check compares it under the
	// store lock when it commits.
	epoch atomic.Uint64
}

type Option func(*Guard)

// WithSessionDuration overrides DefaultSessionDuration.
func WithSessionDuration(d time.Duration) Option {
	return func(g *Guard) {
		if d > 0 {
			g.sessionDuration = d
		}
	}
}

// WithCheckTimeout bounds one shared session validation. Zero means no
// bound beyond the backend client's own timeout.
func WithCheckTimeout(d time.Duration) Option {
	return func(g *Guard) { g.checkTimeout = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Guard) { g.now = now }
}

// WithOrigin sets the id stamped on published signals. Defaults to a
// random UUID.
func WithOrigin(origin string) Option {
	return func(g *Guard) { g.origin = origin }
}

func NewGuard(store *Store, backend client.Client, kv kvstore.Repository, bus signal.Bus, nav Navigator, log logging.Logger, opts ...Option) *Guard {
	if log == nil {
		log = logging.Discard()
	}
	g := &Guard{
		store:           store,
		backend:         backend,
		kv:              kv,
		bus:             bus,
		nav:             nav,
		origin:          uuid.NewString(),
		sessionDuration: DefaultSessionDuration,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.log = log.With("component", "session", "origin", g.origin)
	return g
}

func (g *Guard) Store() *Store { return g.store }

func (g *Guard) Origin() string { return g.origin }

// Initialize runs once at start-up. Without a backend session marker the
// session is declared unauthenticated without asking the backend;
// otherwise the session is validated. Either way IsInitialized is true
// afterwards, and the user is sent to sign-in unless authenticated.
func (g *Guard) Initialize(ctx context.Context) bool {
	g.store.update(func(st *State) { st.IsLoading = true })

	raw, err := g.kv.Get(ctx, common.KeyCookieFallback)
	if err != nil {
		g.log.Error(ctx, "read session marker", "error", err)
	}
	if _, ok := client.ParseCookieFallback(raw); err != nil || !ok {
		g.store.update(func(st *State) {
			signOut(st)
			st.IsInitialized = true
			st.IsLoading = false
		})
		g.nav.Navigate(common.RouteSignIn)
		return false
	}

	authenticated := g.CheckAuthUser(ctx)
	g.store.update(func(st *State) {
		st.IsInitialized = true
		st.IsLoading = false
	})
	if !authenticated {
		g.nav.Navigate(common.RouteSignIn)
	}
	return authenticated
}

// CheckAuthUser validates the backend session and reports whether the user
// is authenticated. Concurrent callers share one validation. The shared
// validation does not inherit any caller's cancellation; a caller whose ctx
// ends stops waiting and gets false, leaving the session untouched.
func (g *Guard) CheckAuthUser(ctx context.Context) bool {
	ch := g.flight.DoChan("check", func() (any, error) {
		checkCtx := context.WithoutCancel(ctx)
		if g.checkTimeout > 0 {
			var cancel context.CancelFunc
			checkCtx, cancel = context.WithTimeout(checkCtx, g.checkTimeout)
			defer cancel()
		}
		return g.checkAuthUser(checkCtx), nil
	})

	select {
	case <-ctx.Done():
		return false
	case res := <-ch:
		return res.Val.(bool)
	}
}

func (g *Guard) checkAuthUser(ctx context.Context) bool {
	epoch := g.epoch.Load()

	g.store.update(func(st *State) { st.IsLoading = true })
	defer g.store.update(func(st *State) { st.IsLoading = false })

	acc, err := g.backend.GetCurrentUser(ctx)
	if err != nil {
		g.log.Error(ctx, "checking auth user", "error", err)
		g.store.update(signOut)
		return false
	}
	if acc == nil {
		g.store.update(signOut)
		return false
	}

	now := g.now()
	loginAt, hasLogin, err := kvstore.GetMillis(ctx, g.kv, common.KeyLoginTimestamp)
	if err != nil {
		g.log.Error(ctx, "read login timestamp", "error", err)
		g.store.update(signOut)
		return false
	}
	if hasLogin && now.Sub(loginAt) > g.sessionDuration {
		g.log.Info(ctx, "session expired", "login_at", loginAt, "max", g.sessionDuration)
		g.logout(ctx)
		return false
	}

	user := acc.ToUser()
	stale := false
	g.store.update(func(st *State) {
		if g.epoch.Load() != epoch {
			stale = true
			return
		}
		st.User = user
		st.IsAuthenticated = true
	})
	if stale {
		g.log.Info(ctx, "logged out during check, discarding result")
		return false
	}

	if !hasLogin && g.epoch.Load() == epoch {
		if err := kvstore.SetMillis(ctx, g.kv, common.KeyLoginTimestamp, now); err != nil {
			g.log.Warn(ctx, "persist login timestamp", "error", err)
		}
	}
	g.log.Debug(ctx, "session validated", "user_id", user.ID)
	return !user.IsEmpty()
}

// Logout ends the session locally whatever the backend says, tells the
// other instances of the profile, and sends the user to sign-in.
func (g *Guard) Logout(ctx context.Context) {
	g.logout(ctx)
}

func (g *Guard) logout(ctx context.Context) {
	g.epoch.Add(1)

	if err := g.backend.SignOut(ctx); err != nil {
		g.log.Warn(ctx, "backend sign out", "error", err)
	}

	g.store.update(signOut)

	now := g.now()
	err := g.kv.Update(ctx, func(ctx context.Context, tx kvstore.Repository) error {
		if err := tx.Delete(ctx, common.KeyLoginTimestamp); err != nil {
			return err
		}
		return kvstore.SetMillis(ctx, tx, common.KeyLoggedOut, now)
	})
	if err != nil {
		g.log.Warn(ctx, "persist logout", "error", err)
	}
	if g.bus != nil {
		if err := g.bus.Publish(ctx, signal.Logout(g.origin, now)); err != nil {
			g.log.Warn(ctx, "publish logout signal", "error", err)
		}
	}

	g.nav.Navigate(common.RouteSignIn)
}

// Listen subscribes to the bus and applies signals from other instances in
// the background until ctx is done, the bus is closed, or stop is called.
// stop waits for the background loop to exit.
func (g *Guard) Listen(ctx context.Context) (stop func()) {
	if g.bus == nil {
		return func() {}
	}
	ch, cancel := g.bus.Subscribe()
	ctx, cancelCtx := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case s, ok := <-ch:
				if !ok {
					return
				}
				g.HandleSignal(ctx, s)
			}
		}
	}()

	return func() {
		cancelCtx()
		<-done
	}
}

// HandleSignal applies one signal. A logout from another instance clears
// the local session and redirects, without a backend round-trip. Signals
// this guard published itself are ignored.
func (g *Guard) HandleSignal(ctx context.Context, s signal.Signal) {
	if s.Kind != signal.KindLogout || s.Origin == g.origin {
		return
	}
	g.store.update(func(st *State) {
		g.epoch.Add(1)
		signOut(st)
	})
	g.log.Info(ctx, "logged out by another instance", "from", s.Origin, "at", s.At)
	g.nav.Navigate(common.RouteSignIn)
}

// RequireAuth protects a screen. It validates the session; on failure it
// raises the one-shot redirectToLogin flag, and whenever that flag is
// raised it is consumed and the user is sent to sign-in.
func (g *Guard) RequireAuth(ctx context.Context) bool {
	authenticated := g.CheckAuthUser(ctx)
	if authenticated {
		return true
	}
	if ctx.Err() != nil {
		return false
	}

	if err := kvstore.SetString(ctx, g.kv, common.KeyRedirectToLogin, "true"); err != nil {
		g.log.Warn(ctx, "raise redirect flag", "error", err)
	}

	flag, err := kvstore.GetString(ctx, g.kv, common.KeyRedirectToLogin)
	if err != nil {
		g.log.Warn(ctx, "read redirect flag", "error", err)
	}
	if flag == "true" || err != nil {
		if err := g.kv.Delete(ctx, common.KeyRedirectToLogin); err != nil {
			g.log.Warn(ctx, "consume redirect flag", "error", err)
		}
		g.nav.Navigate(common.RouteSignIn)
	}
	return false
}
