package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hablemosverde/verde/internal/client/client"
	"github.com/hablemosverde/verde/internal/client/config"
	"github.com/hablemosverde/verde/internal/client/repositories/kvstore"
	"github.com/hablemosverde/verde/internal/client/services"
	"github.com/hablemosverde/verde/internal/client/session"
	"github.com/hablemosverde/verde/internal/client/signal"
	"github.com/hablemosverde/verde/internal/filex"
	"github.com/hablemosverde/verde/internal/logging"
)

// App is one client instance: one profile, one session, one REPL.
type App struct {
	config *config.Config
	log    logging.Logger

	db      *sql.DB
	kv      kvstore.Repository
	client  client.Client
	bus     signal.Bus
	closers []func() error

	store       *session.Store
	guard       *session.Guard
	nav         *navigator
	authService   services.AuthService
	feedService   services.FeedService
	peopleService services.PeopleService

	reader *bufio.Reader
	out    io.Writer
}

// NewApp wires an App reading commands from stdin and writing to stdout.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	return newApp(ctx, c, log, os.Stdin, os.Stdout)
}

func newApp(ctx context.Context, c *config.Config, log logging.Logger, in io.Reader, out io.Writer) (*App, error) {
	if log == nil {
		log = logging.Discard()
	}
	log = log.With("profile", c.Profile)

	profileDir, err := filex.ProfileDir(c.DataDir, c.Profile)
	if err != nil {
		return nil, fmt.Errorf("profile directory: %w", err)
	}

	db, err := client.InitDatabase(ctx, filepath.Join(profileDir, "profile.db"))
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	a := &App{
		config: c,
		log:    log,
		db:     db,
		reader: bufio.NewReader(in),
		out:    out,
	}
	a.closers = append(a.closers, db.Close)

	a.kv = kvstore.NewSQLiteRepository(db)
	a.client = client.NewHTTPClient(c.BackendURL, c.ProjectID, a.kv, c.RequestTimeout)
	a.closers = append(a.closers, a.client.Close)

	bus, closeBus, err := newBus(ctx, c, profileDir, log)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.bus = bus
	a.closers = append(a.closers, closeBus)

	a.nav = newNavigator(out)
	a.store = session.NewStore()
	a.guard = session.NewGuard(a.store, a.client, a.kv, a.bus, a.nav, log,
		session.WithSessionDuration(c.SessionDuration),
		session.WithCheckTimeout(c.RequestTimeout))
	a.authService = services.NewAuthService(a.client, a.guard, a.nav)
	a.feedService = services.NewFeedService(a.client, a.guard)
	a.peopleService = services.NewPeopleService(a.client, a.guard)

	return a, nil
}

// Run initializes the session, starts listening for logouts from other
// instances and blocks in the REPL until the user exits or input ends.
func (a *App) Run(ctx context.Context) error {
	defer a.Close() //nolint:errcheck // best-effort on exit

	fmt.Fprintln(a.out, "Hablemos Verde CLI (type 'help' for commands)")

	if a.guard.Initialize(ctx) {
		fmt.Fprintln(a.out, renderProfile(a.store.User()))
	}

	stop := a.guard.Listen(ctx)
	defer stop()

	runREPL(ctx, a, a.getStatus, a.reader, a.out)
	return nil
}

// Close releases the bus, the backend client and the database, in reverse
// order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) isLoggedIn() bool {
	return a.store.IsAuthenticated()
}

func (a *App) getStatus() string {
	s := a.nav.Route()
	if u := a.store.User(); a.store.IsAuthenticated() {
		s = "@" + u.Username + " " + s
	}
	return fmt.Sprintf("(%s)", s)
}
