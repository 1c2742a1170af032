package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hablemosverde/verde/internal/backendtest"
	"github.com/hablemosverde/verde/internal/client/config"
	"github.com/hablemosverde/verde/internal/client/models"
	"github.com/hablemosverde/verde/internal/common"
)

// syncBuffer is written by the signal listener while the test reads it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

var ana = models.NewUser{Name: "Ana", Username: "ana", Email: "ana@example.org", Password: "password1"}

func testConfig(srv *backendtest.Server, dataDir, transport string) *config.Config {
	return &config.Config{
		BackendURL:      srv.URL,
		ProjectID:       "verde",
		DataDir:         dataDir,
		Profile:         "test",
		SessionDuration: 20 * time.Minute,
		SignalTransport: transport,
		RequestTimeout:  2 * time.Second,
	}
}

func newTestApp(t *testing.T, cfg *config.Config, input string) (*App, *syncBuffer) {
	t.Helper()
	stubTerminal(t, false, nil)

	out := &syncBuffer{}
	app, err := newApp(context.Background(), cfg, nil, strings.NewReader(input), out)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app, out
}

func newBackend(t *testing.T) *backendtest.Server {
	t.Helper()
	srv := backendtest.New()
	t.Cleanup(srv.Close)
	return srv
}

func TestRun_FreshProfile_NoBackendCalls(t *testing.T) {
	srv := newBackend(t)
	app, out := newTestApp(t, testConfig(srv, t.TempDir(), config.TransportMemory), "whoami\nhome\nexit\n")

	require.NoError(t, app.Run(context.Background()))

	assert.Zero(t, srv.TotalCalls())
	assert.Contains(t, out.String(), "You are signed out.")
	assert.Contains(t, out.String(), "Not signed in.")
	assert.Contains(t, out.String(), "verde (/sign-in)> ")
}

func TestRun_RegisterThenFeed(t *testing.T) {
	srv := newBackend(t)
	input := strings.Join([]string{
		"register", ana.Name, ana.Username, ana.Email, ana.Password,
		"post", "Semillas nativas", "", "Cusco", "semillas, nativas",
		"home",
		"whoami",
		"exit",
	}, "\n") + "\n"
	app, out := newTestApp(t, testConfig(srv, t.TempDir(), config.TransportMemory), input)

	require.NoError(t, app.Run(context.Background()))

	got := out.String()
	assert.Contains(t, got, "@ana")
	assert.Contains(t, got, "Semillas nativas")
	assert.Contains(t, got, "#semillas #nativas")
	assert.Contains(t, got, "verde (@ana /)> ")
	assert.EqualValues(t, 1, srv.Calls("/v1/account/sessions/email"))
}

func TestRun_RegisterValidationErrors(t *testing.T) {
	srv := newBackend(t)
	input := "register\nA\nana v\nnot-an-email\nshort\nexit\n"
	app, out := newTestApp(t, testConfig(srv, t.TempDir(), config.TransportMemory), input)

	require.NoError(t, app.Run(context.Background()))

	got := out.String()
	assert.Contains(t, got, "name: El nombre debe tener al menos 2 caracteres.")
	assert.Contains(t, got, "username: El nombre de usuario no debe contener espacios.")
	assert.Contains(t, got, "email: ")
	assert.Contains(t, got, "password: La contraseña debe tener al menos 8 caracteres.")
	assert.Zero(t, srv.TotalCalls())
}

func TestRun_WrongPassword(t *testing.T) {
	srv := newBackend(t)
	srv.AddAccount(ana)
	app, out := newTestApp(t, testConfig(srv, t.TempDir(), config.TransportMemory), "login\nana@example.org\nwrongpass1\nexit\n")

	require.NoError(t, app.Run(context.Background()))

	assert.Contains(t, out.String(), "Algo ha ido mal.")
	assert.False(t, app.isLoggedIn())
}

func TestRun_SessionSurvivesRestart(t *testing.T) {
	srv := newBackend(t)
	srv.AddAccount(ana)
	dataDir := t.TempDir()

	first, _ := newTestApp(t, testConfig(srv, dataDir, config.TransportMemory), "login\nana@example.org\npassword1\nexit\n")
	require.NoError(t, first.Run(context.Background()))
	require.True(t, first.isLoggedIn())

	second, out := newTestApp(t, testConfig(srv, dataDir, config.TransportMemory), "whoami\nexit\n")
	require.NoError(t, second.Run(context.Background()))

	assert.True(t, second.isLoggedIn())
	assert.NotContains(t, out.String(), "You are signed out.")
	assert.Contains(t, out.String(), "ana@example.org")
}

func TestLogout_PropagatesAcrossInstances(t *testing.T) {
	srv := newBackend(t)
	srv.AddAccount(ana)
	dataDir := t.TempDir()
	ctx := context.Background()

	a, _ := newTestApp(t, testConfig(srv, dataDir, config.TransportFile), "")
	b, outB := newTestApp(t, testConfig(srv, dataDir, config.TransportFile), "")

	_, err := a.authService.SignIn(ctx, models.Credentials{Email: ana.Email, Password: ana.Password})
	require.NoError(t, err)
	require.True(t, b.guard.Initialize(ctx))

	defer a.guard.Listen(ctx)()
	defer b.guard.Listen(ctx)()

	require.NoError(t, a.Logout(ctx))

	require.Eventually(t, func() bool {
		return !b.isLoggedIn() && b.nav.Route() == common.RouteSignIn
	}, 2*time.Second, 10*time.Millisecond)
	assert.True(t, b.store.User().IsEmpty())
	assert.Contains(t, outB.String(), "You are signed out.")
	assert.EqualValues(t, 1, srv.Calls("/v1/account/sessions/current"))
}

func TestCheck_ReportsState(t *testing.T) {
	srv := newBackend(t)
	srv.AddAccount(ana)
	ctx := context.Background()
	app, out := newTestApp(t, testConfig(srv, t.TempDir(), config.TransportMemory), "")

	require.NoError(t, app.Check(ctx))
	assert.Contains(t, out.String(), "Not authenticated.")

	_, err := app.authService.SignIn(ctx, models.Credentials{Email: ana.Email, Password: ana.Password})
	require.NoError(t, err)
	require.NoError(t, app.Check(ctx))
	assert.Contains(t, out.String(), "Session is valid.")

	srv.RevokeAll()
	require.NoError(t, app.Check(ctx))
	assert.False(t, app.isLoggedIn())
}

func TestNewApp_UnknownTransport(t *testing.T) {
	srv := newBackend(t)
	cfg := testConfig(srv, t.TempDir(), "smoke-signals")

	_, err := newApp(context.Background(), cfg, nil, strings.NewReader(""), &bytes.Buffer{})
	require.Error(t, err)
}

func TestNavigator_NoticeOnlyOnTransition(t *testing.T) {
	var out bytes.Buffer
	n := newNavigator(&out)

	n.Navigate(common.RouteSignIn)
	n.Navigate(common.RouteSignIn)
	n.Navigate(common.RouteHome)

	assert.Equal(t, 1, strings.Count(out.String(), "You are signed out."))
	assert.Equal(t, common.RouteHome, n.Route())
}

func TestRenderProfile(t *testing.T) {
	card := renderProfile(models.User{Name: "Ana", Username: "ana", Email: "ana@example.org", Bio: "huertos urbanos"})

	assert.Contains(t, card, "Ana")
	assert.Contains(t, card, "@ana")
	assert.Contains(t, card, "huertos urbanos")
}

var beto = models.NewUser{Name: "Beto", Username: "beto", Email: "beto@example.org", Password: "password2"}

func TestRun_ShowEditDeletePost(t *testing.T) {
	srv := newBackend(t)
	acc := srv.AddAccount(ana)
	post := srv.AddPost(models.Post{CreatorID: acc.ID, Caption: "Semillas nativas", Location: "Cusco", Tags: []string{"semillas"}})
	srv.AddPost(models.Post{CreatorID: acc.ID, Caption: "Compost casero", Location: "Lima"})
	input := strings.Join([]string{
		"login", ana.Email, ana.Password,
		"show " + post.ID,
		"edit " + post.ID, "Semillas de quinua", "", "", "quinua, semillas",
		"delete " + post.ID, "n",
		"delete " + post.ID, "s",
		"show " + post.ID,
		"exit",
	}, "\n") + "\n"
	app, out := newTestApp(t, testConfig(srv, t.TempDir(), config.TransportMemory), input)

	require.NoError(t, app.Run(context.Background()))

	got := out.String()
	assert.Contains(t, got, "Más publicaciones relacionadas")
	assert.Contains(t, got, "Compost casero")
	assert.Contains(t, got, "Location [Cusco]")
	assert.Contains(t, got, "Semillas de quinua")
	assert.Contains(t, got, "#quinua #semillas")
	assert.Contains(t, got, "Cancelado.")
	assert.Contains(t, got, "La publicación ha sido eliminada.")
	assert.Contains(t, got, "No se pudo encontrar la publicación.")
}

func TestRun_EditOthersPost_Refused(t *testing.T) {
	srv := newBackend(t)
	a := srv.AddAccount(ana)
	srv.AddAccount(beto)
	post := srv.AddPost(models.Post{CreatorID: a.ID, Caption: "Semillas nativas", Location: "Cusco"})
	input := strings.Join([]string{
		"login", beto.Email, beto.Password,
		"edit " + post.ID,
		"delete " + post.ID, "s",
		"exit",
	}, "\n") + "\n"
	app, out := newTestApp(t, testConfig(srv, t.TempDir(), config.TransportMemory), input)

	require.NoError(t, app.Run(context.Background()))

	assert.Equal(t, 2, strings.Count(out.String(), "Solo el autor puede modificar esta publicación."))
	assert.NotContains(t, out.String(), "Location [")
}

func TestRun_CreatorsFollowUnfollow(t *testing.T) {
	srv := newBackend(t)
	srv.AddAccount(ana)
	b := srv.AddAccount(beto)
	input := strings.Join([]string{
		"login", ana.Email, ana.Password,
		"creators",
		"follow " + b.ID,
		"followers " + b.ID,
		"creators",
		"unfollow " + b.ID,
		"followers " + b.ID,
		"exit",
	}, "\n") + "\n"
	app, out := newTestApp(t, testConfig(srv, t.TempDir(), config.TransportMemory), input)

	require.NoError(t, app.Run(context.Background()))

	got := out.String()
	assert.Contains(t, got, "Mejores Creadores")
	assert.Contains(t, got, "@beto")
	assert.Contains(t, got, "[Seguir]")
	assert.Contains(t, got, "Siguiendo.")
	assert.Contains(t, got, "1 seguidores")
	assert.Contains(t, got, "[Dejar de seguir]")
	assert.Contains(t, got, "Has dejado de seguir.")
	assert.Contains(t, got, "0 seguidores")
}

func TestRun_EditProfile(t *testing.T) {
	srv := newBackend(t)
	srv.AddAccount(ana)
	input := strings.Join([]string{
		"login", ana.Email, ana.Password,
		"profile", "", "anita", "", "huertos urbanos",
		"profile", "", "an ita", "", "",
		"exit",
	}, "\n") + "\n"
	app, out := newTestApp(t, testConfig(srv, t.TempDir(), config.TransportMemory), input)

	require.NoError(t, app.Run(context.Background()))

	got := out.String()
	assert.Contains(t, got, "Username [ana]")
	assert.Contains(t, got, "huertos urbanos")
	assert.Contains(t, got, "verde (@anita /)> ")
	assert.Contains(t, got, "username: El nombre de usuario no debe contener espacios.")
	assert.Equal(t, "anita", app.store.User().Username)
}
