package services

import (
	"context"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hablemosverde/verde/internal/backendtest"
	"github.com/hablemosverde/verde/internal/client/client"
	"github.com/hablemosverde/verde/internal/client/models"
	"github.com/hablemosverde/verde/internal/client/repositories/kvstore"
	"github.com/hablemosverde/verde/internal/client/session"
	"github.com/hablemosverde/verde/internal/common"
)

// ---- helpers ----

type routes struct {
	mu   sync.Mutex
	list []string
}

func (r *routes) Navigate(route string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.list = append(r.list, route)
}

func (r *routes) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.list) == 0 {
		return ""
	}
	return r.list[len(r.list)-1]
}

type env struct {
	srv    *backendtest.Server
	kv     kvstore.Repository
	client client.Client
	guard  *session.Guard
	nav    *routes
}

func setup(t *testing.T) *env {
	t.Helper()
	srv := backendtest.New()
	t.Cleanup(srv.Close)

	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "profile.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	kv := kvstore.NewSQLiteRepository(db)

	e := &env{srv: srv, kv: kv, nav: &routes{}}
	e.client = client.NewHTTPClient(srv.URL, "verde", kv, time.Second)
	e.guard = session.NewGuard(session.NewStore(), e.client, kv, nil, e.nav, nil)
	return e
}

// noSession reports no current user even after a successful sign-in.
type noSession struct {
	client.Client
}

func (noSession) GetCurrentUser(context.Context) (*models.Account, error) { return nil, nil }

var ana = models.NewUser{Name: "Ana", Username: "ana", Email: "ana@example.org", Password: "password1"}

// ---- tests ----

func TestSignUp_Success(t *testing.T) {
	e := setup(t)
	svc := NewAuthService(e.client, e.guard, e.nav)

	u, err := svc.SignUp(context.Background(), ana)
	require.NoError(t, err)
	assert.Equal(t, "ana", u.Username)
	assert.NotEmpty(t, u.ID)
	assert.True(t, e.guard.Store().IsAuthenticated())
	assert.Equal(t, common.RouteHome, e.nav.last())

	_, set, err := kvstore.GetMillis(context.Background(), e.kv, common.KeyLoginTimestamp)
	require.NoError(t, err)
	assert.True(t, set)
}

func TestSignUp_InvalidInput_NoRequest(t *testing.T) {
	e := setup(t)
	svc := NewAuthService(e.client, e.guard, e.nav)

	_, err := svc.SignUp(context.Background(), models.NewUser{Name: "A", Email: "nope"})
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Zero(t, e.srv.TotalCalls())
}

func TestSignUp_DuplicateAccount(t *testing.T) {
	e := setup(t)
	e.srv.AddAccount(ana)
	svc := NewAuthService(e.client, e.guard, e.nav)

	_, err := svc.SignUp(context.Background(), ana)
	require.ErrorIs(t, err, common.ErrSignUpFailed)
	assert.True(t, client.IsStatus(err, http.StatusConflict))
	assert.False(t, e.guard.Store().IsAuthenticated())
}

func TestSignUp_SessionNotEstablished(t *testing.T) {
	e := setup(t)
	c := noSession{Client: e.client}
	guard := session.NewGuard(session.NewStore(), c, e.kv, nil, e.nav, nil)
	svc := NewAuthService(c, guard, e.nav)

	_, err := svc.SignUp(context.Background(), ana)
	require.ErrorIs(t, err, common.ErrSessionNotEstablished)
	assert.False(t, guard.Store().IsAuthenticated())
	assert.Empty(t, e.nav.last())
}

func TestSignIn_WrongPassword(t *testing.T) {
	e := setup(t)
	e.srv.AddAccount(ana)
	svc := NewAuthService(e.client, e.guard, e.nav)

	_, err := svc.SignIn(context.Background(), models.Credentials{Email: ana.Email, Password: "password2"})
	require.ErrorIs(t, err, common.ErrSignInFailed)
	require.ErrorIs(t, err, client.ErrUnauthorized)
	assert.False(t, e.guard.Store().IsAuthenticated())
}

func TestSignIn_ThenSignOut(t *testing.T) {
	e := setup(t)
	e.srv.AddAccount(ana)
	svc := NewAuthService(e.client, e.guard, e.nav)
	ctx := context.Background()

	u, err := svc.SignIn(ctx, models.Credentials{Email: ana.Email, Password: ana.Password})
	require.NoError(t, err)
	assert.Equal(t, ana.Email, u.Email)

	svc.SignOut(ctx)
	assert.False(t, e.guard.Store().IsAuthenticated())
	assert.Equal(t, common.RouteSignIn, e.nav.last())
	assert.EqualValues(t, 1, e.srv.Calls("/v1/account/sessions/current"))

	acc, err := e.client.GetCurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, acc)
}
