package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hablemosverde/verde/internal/client/models"
)

func TestStore_NewIsUnauthenticated(t *testing.T) {
	s := NewStore()

	st := s.Snapshot()
	assert.True(t, st.User.IsEmpty())
	assert.False(t, st.IsAuthenticated)
	assert.False(t, st.IsLoading)
	assert.False(t, st.IsInitialized)
}

func TestStore_AuthenticatedRequiresUser(t *testing.T) {
	s := NewStore()

	s.update(func(st *State) { st.IsAuthenticated = true })
	assert.False(t, s.IsAuthenticated())

	s.update(func(st *State) {
		st.User = models.User{ID: "u1", Username: "ana"}
		st.IsAuthenticated = true
	})
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "ana", s.User().Username)

	s.update(signOut)
	assert.False(t, s.IsAuthenticated())
	assert.True(t, s.User().IsEmpty())
}

func TestStore_WatchReceivesLatest(t *testing.T) {
	s := NewStore()
	ch, cancel := s.Watch()
	defer cancel()

	s.update(func(st *State) { st.IsLoading = true })
	s.update(func(st *State) { st.IsLoading = false; st.IsInitialized = true })

	select {
	case st := <-ch:
		assert.False(t, st.IsLoading)
		assert.True(t, st.IsInitialized)
	default:
		t.Fatal("no state delivered")
	}
}

func TestStore_WatchSkipsNoop(t *testing.T) {
	s := NewStore()
	ch, cancel := s.Watch()
	defer cancel()

	s.update(func(st *State) {})

	select {
	case st := <-ch:
		t.Fatalf("unexpected notification: %+v", st)
	default:
	}
}

func TestStore_WatchCancelClosesChannel(t *testing.T) {
	s := NewStore()
	ch, cancel := s.Watch()
	cancel()
	cancel()

	_, ok := <-ch
	require.False(t, ok)

	s.update(func(st *State) { st.IsLoading = true })
}
