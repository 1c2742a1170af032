package session

import (
	"sync"

	"github.com/hablemosverde/verde/internal/client/models"
)

// State is a snapshot of the session.
type State struct {
	User            models.User
	IsAuthenticated bool
	IsLoading       bool
	IsInitialized   bool
}

// Store is the session state shared by every consumer of one client
// instance. It is created by the application root and passed explicitly.
type Store struct {
	mu     sync.RWMutex
	state  State
	subs   map[int]chan State
	nextID int
}

func NewStore() *Store {
	return &Store{
		state: State{User: models.EmptyUser},
		subs:  make(map[int]chan State),
	}
}

func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) User() models.User {
	return s.Snapshot().User
}

func (s *Store) IsAuthenticated() bool {
	return s.Snapshot().IsAuthenticated
}

func (s *Store) IsLoading() bool {
	return s.Snapshot().IsLoading
}

func (s *Store) IsInitialized() bool {
	return s.Snapshot().IsInitialized
}

// Watch delivers the latest state after every change. Slow watchers only
// see the most recent state. Call cancel to stop.
func (s *Store) Watch() (<-chan State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan State, 1)
	id := s.nextID
	s.nextID++
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

// update applies fn and notifies watchers when the state changed.
// An authenticated state always carries a user.
func (s *Store) update(fn func(st *State)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.state
	fn(&s.state)
	if s.state.User.IsEmpty() {
		s.state.IsAuthenticated = false
	}
	if s.state == before {
		return
	}

	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s.state
	}
}

// signOut resets identity to the unauthenticated sentinel.
func signOut(st *State) {
	st.User = models.EmptyUser
	st.IsAuthenticated = false
}
