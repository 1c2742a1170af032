// Package backendtest runs an in-memory stand-in for the hosted backend's
// account, session, user, post and follow endpoints. Client tests point an HTTPClient at
// it instead of the real service.
package backendtest

import (
	"crypto/rand"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/hablemosverde/verde/internal/client/models"
	"github.com/hablemosverde/verde/internal/common"
	"github.com/hablemosverde/verde/internal/cryptox"
)

type account struct {
	models.Account
	salt     []byte
	verifier []byte
}

// Server is the fake backend. The zero value is not usable; call New.
type Server struct {
	*httptest.Server

	secret     []byte
	sessionTTL time.Duration

	mu       sync.Mutex
	byEmail  map[string]*account
	byID     map[string]*account
	accounts []*account
	revoked  map[string]struct{}
	posts    []models.Post
	follows  []models.Follow
	failWith int

	calls sync.Map // path -> *atomic.Int64
}

// New starts a fake backend. Close it when done.
func New() *Server {
	s := &Server{
		secret:     make([]byte, 32),
		sessionTTL: 24 * time.Hour,
		byEmail:    make(map[string]*account),
		byID:       make(map[string]*account),
		revoked:    make(map[string]struct{}),
	}
	_, _ = rand.Read(s.secret)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/account", s.handleCreateAccount)
	mux.HandleFunc("GET /v1/account", s.handleGetAccount)
	mux.HandleFunc("POST /v1/account/sessions/email", s.handleCreateSession)
	mux.HandleFunc("DELETE /v1/account/sessions/current", s.handleDeleteSession)
	mux.HandleFunc("GET /v1/posts", s.handleListPosts)
	mux.HandleFunc("POST /v1/posts", s.handleCreatePost)
	mux.HandleFunc("GET /v1/posts/{id}", s.handleGetPost)
	mux.HandleFunc("PATCH /v1/posts/{id}", s.handleUpdatePost)
	mux.HandleFunc("DELETE /v1/posts/{id}", s.handleDeletePost)
	mux.HandleFunc("GET /v1/users", s.handleListUsers)
	mux.HandleFunc("PATCH /v1/users/{id}", s.handleUpdateUser)
	mux.HandleFunc("GET /v1/follows", s.handleListFollows)
	mux.HandleFunc("POST /v1/follows", s.handleCreateFollow)
	mux.HandleFunc("DELETE /v1/follows/{id}", s.handleDeleteFollow)

	s.Server = httptest.NewServer(s.middleware(mux))
	return s
}

// Calls returns how many requests hit path (without query).
func (s *Server) Calls(path string) int64 {
	v, ok := s.calls.Load(path)
	if !ok {
		return 0
	}
	return v.(*atomic.Int64).Load()
}

// TotalCalls returns the number of requests served.
func (s *Server) TotalCalls() int64 {
	var total int64
	s.calls.Range(func(_, v any) bool {
		total += v.(*atomic.Int64).Load()
		return true
	})
	return total
}

// FailWith makes every request answer with status code; 0 restores
// normal behaviour.
func (s *Server) FailWith(code int) {
	s.mu.Lock()
	s.failWith = code
	s.mu.Unlock()
}

// AddAccount registers an account directly and returns it.
func (s *Server) AddAccount(u models.NewUser) models.Account {
	acc, _ := s.createAccount(u)
	return acc.Account
}

// AddPost appends a post to the feed and returns it with its id set.
func (s *Server) AddPost(p models.Post) models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	s.posts = append(s.posts, p)
	return p
}

// RevokeAll invalidates every session issued so far.
func (s *Server) RevokeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secret = make([]byte, 32)
	_, _ = rand.Read(s.secret)
}

func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v, _ := s.calls.LoadOrStore(r.URL.Path, new(atomic.Int64))
		v.(*atomic.Int64).Add(1)

		s.mu.Lock()
		code := s.failWith
		s.mu.Unlock()
		if code != 0 {
			writeError(w, code, http.StatusText(code))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) createAccount(u models.NewUser) (*account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(u.Email)
	if _, exists := s.byEmail[email]; exists {
		return nil, false
	}
	salt, verifier, err := cryptox.HashPassword([]byte(u.Password))
	if err != nil {
		return nil, false
	}
	acc := &account{
		Account: models.Account{
			ID:       uuid.NewString(),
			Name:     u.Name,
			Username: u.Username,
			Email:    u.Email,
			ImageURL: "https://avatars.example.org/" + u.Username + ".png",
		},
		salt:     salt,
		verifier: verifier,
	}
	s.byEmail[email] = acc
	s.byID[acc.ID] = acc
	s.accounts = append(s.accounts, acc)
	return acc, true
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var u models.NewUser
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil || u.Email == "" || u.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid account payload")
		return
	}
	acc, ok := s.createAccount(u)
	if !ok {
		writeError(w, http.StatusConflict, "a user with the same email already exists")
		return
	}
	writeJSON(w, http.StatusCreated, acc.Account)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid credentials payload")
		return
	}

	s.mu.Lock()
	acc, ok := s.byEmail[strings.ToLower(creds.Email)]
	secret := s.secret
	s.mu.Unlock()

	if !ok || !cryptox.VerifyPassword([]byte(creds.Password), acc.salt, acc.verifier) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	sid := uuid.NewString()
	token, err := generateToken(acc.ID, sid, secret, s.sessionTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"$id":    sid,
		"userId": acc.ID,
		"secret": token,
	})
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	acc, _, ok := s.authenticate(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "user (role: guests) missing scope (account)")
		return
	}
	writeJSON(w, http.StatusOK, acc.Account)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	_, sid, ok := s.authenticate(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "no active session")
		return
	}
	s.mu.Lock()
	s.revoked[sid] = struct{}{}
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := s.authenticate(r); !ok {
		writeError(w, http.StatusUnauthorized, "user (role: guests) missing scope (documents.read)")
		return
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	creator := r.URL.Query().Get("creator")

	s.mu.Lock()
	docs := make([]models.Post, 0, limit)
	total := 0
	for i := len(s.posts) - 1; i >= 0; i-- {
		if creator != "" && s.posts[i].CreatorID != creator {
			continue
		}
		total++
		if len(docs) < limit {
			docs = append(docs, s.posts[i])
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"total": total, "documents": docs})
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	acc, _, ok := s.authenticate(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "user (role: guests) missing scope (documents.write)")
		return
	}

	var in struct {
		Caption  string   `json:"caption"`
		Location string   `json:"location"`
		Tags     []string `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Caption == "" {
		writeError(w, http.StatusBadRequest, "invalid document payload")
		return
	}

	p := models.Post{
		ID:        uuid.NewString(),
		CreatorID: acc.ID,
		Caption:   in.Caption,
		Location:  in.Location,
		Tags:      in.Tags,
		CreatedAt: time.Now().UTC(),
	}
	s.AddPost(p)
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) postIndex(id string) int {
	for i, p := range s.posts {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := s.authenticate(r); !ok {
		writeError(w, http.StatusUnauthorized, "user (role: guests) missing scope (documents.read)")
		return
	}

	s.mu.Lock()
	i := s.postIndex(r.PathValue("id"))
	var p models.Post
	if i >= 0 {
		p = s.posts[i]
	}
	s.mu.Unlock()

	if i < 0 {
		writeError(w, http.StatusNotFound, "document with the requested ID could not be found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	acc, _, ok := s.authenticate(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "user (role: guests) missing scope (documents.write)")
		return
	}

	var in struct {
		Caption  string   `json:"caption"`
		Location string   `json:"location"`
		Tags     []string `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Caption == "" {
		writeError(w, http.StatusBadRequest, "invalid document payload")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.postIndex(r.PathValue("id"))
	switch {
	case i < 0:
		writeError(w, http.StatusNotFound, "document with the requested ID could not be found")
	case s.posts[i].CreatorID != acc.ID:
		writeError(w, http.StatusUnauthorized, "the current user is not authorized to perform the requested action")
	default:
		s.posts[i].Caption = in.Caption
		s.posts[i].Location = in.Location
		s.posts[i].Tags = in.Tags
		writeJSON(w, http.StatusOK, s.posts[i])
	}
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	acc, _, ok := s.authenticate(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "user (role: guests) missing scope (documents.write)")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.postIndex(r.PathValue("id"))
	switch {
	case i < 0:
		writeError(w, http.StatusNotFound, "document with the requested ID could not be found")
	case s.posts[i].CreatorID != acc.ID:
		writeError(w, http.StatusUnauthorized, "the current user is not authorized to perform the requested action")
	default:
		s.posts = append(s.posts[:i], s.posts[i+1:]...)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := s.authenticate(r); !ok {
		writeError(w, http.StatusUnauthorized, "user (role: guests) missing scope (documents.read)")
		return
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 10
	}

	s.mu.Lock()
	docs := make([]models.Account, 0, limit)
	for i := len(s.accounts) - 1; i >= 0 && len(docs) < limit; i-- {
		docs = append(docs, s.accounts[i].Account)
	}
	total := len(s.accounts)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"total": total, "documents": docs})
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	acc, _, ok := s.authenticate(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "user (role: guests) missing scope (documents.write)")
		return
	}
	if acc.ID != r.PathValue("id") {
		writeError(w, http.StatusUnauthorized, "the current user is not authorized to perform the requested action")
		return
	}

	var in models.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Email == "" {
		writeError(w, http.StatusBadRequest, "invalid document payload")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	newEmail := strings.ToLower(in.Email)
	if other, taken := s.byEmail[newEmail]; taken && other.ID != acc.ID {
		writeError(w, http.StatusConflict, "a user with the same email already exists")
		return
	}

	// Accounts handed out by authenticate are read without the lock, so
	// replace the record instead of mutating it.
	updated := *acc
	updated.Name = in.Name
	updated.Username = in.Username
	updated.Email = in.Email
	updated.Bio = in.Bio

	delete(s.byEmail, strings.ToLower(acc.Email))
	s.byEmail[newEmail] = &updated
	s.byID[acc.ID] = &updated
	for i, a := range s.accounts {
		if a.ID == acc.ID {
			s.accounts[i] = &updated
		}
	}
	writeJSON(w, http.StatusOK, updated.Account)
}

func (s *Server) handleListFollows(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := s.authenticate(r); !ok {
		writeError(w, http.StatusUnauthorized, "user (role: guests) missing scope (documents.read)")
		return
	}
	followed := r.URL.Query().Get("followed")

	s.mu.Lock()
	docs := make([]models.Follow, 0)
	for _, f := range s.follows {
		if followed == "" || f.FollowedID == followed {
			docs = append(docs, f)
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"total": len(docs), "documents": docs})
}

func (s *Server) handleCreateFollow(w http.ResponseWriter, r *http.Request) {
	acc, _, ok := s.authenticate(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "user (role: guests) missing scope (documents.write)")
		return
	}

	var in struct {
		Follower string `json:"follower"`
		Followed string `json:"followed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Followed == "" {
		writeError(w, http.StatusBadRequest, "invalid document payload")
		return
	}
	if in.Follower != acc.ID {
		writeError(w, http.StatusUnauthorized, "the current user is not authorized to perform the requested action")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[in.Followed]; !exists {
		writeError(w, http.StatusNotFound, "user with the requested ID could not be found")
		return
	}
	for _, f := range s.follows {
		if f.FollowerID == in.Follower && f.FollowedID == in.Followed {
			writeError(w, http.StatusConflict, "document with the requested ID already exists")
			return
		}
	}
	f := models.Follow{ID: uuid.NewString(), FollowerID: in.Follower, FollowedID: in.Followed}
	s.follows = append(s.follows, f)
	writeJSON(w, http.StatusCreated, f)
}

func (s *Server) handleDeleteFollow(w http.ResponseWriter, r *http.Request) {
	acc, _, ok := s.authenticate(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "user (role: guests) missing scope (documents.write)")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, f := range s.follows {
		if f.ID != r.PathValue("id") {
			continue
		}
		if f.FollowerID != acc.ID {
			writeError(w, http.StatusUnauthorized, "the current user is not authorized to perform the requested action")
			return
		}
		s.follows = append(s.follows[:i], s.follows[i+1:]...)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeError(w, http.StatusNotFound, "document with the requested ID could not be found")
}

// authenticate resolves the session secret carried in the fallback cookie
// header.
func (s *Server) authenticate(r *http.Request) (*account, string, bool) {
	var cookies map[string]string
	if err := json.Unmarshal([]byte(r.Header.Get(common.FallbackCookiesHeader)), &cookies); err != nil {
		return nil, "", false
	}
	token := cookies[common.SessionCookieName]
	if token == "" {
		return nil, "", false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := parseToken(token, s.secret)
	if err != nil {
		return nil, "", false
	}
	if _, gone := s.revoked[c.SessionID]; gone {
		return nil, "", false
	}
	acc, ok := s.byID[c.UserID]
	if !ok {
		return nil, "", false
	}
	return acc, c.SessionID, true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"message": msg, "code": code})
}
