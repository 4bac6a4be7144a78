// Package testbackend is an in-process stand-in for the CareerGap REST API
// used by package tests. It issues real HS256 JWTs and tracks which of them
// are still accepted.
package testbackend

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/careergap-web/session"
)

const Prefix = "/api/"

var signingKey = []byte("careergap-test-backend")

// Call is a request the backend received.
type Call struct {
	Method        string
	Path          string
	Authorization string
	ContentType   string
	Body          []byte
}

type account struct {
	password string
	user     session.User
}

type Backend struct {
	Server *httptest.Server

	mu            sync.Mutex
	calls         []Call
	access        map[string]int // access token -> user id
	refresh       map[string]int // refresh token -> user id
	accounts      map[string]account
	routes        map[string]http.HandlerFunc
	public        map[string]bool
	unauthorized  int
	refreshFails  bool
	refreshGate   chan struct{}
	nextAccountID int
}

// New starts a backend that is shut down when the test ends.
func New(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{
		access:        make(map[string]int),
		refresh:       make(map[string]int),
		accounts:      make(map[string]account),
		routes:        make(map[string]http.HandlerFunc),
		public:        make(map[string]bool),
		nextAccountID: 1,
	}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serveHTTP))
	t.Cleanup(b.Server.Close)
	return b
}

func (b *Backend) URL() string {
	return b.Server.URL
}

// AddUser registers credentials accepted by auth/login/.
func (b *Backend) AddUser(username, password string) session.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := session.User{ID: b.nextAccountID, Username: username, Email: username + "@example.com", FirstName: strings.ToUpper(username[:1]) + username[1:]}
	b.nextAccountID++
	b.accounts[username] = account{password: password, user: u}
	return u
}

// IssueTokens mints a fresh, accepted access/refresh pair.
func (b *Backend) IssueTokens(userID int) session.Tokens {
	t := session.Tokens{
		Access:  mint(userID, "access", 5*time.Minute),
		Refresh: mint(userID, "refresh", 24*time.Hour),
	}
	b.mu.Lock()
	b.access[t.Access] = userID
	b.refresh[t.Refresh] = userID
	b.mu.Unlock()
	return t
}

// AcceptAccess makes an arbitrary access token valid, e.g. "A1".
func (b *Backend) AcceptAccess(token string, userID int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.access[token] = userID
}

// AcceptRefresh makes an arbitrary refresh token valid, e.g. "R1".
func (b *Backend) AcceptRefresh(token string, userID int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refresh[token] = userID
}

// Expire stops accepting an access token.
func (b *Backend) Expire(access string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.access, access)
}

// FailRefresh makes token/refresh/ reject every refresh token.
func (b *Backend) FailRefresh() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshFails = true
}

// HoldRefresh blocks token/refresh/ until the returned func is called.
func (b *Backend) HoldRefresh() (release func()) {
	gate := make(chan struct{})
	b.mu.Lock()
	b.refreshGate = gate
	b.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

// Handle registers an authenticated route, e.g. "GET resumes/".
func (b *Backend) Handle(pattern string, h http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[pattern] = h
}

// HandlePublic registers a route that needs no bearer token.
func (b *Backend) HandlePublic(pattern string, h http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[pattern] = h
	b.public[pattern] = true
}

// Calls returns the received requests for a path relative to the API prefix.
// An empty path returns every call.
func (b *Backend) Calls(path string) []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Call
	for _, c := range b.calls {
		if path == "" || c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

// Unauthorized is the number of 401 responses sent so far.
func (b *Backend) Unauthorized() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.unauthorized
}

func (b *Backend) serveHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	path := strings.TrimPrefix(r.URL.Path, Prefix)

	b.mu.Lock()
	b.calls = append(b.calls, Call{
		Method:        r.Method,
		Path:          path,
		Authorization: r.Header.Get("Authorization"),
		ContentType:   r.Header.Get("Content-Type"),
		Body:          body,
	})
	b.mu.Unlock()

	switch {
	case r.Method == http.MethodPost && path == "token/refresh/":
		b.handleRefresh(w, body)
		return
	case r.Method == http.MethodPost && path == "auth/login/":
		b.handleLogin(w, body)
		return
	}

	key := r.Method + " " + path
	b.mu.Lock()
	h, ok := b.routes[key]
	public := b.public[key]
	b.mu.Unlock()
	if !ok {
		WriteJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}

	if !public && !b.authorised(r) {
		b.mu.Lock()
		b.unauthorized++
		b.mu.Unlock()
		WriteJSON(w, http.StatusUnauthorized, map[string]any{
			"detail": "Given token not valid for any token type",
			"code":   "token_not_valid",
		})
		return
	}

	r.Body = io.NopCloser(bytes.NewReader(body))
	h(w, r)
}

func (b *Backend) authorised(r *http.Request) bool {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok = b.access[token]
	return ok
}

func (b *Backend) handleRefresh(w http.ResponseWriter, body []byte) {
	b.mu.Lock()
	gate := b.refreshGate
	b.mu.Unlock()
	if gate != nil {
		<-gate
	}

	var in struct {
		Refresh string `json:"refresh"`
	}
	_ = json.Unmarshal(body, &in)

	b.mu.Lock()
	userID, ok := b.refresh[in.Refresh]
	if b.refreshFails {
		ok = false
	}
	var access string
	if ok {
		access = mint(userID, "access", 5*time.Minute)
		b.access[access] = userID
	}
	b.mu.Unlock()

	if !ok {
		WriteJSON(w, http.StatusUnauthorized, map[string]string{
			"detail": "Token is invalid or expired",
			"code":   "token_not_valid",
		})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"access": access})
}

func (b *Backend) handleLogin(w http.ResponseWriter, body []byte) {
	var in struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	_ = json.Unmarshal(body, &in)

	b.mu.Lock()
	acc, ok := b.accounts[in.Username]
	b.mu.Unlock()
	if !ok || acc.password != in.Password {
		WriteJSON(w, http.StatusBadRequest, map[string]any{
			"errors":        map[string][]string{"non_field_errors": {"Invalid credentials"}},
			"data_received": map[string]string{"username": in.Username},
		})
		return
	}

	tokens := b.IssueTokens(acc.user.ID)
	WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"user":    acc.user,
		"tokens":  tokens,
	})
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func mint(userID int, tokenType string, ttl time.Duration) string {
	now := time.Now()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"token_type": tokenType,
		"user_id":    userID,
		"jti":        uuid.NewString(),
		"iat":        now.Unix(),
		"exp":        now.Add(ttl).Unix(),
	}).SignedString(signingKey)
	if err != nil {
		panic(err)
	}
	return signed
}
