// Package session holds the per-browser token state of the web client.
//
// Every consumer (API client, route guard, login and logout handlers)
// depends on the Store interface rather than on a concrete backend.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Key names a value held in a Store. One fixed key set is used everywhere.
type Key string

const (
	KeyAccessToken  Key = "access_token"
	KeyRefreshToken Key = "refresh_token"
	KeyUser         Key = "user"
	KeyLatestResume Key = "latest_resume"
	// KeyOAuthNext carries the post-login destination across the Google redirect
	KeyOAuthNext Key = "oauth_next"
)

// Store is a single browser's key/value state.
type Store interface {
	// Get returns "" and a nil error when the key is absent.
	Get(ctx context.Context, key Key) (string, error)
	Set(ctx context.Context, key Key, value string) error
	// Clear removes the given keys, or every key when none are given.
	Clear(ctx context.Context, keys ...Key) error
}

// Repo hands out the Store for a browser session ID.
type Repo interface {
	Store(sessionID string) Store
}

// User is the profile snapshot returned by the backend on login.
type User struct {
	ID         int    `json:"id,omitempty"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	DateJoined string `json:"date_joined,omitempty"`
}

func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

func AccessToken(ctx context.Context, s Store) (string, error) {
	return s.Get(ctx, KeyAccessToken)
}

func RefreshToken(ctx context.Context, s Store) (string, error) {
	return s.Get(ctx, KeyRefreshToken)
}

// IsAuthenticated reports whether an access token is present. No other key
// is consulted and the token is not validated.
func IsAuthenticated(ctx context.Context, s Store) bool {
	access, err := AccessToken(ctx, s)
	return err == nil && access != ""
}

// SaveLogin records the result of a password or OAuth login.
func SaveLogin(ctx context.Context, s Store, tokens Tokens, user *User) error {
	if err := s.Set(ctx, KeyAccessToken, tokens.Access); err != nil {
		return fmt.Errorf("[session SaveLogin] access token: %w", err)
	}
	if err := s.Set(ctx, KeyRefreshToken, tokens.Refresh); err != nil {
		return fmt.Errorf("[session SaveLogin] refresh token: %w", err)
	}
	if user == nil {
		return nil
	}
	return SetUser(ctx, s, *user)
}

// SetAccessToken replaces only the access token, leaving the refresh token as is.
func SetAccessToken(ctx context.Context, s Store, access string) error {
	return s.Set(ctx, KeyAccessToken, access)
}

func ClearTokens(ctx context.Context, s Store) error {
	return s.Clear(ctx, KeyAccessToken, KeyRefreshToken)
}

// Destroy removes everything held for the browser.
func Destroy(ctx context.Context, s Store) error {
	return s.Clear(ctx)
}

func SetUser(ctx context.Context, s Store, user User) error {
	b, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("[session SetUser] marshal: %w", err)
	}
	return s.Set(ctx, KeyUser, string(b))
}

// CurrentUser returns nil when no user has been stored.
func CurrentUser(ctx context.Context, s Store) (*User, error) {
	raw, err := s.Get(ctx, KeyUser)
	if err != nil || raw == "" {
		return nil, err
	}
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("[session CurrentUser] unmarshal: %w", err)
	}
	return &u, nil
}

// Take reads a value and removes it so it is consumed at most once.
func Take(ctx context.Context, s Store, key Key) (string, error) {
	v, err := s.Get(ctx, key)
	if err != nil || v == "" {
		return v, err
	}
	return v, s.Clear(ctx, key)
}

// Anonymous is a Store that is always empty and keeps nothing. Requests made
// with it carry no bearer token.
var Anonymous Store = anonymousStore{}

type anonymousStore struct{}

func (anonymousStore) Get(context.Context, Key) (string, error) { return "", nil }
func (anonymousStore) Set(context.Context, Key, string) error    { return nil }
func (anonymousStore) Clear(context.Context, ...Key) error       { return nil }
