package session_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/careergap-web/internal/errors"
	"github.com/jrsteele09/careergap-web/session"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("absent key reads as empty", func(t *testing.T) {
		s := session.NewMemoryRepo().Store("sid")
		v, err := s.Get(ctx, session.KeyAccessToken)
		require.NoError(t, err)
		require.Empty(t, v)
	})

	t.Run("stores are isolated per session id", func(t *testing.T) {
		repo := session.NewMemoryRepo()
		require.NoError(t, repo.Store("a").Set(ctx, session.KeyAccessToken, "A1"))

		v, err := repo.Store("b").Get(ctx, session.KeyAccessToken)
		require.NoError(t, err)
		require.Empty(t, v)
	})

	t.Run("clear with keys removes only those keys", func(t *testing.T) {
		repo := session.NewMemoryRepo()
		s := repo.Store("sid")
		require.NoError(t, session.SaveLogin(ctx, s, session.Tokens{Access: "A1", Refresh: "R1"}, &session.User{Username: "ada"}))

		require.NoError(t, session.ClearTokens(ctx, s))

		require.False(t, session.IsAuthenticated(ctx, s))
		refresh, err := session.RefreshToken(ctx, s)
		require.NoError(t, err)
		require.Empty(t, refresh)
		u, err := session.CurrentUser(ctx, s)
		require.NoError(t, err)
		require.Equal(t, "ada", u.Username)
	})

	t.Run("destroy removes everything", func(t *testing.T) {
		repo := session.NewMemoryRepo()
		s := repo.Store("sid")
		require.NoError(t, session.SaveLogin(ctx, s, session.Tokens{Access: "A1", Refresh: "R1"}, &session.User{Username: "ada"}))
		require.NoError(t, s.Set(ctx, session.KeyLatestResume, `{"id":1}`))

		require.NoError(t, session.Destroy(ctx, s))

		require.Equal(t, 0, repo.Len())
		u, err := session.CurrentUser(ctx, s)
		require.NoError(t, err)
		require.Nil(t, u)
	})

	t.Run("empty session id is rejected", func(t *testing.T) {
		s := session.NewMemoryRepo().Store("")
		_, err := s.Get(ctx, session.KeyAccessToken)
		require.ErrorIs(t, err, errors.ErrSessionIDRequired)
		require.ErrorIs(t, s.Set(ctx, session.KeyAccessToken, "x"), errors.ErrSessionIDRequired)
		require.ErrorIs(t, s.Clear(ctx), errors.ErrSessionIDRequired)
	})

	t.Run("concurrent writers", func(t *testing.T) {
		s := session.NewMemoryRepo().Store("sid")
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = session.SetAccessToken(ctx, s, "A2")
				_, _ = session.AccessToken(ctx, s)
			}()
		}
		wg.Wait()
		v, err := session.AccessToken(ctx, s)
		require.NoError(t, err)
		require.Equal(t, "A2", v)
	})
}

func TestIsAuthenticated_OnlyAccessTokenCounts(t *testing.T) {
	ctx := context.Background()
	s := session.NewMemoryRepo().Store("sid")
	require.NoError(t, s.Set(ctx, session.KeyRefreshToken, "R1"))
	require.NoError(t, session.SetUser(ctx, s, session.User{Username: "ada"}))

	require.False(t, session.IsAuthenticated(ctx, s))

	require.NoError(t, session.SetAccessToken(ctx, s, "A1"))
	require.True(t, session.IsAuthenticated(ctx, s))
}

func TestTake_ConsumesOnce(t *testing.T) {
	ctx := context.Background()
	s := session.NewMemoryRepo().Store("sid")
	require.NoError(t, s.Set(ctx, session.KeyOAuthNext, "/analysis"))

	v, err := session.Take(ctx, s, session.KeyOAuthNext)
	require.NoError(t, err)
	require.Equal(t, "/analysis", v)

	v, err = session.Take(ctx, s, session.KeyOAuthNext)
	require.NoError(t, err)
	require.Empty(t, v)
}

func TestSetBearer(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "http://example.com", nil)
	require.NoError(t, err)

	session.SetBearer(req, "")
	require.Empty(t, req.Header.Get("Authorization"))

	session.SetBearer(req, "A1")
	require.Equal(t, "Bearer A1", req.Header.Get("Authorization"))
}

func TestParseClaims(t *testing.T) {
	exp := time.Now().Add(5 * time.Minute)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 42,
		"exp":     exp.Unix(),
	}).SignedString([]byte("any-key"))
	require.NoError(t, err)

	claims, err := session.ParseClaims(signed)
	require.NoError(t, err)
	require.Equal(t, "42", claims.Subject())
	require.InDelta(t, 5*time.Minute, claims.ExpiresIn(time.Now()), float64(2*time.Second))

	_, err = session.ParseClaims("not-a-jwt")
	require.Error(t, err)
}

func TestUserDisplayName(t *testing.T) {
	require.Equal(t, "Ada Lovelace", session.User{Username: "ada", FirstName: "Ada", LastName: "Lovelace"}.DisplayName())
	require.Equal(t, "ada", session.User{Username: "ada"}.DisplayName())
}

func TestAnonymous_KeepsNothing(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, session.SaveLogin(ctx, session.Anonymous, session.Tokens{Access: "A1", Refresh: "R1"}, nil))
	require.False(t, session.IsAuthenticated(ctx, session.Anonymous))
	refresh, err := session.RefreshToken(ctx, session.Anonymous)
	require.NoError(t, err)
	require.Empty(t, refresh)
}
