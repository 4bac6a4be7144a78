package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jrsteele09/careergap-web/apiclient"
	apperrors "github.com/jrsteele09/careergap-web/internal/errors"
	"github.com/jrsteele09/careergap-web/guard"
	"github.com/jrsteele09/careergap-web/session"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeySessionID stores the browser session ID
	ContextKeySessionID ContextKey = "session_id"
)

// SessionMiddleware reads the session cookie, issuing a new session ID when
// the browser has none or presents a malformed one.
func (s *Server) SessionMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sessionID string
		if cookie, err := r.Cookie(s.config.GetSessionCookieName()); err == nil {
			if id, err := uuid.Parse(cookie.Value); err == nil {
				sessionID = id.String()
			}
		}
		if sessionID == "" {
			sessionID = uuid.NewString()
		}
		// Refresh the cookie so its lifetime slides with the store's
		s.setSessionCookie(w, r, sessionID, s.config.GetSessionTTL())

		ctx := context.WithValue(r.Context(), ContextKeySessionID, sessionID)
		next(w, r.WithContext(ctx))
	}
}

func sessionIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ContextKeySessionID).(string)
	return id
}

// store is the session store of the browser making the request
func (s *Server) store(r *http.Request) session.Store {
	return s.sessions.Store(sessionIDFrom(r.Context()))
}

// RequireSession lets the request through only when the browser session
// holds an access token. Otherwise the browser is sent to the login page,
// which returns it to the requested page afterwards.
func (s *Server) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		access, err := session.AccessToken(r.Context(), s.store(r))
		if err != nil {
			log.Err(err).Str("path", r.URL.Path).Msg("Failed to read session")
			http.Error(w, "Session unavailable", http.StatusServiceUnavailable)
			return
		}

		decision := guard.Evaluate(r.URL.Path, r.URL.RawQuery, access)
		if decision.Outcome == guard.Allow {
			next(w, r)
			return
		}

		// A form post cannot be replayed after login, so it is not kept as next
		location := decision.Location
		if r.Method != http.MethodGet {
			location = guard.LoginPath
		}
		redirectSuccess(w, r, location)
	}
}

// sessionLost handles an API failure that ended the browser's login. It
// reports false, writing nothing, for any other error.
func (s *Server) sessionLost(w http.ResponseWriter, r *http.Request, err error) bool {
	switch {
	case errors.Is(err, apiclient.ErrSessionExpired):
		// tokens were already cleared by the client
	case errors.Is(err, apperrors.ErrUnauthorized):
		// Without a stored token the 401 is the page's own answer, e.g. bad credentials
		if !session.IsAuthenticated(r.Context(), s.store(r)) {
			return false
		}
		// A 401 with no refresh token to recover it
		if clearErr := session.ClearTokens(r.Context(), s.store(r)); clearErr != nil {
			log.Err(clearErr).Msg("Failed to clear tokens")
		}
	default:
		return false
	}

	location := guard.LoginPath
	if r.Method == http.MethodGet {
		location = guard.LoginURL(r.URL.RequestURI())
	}
	redirectSuccess(w, r, location)
	return true
}
