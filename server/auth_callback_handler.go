package server

import (
	"net/http"
	"net/url"

	"github.com/jrsteele09/careergap-web/guard"
	"github.com/jrsteele09/careergap-web/session"
	"github.com/rs/zerolog/log"
)

// GoogleLoginHandler starts Google sign-in. The backend runs the OAuth
// exchange and sends the browser back to the callback route with tokens.
func (s *Server) GoogleLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := s.store(r)
		if next := guard.SafeNext(r.URL.Query().Get(guard.NextParam), ""); next != "" {
			if err := store.Set(r.Context(), session.KeyOAuthNext, next); err != nil {
				log.Err(err).Msg("Google login: failed to remember next")
			}
		}
		http.Redirect(w, r, s.api.Auth().GoogleLoginURL(), http.StatusFound)
	}
}

// GoogleCallbackHandler receives ?access=&refresh= or ?error= from the backend
func (s *Server) GoogleCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		store := s.store(r)
		query := r.URL.Query()

		if errCode := query.Get("error"); errCode != "" {
			log.Warn().Str("error", errCode).Msg("Google sign-in returned an error")
			redirectSuccess(w, r, guard.LoginPath+"?"+url.Values{"error": {errCode}}.Encode())
			return
		}

		tokens := session.Tokens{Access: query.Get("access"), Refresh: query.Get("refresh")}
		if tokens.Access == "" || tokens.Refresh == "" {
			redirectSuccess(w, r, guard.LoginPath+"?error=missing_tokens")
			return
		}

		if err := session.SaveLogin(ctx, store, tokens, nil); err != nil {
			log.Err(err).Msg("Google callback: failed to save tokens")
			redirectSuccess(w, r, guard.LoginPath+"?error=google_failed")
			return
		}

		// The callback carries no user, so fetch it for the page header
		if profile, err := s.api.Auth().Profile(ctx, store); err != nil {
			log.Err(err).Msg("Google callback: failed to load profile")
		} else if err := session.SetUser(ctx, store, profile.User); err != nil {
			log.Err(err).Msg("Google callback: failed to save user")
		}

		next, err := session.Take(ctx, store, session.KeyOAuthNext)
		if err != nil {
			log.Err(err).Msg("Google callback: failed to read next")
		}
		redirectSuccess(w, r, guard.SafeNext(next, s.landing()))
	}
}
