package server

import (
	"net/http"

	"github.com/jrsteele09/careergap-web/apiclient"
	"github.com/jrsteele09/careergap-web/guard"
	"github.com/jrsteele09/careergap-web/session"
	"github.com/jrsteele09/careergap-web/validation"
	"github.com/rs/zerolog/log"
)

// Messages for the error codes that other pages send to /login
var loginErrorMessages = map[string]string{
	"missing_tokens": "Google sign-in did not return a session. Please try again.",
	"google_failed":  "Google sign-in failed. Please try again.",
	"access_denied":  "Google sign-in was cancelled.",
}

func loginErrorMessage(code string) string {
	if code == "" {
		return ""
	}
	if msg, ok := loginErrorMessages[code]; ok {
		return msg
	}
	return "Sign-in failed: " + code
}

// landing is where the browser goes after login when no next was requested
func (s *Server) landing() string {
	return guard.SafeNext(s.config.GetDefaultLandingPath(), guard.DefaultLandingPath)
}

// LoginPageUIHandler displays the login page (GET /login)
func (s *Server) LoginPageUIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		next := guard.SafeNext(query.Get(guard.NextParam), "")

		if session.IsAuthenticated(r.Context(), s.store(r)) {
			redirectSuccess(w, r, guard.SafeNext(next, s.landing()))
			return
		}

		data := PageData{
			Title: "Login",
			Next:  next,
			Error: loginErrorMessage(query.Get("error")),
		}
		switch {
		case query.Get("registered") != "":
			data.Success = "Registration successful! Please log in."
		case query.Get("reset") != "":
			data.Success = "Your password has been reset. Please log in."
		}
		s.render(w, r, pageLogin, http.StatusOK, data)
	}
}

// LoginSubmissionHandler processes the login form submission
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		form := validation.Values(r.PostForm)
		next := guard.SafeNext(form.Text(guard.NextParam), "")
		data := PageData{Title: "Login", Form: r.PostForm, Next: next}

		login := validation.LoginForm{
			Username: form.Text("username"),
			Password: form.Secret("password"),
		}
		if err := validation.Validate(login); err != nil {
			s.renderFailure(w, r, pageLogin, err, "", data)
			return
		}

		// Credentials go without a bearer; the browser's current pair stays until replaced
		ctx := r.Context()
		result, err := s.api.Auth().Login(ctx, session.Anonymous, apiclient.Credentials{
			Username: login.Username,
			Password: login.Password,
		})
		if err != nil {
			s.renderInline(w, r, pageLogin, err, "Login failed. Please try again.", data)
			return
		}

		if err := session.SaveLogin(ctx, s.store(r), result.Tokens, &result.User); err != nil {
			log.Err(err).Msg("Login: failed to save session")
			data.Error = "Login failed. Please try again."
			s.render(w, r, pageLogin, http.StatusInternalServerError, data)
			return
		}

		log.Info().Str("username", result.User.Username).Msg("User logged in")
		redirectSuccess(w, r, guard.SafeNext(next, s.landing()))
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		store := s.store(r)

		// Blacklisting the refresh token is best effort; the local session goes regardless
		refresh, err := session.RefreshToken(ctx, store)
		if err != nil {
			log.Err(err).Msg("Logout: failed to read refresh token")
		} else if refresh != "" {
			if err := s.api.Auth().Logout(ctx, store, refresh); err != nil {
				log.Err(err).Msg("Logout: backend logout failed")
			}
		}

		if err := session.Destroy(ctx, store); err != nil {
			log.Err(err).Msg("Logout: failed to destroy session")
		}
		redirectSuccess(w, r, guard.LoginPath)
	}
}
