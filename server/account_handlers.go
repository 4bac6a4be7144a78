package server

import (
	"net/http"

	"github.com/jrsteele09/careergap-web/apiclient"
	"github.com/jrsteele09/careergap-web/guard"
	"github.com/jrsteele09/careergap-web/validation"
)

func (s *Server) RegisterGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, pageRegister, http.StatusOK, PageData{Title: "Create Account"})
	}
}

func (s *Server) RegisterPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		form := validation.Values(r.PostForm)
		data := PageData{Title: "Create Account", Form: r.PostForm}

		reg := validation.RegisterForm{
			Username:        form.Text("username"),
			Email:           form.Text("email"),
			Password:        form.Secret("password"),
			PasswordConfirm: form.Secret("password_confirm"),
			FirstName:       form.Text("first_name"),
			LastName:        form.Text("last_name"),
		}
		if err := validation.Validate(reg); err != nil {
			s.renderFailure(w, r, pageRegister, err, "", data)
			return
		}

		_, err := s.api.Auth().Register(r.Context(), s.store(r), apiclient.Registration{
			Username:        reg.Username,
			Email:           reg.Email,
			Password:        reg.Password,
			PasswordConfirm: reg.PasswordConfirm,
			FirstName:       reg.FirstName,
			LastName:        reg.LastName,
		})
		if err != nil {
			s.renderFailure(w, r, pageRegister, err, "Registration failed. Please try again.", data)
			return
		}
		redirectSuccess(w, r, guard.LoginPath+"?registered=1")
	}
}

func (s *Server) ForgotPasswordGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, pageForgotPassword, http.StatusOK, PageData{Title: "Forgot Password"})
	}
}

func (s *Server) ForgotPasswordPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		form := validation.Values(r.PostForm)
		data := PageData{Title: "Forgot Password", Form: r.PostForm}

		req := validation.ForgotPasswordForm{Email: form.Text("email")}
		if err := validation.Validate(req); err != nil {
			s.renderFailure(w, r, pageForgotPassword, err, "", data)
			return
		}

		result, err := s.api.Auth().RequestPasswordReset(r.Context(), s.store(r), req.Email)
		if err != nil {
			s.renderFailure(w, r, pageForgotPassword, err, "Could not send the reset email. Please try again.", data)
			return
		}

		data.Success = result.Message
		if data.Success == "" {
			data.Success = "If an account exists for that email, a reset link has been sent."
		}
		// Development backends return the link instead of mailing it
		if s.env == "DEV" && result.ResetURL != "" {
			data.Data = result.ResetURL
		}
		s.render(w, r, pageForgotPassword, http.StatusOK, data)
	}
}

func (s *Server) ResetPasswordGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		data := PageData{Title: "Reset Password", Data: token}
		if token == "" {
			data.Error = "The reset link is invalid or incomplete"
		}
		s.render(w, r, pageResetPassword, http.StatusOK, data)
	}
}

func (s *Server) ResetPasswordPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		form := validation.Values(r.PostForm)
		reset := validation.ResetPasswordForm{
			Token:              form.Text("token"),
			NewPassword:        form.Secret("new_password"),
			NewPasswordConfirm: form.Secret("new_password_confirm"),
		}
		data := PageData{Title: "Reset Password", Form: r.PostForm, Data: reset.Token}

		if err := validation.Validate(reset); err != nil {
			s.renderFailure(w, r, pageResetPassword, err, "", data)
			return
		}

		_, err := s.api.Auth().ConfirmPasswordReset(r.Context(), s.store(r), apiclient.PasswordResetConfirm{
			Token:              reset.Token,
			NewPassword:        reset.NewPassword,
			NewPasswordConfirm: reset.NewPasswordConfirm,
		})
		if err != nil {
			s.renderFailure(w, r, pageResetPassword, err, "Could not reset the password. Please try again.", data)
			return
		}
		redirectSuccess(w, r, guard.LoginPath+"?reset=1")
	}
}
