package server

import (
	"net/http"
	"net/url"

	"github.com/jrsteele09/careergap-web/apiclient"
	"github.com/jrsteele09/careergap-web/internal/utils"
	"github.com/jrsteele09/careergap-web/session"
	"github.com/jrsteele09/careergap-web/validation"
	"github.com/rs/zerolog/log"
)

func profileValues(p *apiclient.Profile) url.Values {
	return url.Values{"phone": {p.Phone}, "bio": {p.Bio}}
}

// profilePage loads the profile shown beside both profile forms
func (s *Server) profilePage(w http.ResponseWriter, r *http.Request) (PageData, bool) {
	data := PageData{Title: "Profile", Active: "profile", Data: &apiclient.Profile{}}
	profile, err := s.api.Auth().Profile(r.Context(), s.store(r))
	if err != nil {
		s.renderFailure(w, r, pageProfile, err, "Failed to load profile", data)
		return data, false
	}
	data.Data = profile
	data.Form = profileValues(profile)
	return data, true
}

func (s *Server) ProfileGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, ok := s.profilePage(w, r)
		if !ok {
			return
		}
		s.render(w, r, pageProfile, http.StatusOK, data)
	}
}

func (s *Server) ProfilePostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		data, ok := s.profilePage(w, r)
		if !ok {
			return
		}
		data.Form = r.PostForm

		values := validation.Values(r.PostForm)
		form := validation.ProfileForm{Phone: values.Text("phone"), Bio: values.Text("bio")}
		if err := validation.Validate(form); err != nil {
			s.renderFailure(w, r, pageProfile, err, "", data)
			return
		}

		ctx := r.Context()
		store := s.store(r)
		profile, err := s.api.Auth().UpdateProfile(ctx, store, apiclient.ProfileUpdate{
			Phone: utils.Ptr(form.Phone),
			Bio:   utils.Ptr(form.Bio),
		})
		if err != nil {
			s.renderFailure(w, r, pageProfile, err, "Failed to update profile", data)
			return
		}
		if profile.User.Username != "" {
			if err := session.SetUser(ctx, store, profile.User); err != nil {
				log.Err(err).Msg("Profile: failed to refresh stored user")
			}
		}

		data.Data = profile
		data.Form = profileValues(profile)
		data.User = &profile.User
		data.Success = "Profile updated successfully!"
		s.render(w, r, pageProfile, http.StatusOK, data)
	}
}

func (s *Server) ChangePasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		data, ok := s.profilePage(w, r)
		if !ok {
			return
		}

		values := validation.Values(r.PostForm)
		form := validation.ChangePasswordForm{
			OldPassword:        values.Secret("old_password"),
			NewPassword:        values.Secret("new_password"),
			NewPasswordConfirm: values.Secret("new_password_confirm"),
		}
		if err := validation.Validate(form); err != nil {
			s.renderFailure(w, r, pageProfile, err, "", data)
			return
		}

		result, err := s.api.Auth().ChangePassword(r.Context(), s.store(r), apiclient.PasswordChange{
			OldPassword:        form.OldPassword,
			NewPassword:        form.NewPassword,
			NewPasswordConfirm: form.NewPasswordConfirm,
		})
		if err != nil {
			s.renderFailure(w, r, pageProfile, err, "Failed to change password", data)
			return
		}
		data.Success = result.Message
		if data.Success == "" {
			data.Success = "Password changed successfully!"
		}
		s.render(w, r, pageProfile, http.StatusOK, data)
	}
}
