package server

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/careergap-web/apiclient"
	"github.com/jrsteele09/careergap-web/session"
	"github.com/jrsteele09/careergap-web/validation"
	"github.com/rs/zerolog/log"
)

//go:embed templates/*
var templateFiles embed.FS

const (
	contentTypeHTML = "text/html; charset=utf-8"
	layoutTemplate  = "layout.html"
)

// Pages rendered inside the shared layout
const (
	pageHome            = "home.html"
	pageLogin           = "login.html"
	pageRegister        = "register.html"
	pageForgotPassword  = "forgot_password.html"
	pageResetPassword   = "reset_password.html"
	pageDashboard       = "dashboard.html"
	pageUploadResume    = "upload_resume.html"
	pageUploadJob       = "upload_job.html"
	pageAnalysis        = "analysis.html"
	pageResumeGenerator = "resume_generator.html"
	pageSpeakAssessment = "speak_assessment.html"
	pageProfile         = "profile.html"
)

var pageNames = []string{
	pageHome, pageLogin, pageRegister, pageForgotPassword, pageResetPassword,
	pageDashboard, pageUploadResume, pageUploadJob, pageAnalysis,
	pageResumeGenerator, pageSpeakAssessment, pageProfile,
}

type pageTemplate struct {
	*template.Template
}

// PageData is what every page template receives
type PageData struct {
	AppName       string
	Title         string
	Active        string
	User          *session.User
	Authenticated bool
	Error         string
	Success       string
	Fields        map[string]string // per-field validation messages
	Form          url.Values        // submitted values, re-shown after an error
	Next          string
	Data          any
}

// Value returns a submitted form value for re-display
func (d PageData) Value(key string) string {
	return d.Form.Get(key)
}

func TemplateFilesFS() fs.FS {
	// Create the sub filesystem once
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

var templateFuncs = template.FuncMap{
	"join":    strings.Join,
	"percent": func(f float64) string { return fmt.Sprintf("%.0f%%", f) },
	"score":   func(f float64) string { return fmt.Sprintf("%.1f", f) },
}

// loadPages parses every page together with the layout
func loadPages() (map[string]*pageTemplate, error) {
	files := TemplateFilesFS()
	pages := make(map[string]*pageTemplate, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New(layoutTemplate).Funcs(templateFuncs).ParseFS(files, layoutTemplate, name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		pages[name] = &pageTemplate{tmpl}
	}
	return pages, nil
}

// render writes a page, filling in the session-derived fields of data
func (s *Server) render(w http.ResponseWriter, r *http.Request, page string, status int, data PageData) {
	tmpl, ok := s.pages[page]
	if !ok {
		logError(r.Method, r.URL.Path, "unknown page "+page)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	store := s.store(r)
	data.AppName = s.config.GetAppName()
	data.Authenticated = session.IsAuthenticated(r.Context(), store)
	if data.Authenticated && data.User == nil {
		user, err := session.CurrentUser(r.Context(), store)
		if err != nil {
			log.Err(err).Msg("Failed to read user from session")
		}
		data.User = user
	}

	// Render to a buffer so a template error never leaves a half-written page
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, layoutTemplate, data); err != nil {
		log.Err(err).Str("page", page).Msg("Failed to render template")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Err(err).Str("page", page).Msg("Failed to write page")
	}
}

// renderFailure re-renders page with err shown inline. A lost login
// redirects to the login page instead.
func (s *Server) renderFailure(w http.ResponseWriter, r *http.Request, page string, err error, fallback string, data PageData) {
	if s.sessionLost(w, r, err) {
		return
	}
	s.renderInline(w, r, page, err, fallback, data)
}

// renderInline re-renders page with err shown inline
func (s *Server) renderInline(w http.ResponseWriter, r *http.Request, page string, err error, fallback string, data PageData) {
	status := failureStatus(err)
	var fieldErrs *validation.Errors
	if errors.As(err, &fieldErrs) {
		data.Fields = fieldErrs.Fields()
		data.Error = fieldErrs.First()
	} else {
		data.Error = apiclient.UserMessage(err, fallback)
	}
	if status >= http.StatusInternalServerError {
		log.Err(err).Str("path", r.URL.Path).Msg("Request to backend failed")
	}
	s.render(w, r, page, status, data)
}

func failureStatus(err error) int {
	var apiErr *apiclient.APIError
	switch {
	case errors.As(err, new(*validation.Errors)):
		return http.StatusUnprocessableEntity
	case errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError:
		return apiErr.Status
	case errors.As(err, new(*apiclient.NetworkError)), errors.As(err, &apiErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
