package server

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/jrsteele09/careergap-web/apiclient"
	"github.com/jrsteele09/careergap-web/validation"
)

const generatorModeBuild = "build"

type generatorPage struct {
	ID     int
	Resume string
}

func (s *Server) ResumeGeneratorGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, pageResumeGenerator, http.StatusOK, PageData{
			Title:  "Resume Generator",
			Active: "resume-generator",
			Data:   generatorPage{},
		})
	}
}

// ResumeGeneratorPostHandler drafts a résumé. The build mode also saves it
// on the backend so it can be previewed again later.
func (s *Server) ResumeGeneratorPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		data := PageData{Title: "Resume Generator", Active: "resume-generator", Form: r.PostForm, Data: generatorPage{}}

		values := validation.Values(r.PostForm)
		form := validation.ResumeGenForm{
			Name:         values.Text("name"),
			Role:         values.Text("role"),
			Education:    values.Text("education"),
			Skills:       values.Text("skills"),
			Projects:     values.Text("projects"),
			Internship:   values.Text("internship"),
			Achievements: values.Text("achievements"),
		}
		if err := validation.Validate(form); err != nil {
			s.renderFailure(w, r, pageResumeGenerator, err, "", data)
			return
		}

		input := apiclient.ResumeInput{
			Name:         form.Name,
			Role:         form.Role,
			Education:    form.Education,
			Skills:       form.Skills,
			Projects:     apiclient.SplitList(form.Projects),
			Internship:   form.Internship,
			Achievements: apiclient.SplitList(form.Achievements),
		}

		gen := s.api.ResumeGen()
		generate := gen.Generate
		if values.Text("mode") == generatorModeBuild {
			generate = gen.Build
		}
		result, err := generate(r.Context(), s.store(r), input)
		if err != nil {
			s.renderFailure(w, r, pageResumeGenerator, err, "Failed to generate resume. Please try again.", data)
			return
		}

		data.Success = "Resume generated successfully!"
		data.Data = generatorPage{ID: result.ID, Resume: result.FormattedResume}
		s.render(w, r, pageResumeGenerator, http.StatusOK, data)
	}
}

// ResumeDownloadHandler sends a generated résumé as a text file. A saved
// résumé is fetched again by id, otherwise the posted text is used.
func (s *Server) ResumeDownloadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		values := validation.Values(r.PostForm)
		text := values.Secret("resume")

		if id := values.ID("id"); id > 0 {
			preview, err := s.api.ResumeGen().Preview(r.Context(), s.store(r), id)
			if err != nil {
				if s.sessionLost(w, r, err) {
					return
				}
				redirectWithError(w, r, RouteResumeGenerator, apiclient.UserMessage(err, "Failed to download resume"))
				return
			}
			text = preview.FormattedResume
		}
		if strings.TrimSpace(text) == "" {
			redirectWithError(w, r, RouteResumeGenerator, "Generate a resume first")
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", downloadName(values.Text("name"))))
		_, _ = w.Write([]byte(text))
	}
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func downloadName(name string) string {
	name = strings.Trim(unsafeFilename.ReplaceAllString(name, "_"), "_")
	if name == "" {
		name = "resume"
	}
	return name + "_resume.txt"
}
