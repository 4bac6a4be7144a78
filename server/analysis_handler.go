package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/careergap-web/apiclient"
	"github.com/jrsteele09/careergap-web/session"
	"github.com/jrsteele09/careergap-web/validation"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type analysisPage struct {
	Resumes  []apiclient.Resume
	Jobs     []apiclient.Job
	ResumeID int
	JobID    int
	Result   *apiclient.Analysis
}

// loadChoices fetches the user's résumés and jobs side by side. A résumé
// uploaded in this session but not yet listed by the backend is added in
// front, after which the cached copy is dropped.
func (s *Server) loadChoices(ctx context.Context, store session.Store) ([]apiclient.Resume, []apiclient.Job, error) {
	var resumes []apiclient.Resume
	var jobs []apiclient.Job

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		resumes, err = s.api.Resumes().List(gctx, store)
		return err
	})
	g.Go(func() error {
		var err error
		jobs, err = s.api.Jobs().List(gctx, store)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return mergeLatestResume(ctx, store, resumes), jobs, nil
}

func mergeLatestResume(ctx context.Context, store session.Store, resumes []apiclient.Resume) []apiclient.Resume {
	raw, err := session.Take(ctx, store, session.KeyLatestResume)
	if err != nil {
		log.Err(err).Msg("Analysis: failed to read latest resume")
		return resumes
	}
	if raw == "" {
		return resumes
	}

	var latest apiclient.Resume
	if err := json.Unmarshal([]byte(raw), &latest); err != nil {
		log.Err(err).Msg("Analysis: discarding malformed latest resume")
		return resumes
	}
	for _, r := range resumes {
		if r.ID == latest.ID {
			return resumes
		}
	}
	return append([]apiclient.Resume{latest}, resumes...)
}

func (s *Server) AnalysisGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form := validation.Values(r.URL.Query())
		page := analysisPage{ResumeID: form.ID("resume_id"), JobID: form.ID("job_id")}
		data := PageData{Title: "Skill Gap Analysis", Active: "analysis", Error: form.Text("error"), Data: &page}

		resumes, jobs, err := s.loadChoices(r.Context(), s.store(r))
		if err != nil {
			s.renderFailure(w, r, pageAnalysis, err, "Failed to load resumes and jobs", data)
			return
		}
		page.Resumes, page.Jobs = resumes, jobs
		s.render(w, r, pageAnalysis, http.StatusOK, data)
	}
}

func (s *Server) AnalysisPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		ctx := r.Context()
		store := s.store(r)
		form := validation.Values(r.PostForm)
		req := validation.AnalysisForm{ResumeID: form.ID("resume_id"), JobID: form.ID("job_id")}
		page := analysisPage{ResumeID: req.ResumeID, JobID: req.JobID}
		data := PageData{Title: "Skill Gap Analysis", Active: "analysis", Form: r.PostForm, Data: &page}

		resumes, jobs, err := s.loadChoices(ctx, store)
		if err != nil {
			s.renderFailure(w, r, pageAnalysis, err, "Failed to load resumes and jobs", data)
			return
		}
		page.Resumes, page.Jobs = resumes, jobs

		if err := validation.Validate(req); err != nil {
			s.renderFailure(w, r, pageAnalysis, err, "", data)
			return
		}

		result, err := s.api.Analyze().Analyze(ctx, store, apiclient.AnalysisRequest{
			ResumeID: req.ResumeID,
			JobID:    req.JobID,
		})
		if err != nil {
			s.renderFailure(w, r, pageAnalysis, err, "Analysis failed. Please try again.", data)
			return
		}
		page.Result = result
		s.render(w, r, pageAnalysis, http.StatusOK, data)
	}
}
