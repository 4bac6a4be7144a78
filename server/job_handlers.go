package server

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/jrsteele09/careergap-web/apiclient"
	"github.com/jrsteele09/careergap-web/validation"
)

type jobPage struct {
	Action  string // form target
	Editing bool
}

var newJobPage = jobPage{Action: RouteUploadJob}

func editJobPage(id int) jobPage {
	return jobPage{Action: "/jobs/" + strconv.Itoa(id) + "/edit", Editing: true}
}

func jobForm(values url.Values) validation.JobForm {
	form := validation.Values(values)
	return validation.JobForm{
		Title:        form.Text("title"),
		Company:      form.Text("company"),
		Location:     form.Text("location"),
		Description:  form.Text("description"),
		Requirements: form.Text("requirements"),
		Salary:       form.Text("salary"),
		JobType:      form.Text("job_type"),
	}
}

func jobFromForm(f validation.JobForm) apiclient.Job {
	return apiclient.Job{
		Title:        f.Title,
		Company:      f.Company,
		Location:     f.Location,
		Description:  f.Description,
		Requirements: f.Requirements,
		Salary:       f.Salary,
		JobType:      f.JobType,
	}
}

// jobValues pre-fills the form from a stored job
func jobValues(job *apiclient.Job) url.Values {
	return url.Values{
		"title":        {job.Title},
		"company":      {job.Company},
		"location":     {job.Location},
		"description":  {job.Description},
		"requirements": {job.Requirements},
		"salary":       {job.Salary},
		"job_type":     {job.JobType},
	}
}

func (s *Server) UploadJobGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, pageUploadJob, http.StatusOK, PageData{
			Title:  "Upload Job Description",
			Active: "upload-job",
			Form:   url.Values{"job_type": {"full-time"}},
			Data:   newJobPage,
		})
	}
}

func (s *Server) UploadJobPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		data := PageData{Title: "Upload Job Description", Active: "upload-job", Form: r.PostForm, Data: newJobPage}

		form := jobForm(r.PostForm)
		if err := validation.Validate(form); err != nil {
			s.renderFailure(w, r, pageUploadJob, err, "", data)
			return
		}
		if _, err := s.api.Jobs().Create(r.Context(), s.store(r), jobFromForm(form)); err != nil {
			s.renderFailure(w, r, pageUploadJob, err, "Failed to save the job description", data)
			return
		}
		redirectSuccess(w, r, RouteDashboard)
	}
}

func (s *Server) EditJobGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			http.Error(w, "Invalid job id", http.StatusBadRequest)
			return
		}
		data := PageData{Title: "Edit Job Description", Active: "upload-job", Data: editJobPage(id)}

		job, err := s.api.Jobs().Get(r.Context(), s.store(r), id)
		if err != nil {
			s.renderFailure(w, r, pageUploadJob, err, "Failed to load the job description", data)
			return
		}
		data.Form = jobValues(job)
		s.render(w, r, pageUploadJob, http.StatusOK, data)
	}
}

func (s *Server) EditJobPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			http.Error(w, "Invalid job id", http.StatusBadRequest)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		data := PageData{Title: "Edit Job Description", Active: "upload-job", Form: r.PostForm, Data: editJobPage(id)}

		form := jobForm(r.PostForm)
		if err := validation.Validate(form); err != nil {
			s.renderFailure(w, r, pageUploadJob, err, "", data)
			return
		}
		if _, err := s.api.Jobs().Update(r.Context(), s.store(r), id, jobFromForm(form)); err != nil {
			s.renderFailure(w, r, pageUploadJob, err, "Failed to update the job description", data)
			return
		}
		redirectSuccess(w, r, RouteAnalysis)
	}
}

func (s *Server) DeleteJobHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			http.Error(w, "Invalid job id", http.StatusBadRequest)
			return
		}
		if err := s.api.Jobs().Delete(r.Context(), s.store(r), id); err != nil {
			if s.sessionLost(w, r, err) {
				return
			}
			redirectWithError(w, r, RouteAnalysis, apiclient.UserMessage(err, "Failed to delete job"))
			return
		}
		redirectSuccess(w, r, RouteAnalysis)
	}
}
