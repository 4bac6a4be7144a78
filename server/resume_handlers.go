package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/jrsteele09/careergap-web/apiclient"
	"github.com/jrsteele09/careergap-web/session"
	"github.com/jrsteele09/careergap-web/validation"
	"github.com/rs/zerolog/log"
)

// Room for the multipart envelope around the largest accepted file
const multipartOverhead = 1 << 20

type uploadResumePage struct {
	Resume  *apiclient.Resume
	Preview string
}

func (s *Server) UploadResumeGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, pageUploadResume, http.StatusOK, PageData{Title: "Upload Resume", Active: "upload-resume"})
	}
}

func (s *Server) UploadResumePostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := PageData{Title: "Upload Resume", Active: "upload-resume"}

		file, err := readUpload(w, r, "file", validation.MaxResumeSize)
		if err != nil {
			s.renderFailure(w, r, pageUploadResume, err, "The upload could not be read", data)
			return
		}
		name, content := file.Name, file.Data
		if err := validation.ResumeFile(name, content); err != nil {
			s.renderFailure(w, r, pageUploadResume, err, "", data)
			return
		}

		ctx := r.Context()
		store := s.store(r)
		created, err := s.api.Resumes().Upload(ctx, store, name, content)
		if err != nil {
			s.renderFailure(w, r, pageUploadResume, err, "Upload failed. Please try again.", data)
			return
		}

		// The analysis page shows this résumé even before the list endpoint has it
		if latest, err := json.Marshal(created.Data); err != nil {
			log.Err(err).Msg("Upload resume: failed to encode latest resume")
		} else if err := store.Set(ctx, session.KeyLatestResume, string(latest)); err != nil {
			log.Err(err).Msg("Upload resume: failed to cache latest resume")
		}

		preview, err := validation.ResumeText(name, content)
		if err != nil {
			log.Debug().Err(err).Str("file", name).Msg("Upload resume: no text preview")
		}

		data.Success = created.Message
		if data.Success == "" {
			data.Success = "Resume uploaded successfully!"
		}
		data.Data = uploadResumePage{Resume: &created.Data, Preview: truncate(preview, 1000)}
		s.render(w, r, pageUploadResume, http.StatusOK, data)
	}
}

func (s *Server) DeleteResumeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			http.Error(w, "Invalid resume id", http.StatusBadRequest)
			return
		}
		if err := s.api.Resumes().Delete(r.Context(), s.store(r), id); err != nil {
			if s.sessionLost(w, r, err) {
				return
			}
			redirectWithError(w, r, RouteAnalysis, apiclient.UserMessage(err, "Failed to delete resume"))
			return
		}
		redirectSuccess(w, r, RouteAnalysis)
	}
}

// upload is one file taken from a multipart form
type upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// readUpload reads one file field of a multipart form, refusing bodies
// larger than limit. A missing file yields a zero upload and no error.
func readUpload(w http.ResponseWriter, r *http.Request, field string, limit int64) (upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		errs := &validation.Errors{}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			errs.Add(field, "File is too large")
		} else {
			errs.Add(field, "The upload could not be read")
		}
		return upload{}, errs
	}

	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return upload{}, nil
	}
	if err != nil {
		return upload{}, err
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return upload{}, err
	}
	return upload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        content,
	}, nil
}

func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
