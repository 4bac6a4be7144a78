package server

import (
	"net/http"

	"github.com/jrsteele09/careergap-web/validation"
)

func (s *Server) SpeakAssessmentGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, pageSpeakAssessment, http.StatusOK, PageData{Title: "Speaking Assessment", Active: "speak-assessment"})
	}
}

func (s *Server) SpeakAssessmentPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := PageData{Title: "Speaking Assessment", Active: "speak-assessment"}

		audio, err := readUpload(w, r, "audio", validation.MaxAudioSize)
		if err != nil {
			s.renderFailure(w, r, pageSpeakAssessment, err, "The upload could not be read", data)
			return
		}
		if err := validation.AudioFile(audio.Name, audio.ContentType, int64(len(audio.Data))); err != nil {
			s.renderFailure(w, r, pageSpeakAssessment, err, "", data)
			return
		}

		result, err := s.api.Speak().Assess(r.Context(), s.store(r), audio.Name, audio.ContentType, audio.Data)
		if err != nil {
			s.renderFailure(w, r, pageSpeakAssessment, err, "Assessment failed. Please try again.", data)
			return
		}
		data.Data = result
		s.render(w, r, pageSpeakAssessment, http.StatusOK, data)
	}
}
