package server

import (
	"net/http"

	"github.com/jrsteele09/careergap-web/apiclient"
)

func (s *Server) DashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := PageData{Title: "Dashboard", Active: "dashboard", Error: r.URL.Query().Get("error")}

		stats, err := s.api.Dashboard().Stats(r.Context(), s.store(r))
		if err != nil {
			data.Data = &apiclient.DashboardStats{}
			s.renderFailure(w, r, pageDashboard, err, "Failed to load dashboard statistics", data)
			return
		}
		data.Data = stats
		s.render(w, r, pageDashboard, http.StatusOK, data)
	}
}
