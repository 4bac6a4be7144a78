package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET "+RouteHome, ChainMiddleware(s.HomeHandler(), s.HTMLMiddleWare()...))

	// LOGIN
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageUIHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteGoogleLogin, ChainMiddleware(s.GoogleLoginHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteGoogleCallback, ChainMiddleware(s.GoogleCallbackHandler(), s.HTMLMiddleWare()...))

	// SIGNUP & PASSWORDS
	s.RegisterRouteHandler("GET "+RouteRegister, ChainMiddleware(s.RegisterGetHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteRegister, ChainMiddleware(s.RegisterPostHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteForgotPassword, ChainMiddleware(s.ForgotPasswordGetHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteForgotPassword, ChainMiddleware(s.ForgotPasswordPostHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteResetPassword, ChainMiddleware(s.ResetPasswordGetHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteResetPassword, ChainMiddleware(s.ResetPasswordPostHandler(), s.HTMLMiddleWare()...))

	// Protected pages (require an access token in the browser session)
	protected := s.HTMLMiddleWare(s.RequireSession)
	s.RegisterRouteHandler("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), protected...))
	s.RegisterRouteHandler("GET "+RouteDashboard, ChainMiddleware(s.DashboardHandler(), protected...))
	s.RegisterRouteHandler("GET "+RouteUploadResume, ChainMiddleware(s.UploadResumeGetHandler(), protected...))
	s.RegisterRouteHandler("POST "+RouteUploadResume, ChainMiddleware(s.UploadResumePostHandler(), protected...))
	s.RegisterRouteHandler("POST "+RouteResumeDelete, ChainMiddleware(s.DeleteResumeHandler(), protected...))
	s.RegisterRouteHandler("GET "+RouteUploadJob, ChainMiddleware(s.UploadJobGetHandler(), protected...))
	s.RegisterRouteHandler("POST "+RouteUploadJob, ChainMiddleware(s.UploadJobPostHandler(), protected...))
	s.RegisterRouteHandler("GET "+RouteJobEdit, ChainMiddleware(s.EditJobGetHandler(), protected...))
	s.RegisterRouteHandler("POST "+RouteJobEdit, ChainMiddleware(s.EditJobPostHandler(), protected...))
	s.RegisterRouteHandler("POST "+RouteJobDelete, ChainMiddleware(s.DeleteJobHandler(), protected...))
	s.RegisterRouteHandler("GET "+RouteAnalysis, ChainMiddleware(s.AnalysisGetHandler(), protected...))
	s.RegisterRouteHandler("POST "+RouteAnalysis, ChainMiddleware(s.AnalysisPostHandler(), protected...))
	s.RegisterRouteHandler("GET "+RouteResumeGenerator, ChainMiddleware(s.ResumeGeneratorGetHandler(), protected...))
	s.RegisterRouteHandler("POST "+RouteResumeGenerator, ChainMiddleware(s.ResumeGeneratorPostHandler(), protected...))
	s.RegisterRouteHandler("POST "+RouteResumeDownload, ChainMiddleware(s.ResumeDownloadHandler(), protected...))
	s.RegisterRouteHandler("GET "+RouteSpeakAssessment, ChainMiddleware(s.SpeakAssessmentGetHandler(), protected...))
	s.RegisterRouteHandler("POST "+RouteSpeakAssessment, ChainMiddleware(s.SpeakAssessmentPostHandler(), protected...))
	s.RegisterRouteHandler("GET "+RouteProfile, ChainMiddleware(s.ProfileGetHandler(), protected...))
	s.RegisterRouteHandler("POST "+RouteProfile, ChainMiddleware(s.ProfilePostHandler(), protected...))
	s.RegisterRouteHandler("POST "+RouteProfilePassword, ChainMiddleware(s.ChangePasswordHandler(), protected...))

	// System routes
	s.RegisterRouteHandler("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteMetrics, ChainMiddleware(promhttp.Handler().ServeHTTP, s.APIMiddleware()...))

	s.RegisterRouteHandler("GET "+RouteStaticCSS, ChainMiddleware(s.serveFileHandler(), s.StaticMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteStaticJS, ChainMiddleware(s.serveFileHandler(), s.StaticMiddleware()...))
}

func (s *Server) serveFileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("file") == "" {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
		s.fileServer.ServeHTTP(w, r)
	}
}
