package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteHome = "/{$}"

	// Auth Routes - Login & Logout
	RouteLogin          = "/login"
	RouteLogout         = "/logout"
	RouteGoogleLogin    = "/auth/google"
	RouteGoogleCallback = "/auth/google/callback"

	// Auth Routes - Signup & Password Management
	RouteRegister       = "/register"
	RouteForgotPassword = "/forgot-password"
	RouteResetPassword  = "/reset-password"

	// Protected pages
	RouteDashboard       = "/dashboard"
	RouteUploadResume    = "/upload-resume"
	RouteResumeDelete    = "/resumes/{id}/delete"
	RouteUploadJob       = "/upload-job"
	RouteJobEdit         = "/jobs/{id}/edit"
	RouteJobDelete       = "/jobs/{id}/delete"
	RouteAnalysis        = "/analysis"
	RouteResumeGenerator = "/resume-generator"
	RouteResumeDownload  = "/resume-generator/download"
	RouteSpeakAssessment = "/speak-assessment"
	RouteProfile         = "/profile"
	RouteProfilePassword = "/profile/password"

	// System Routes
	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"

	// Static Asset Routes (patterns)
	RouteStaticCSS = "/css/{file}"
	RouteStaticJS  = "/js/{file}"
)
