package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"html"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/jrsteele09/careergap-web/apiclient"
	"github.com/jrsteele09/careergap-web/internal/config"
	"github.com/jrsteele09/careergap-web/internal/testbackend"
	"github.com/jrsteele09/careergap-web/internal/utils"
	"github.com/jrsteele09/careergap-web/server"
	"github.com/jrsteele09/careergap-web/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testUsername = "ada"
	testPassword = "secret1"
)

// testFixture holds a web server wired to an in-process backend
type testFixture struct {
	backend  *testbackend.Backend
	sessions *session.MemoryRepo
	web      *httptest.Server
	client   *http.Client
}

func setupTestFixture(t *testing.T, opts ...server.Option) *testFixture {
	t.Helper()

	b := testbackend.New(t)
	t.Setenv("API_URL", b.URL())
	t.Setenv("ENV", "TEST")
	cfg, err := config.New()
	require.NoError(t, err)

	api, err := apiclient.New(apiclient.ConfigFrom(cfg))
	require.NoError(t, err)

	repo := session.NewMemoryRepo()
	srv, err := server.New(cfg, api, repo, opts...)
	require.NoError(t, err)

	web := httptest.NewServer(srv)
	t.Cleanup(web.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testFixture{
		backend:  b,
		sessions: repo,
		web:      web,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (f *testFixture) get(t *testing.T, path string, headers ...string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, f.web.URL+path, nil)
	require.NoError(t, err)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := f.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (f *testFixture) postForm(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := f.client.PostForm(f.web.URL+path, form)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (f *testFixture) postFile(t *testing.T, path, field, filename string, content []byte) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := f.client.Post(f.web.URL+path, mw.FormDataContentType(), &body)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// store returns the server-side store of the fixture's browser, creating
// the browser session first if needed
func (f *testFixture) store(t *testing.T) session.Store {
	t.Helper()
	u, err := url.Parse(f.web.URL)
	require.NoError(t, err)
	for _, c := range f.client.Jar.Cookies(u) {
		if c.Name == "careergap_sid" {
			return f.sessions.Store(c.Value)
		}
	}
	f.get(t, "/login")
	return f.store(t)
}

func (f *testFixture) signIn(t *testing.T, tokens session.Tokens) session.Store {
	t.Helper()
	s := f.store(t)
	require.NoError(t, session.SaveLogin(context.Background(), s, tokens, &session.User{ID: 1, Username: testUsername}))
	return s
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func get(t *testing.T, s session.Store, key session.Key) string {
	t.Helper()
	v, err := s.Get(context.Background(), key)
	require.NoError(t, err)
	return v
}

func resumeList(w http.ResponseWriter, _ *http.Request) {
	testbackend.WriteJSON(w, http.StatusOK, []apiclient.Resume{{ID: 7, File: "/media/resumes/cv.pdf"}})
}

func jobList(w http.ResponseWriter, _ *http.Request) {
	testbackend.WriteJSON(w, http.StatusOK, []apiclient.Job{{ID: 3, Title: "Go Engineer"}})
}

func TestRequireSession_RedirectsToLoginWithNext(t *testing.T) {
	f := setupTestFixture(t)

	tests := []struct {
		name     string
		path     string
		location string
	}{
		{name: "plain path", path: "/dashboard", location: "/login?next=%2Fdashboard"},
		{name: "path with query", path: "/analysis?resume_id=7", location: "/login?next=%2Fanalysis%3Fresume_id%3D7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.get(t, tt.path)
			assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
			assert.Equal(t, tt.location, resp.Header.Get("Location"))
		})
	}
	assert.Empty(t, f.backend.Calls(""), "guard must not reach the backend")
}

func TestRequireSession_HTMXRequestGetsHXRedirect(t *testing.T) {
	f := setupTestFixture(t)

	resp := f.get(t, "/dashboard", "HX-Request", "true")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "/login?next=%2Fdashboard", resp.Header.Get("HX-Redirect"))
}

func TestRequireSession_FormPostGoesToPlainLogin(t *testing.T) {
	f := setupTestFixture(t)

	resp := f.postForm(t, "/upload-job", url.Values{"title": {"Go Engineer"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestSessionCookie_IsHTTPOnly(t *testing.T) {
	f := setupTestFixture(t)

	resp := f.get(t, "/login")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var sid *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "careergap_sid" {
			sid = c
		}
	}
	require.NotNil(t, sid)
	assert.True(t, sid.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, sid.SameSite)
	assert.NotEmpty(t, sid.Value)
}

func TestLogin_StoresTokensAndNavigatesToNext(t *testing.T) {
	f := setupTestFixture(t)
	user := f.backend.AddUser(testUsername, testPassword)

	resp := f.postForm(t, "/login", url.Values{
		"username": {testUsername},
		"password": {testPassword},
		"next":     {"/analysis?job_id=3"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/analysis?job_id=3", resp.Header.Get("Location"))

	s := f.store(t)
	assert.NotEmpty(t, get(t, s, session.KeyAccessToken))
	assert.NotEmpty(t, get(t, s, session.KeyRefreshToken))

	stored, err := session.CurrentUser(context.Background(), s)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, user.Username, stored.Username)
}

func TestLogin_NextIsSanitised(t *testing.T) {
	tests := []struct {
		name     string
		next     string
		location string
	}{
		{name: "absent", next: "", location: "/dashboard"},
		{name: "protocol relative", next: "//evil.example/x", location: "/dashboard"},
		{name: "absolute url", next: "https://evil.example/", location: "/dashboard"},
		{name: "local", next: "/profile", location: "/profile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestFixture(t)
			f.backend.AddUser(testUsername, testPassword)

			resp := f.postForm(t, "/login", url.Values{
				"username": {testUsername},
				"password": {testPassword},
				"next":     {tt.next},
			})
			require.Equal(t, http.StatusSeeOther, resp.StatusCode)
			assert.Equal(t, tt.location, resp.Header.Get("Location"))
		})
	}
}

func TestLogin_ValidationNeverReachesBackend(t *testing.T) {
	f := setupTestFixture(t)

	resp := f.postForm(t, "/login", url.Values{"username": {"  "}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "Username is required")
	assert.Contains(t, body, "Password is required")
	assert.Empty(t, f.backend.Calls("auth/login/"))
}

func TestLogin_InvalidCredentialsShownInline(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.AddUser(testUsername, testPassword)

	resp := f.postForm(t, "/login", url.Values{"username": {testUsername}, "password": {"wrong"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Invalid credentials")
	assert.False(t, session.IsAuthenticated(context.Background(), f.store(t)))
}

func TestLogin_StaleTokenIsNotSentWithCredentials(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.AddUser(testUsername, testPassword)
	f.signIn(t, session.Tokens{Access: "stale", Refresh: "stale-refresh"})

	resp := f.postForm(t, "/login", url.Values{"username": {testUsername}, "password": {testPassword}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	calls := f.backend.Calls("auth/login/")
	require.Len(t, calls, 1)
	assert.Empty(t, calls[0].Authorization)
}

func TestLoginPage_RedirectsWhenAlreadySignedIn(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t, session.Tokens{Access: "A1", Refresh: "R1"})

	resp := f.get(t, "/login?next=%2Fprofile")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/profile", resp.Header.Get("Location"))
}

func TestGoogleCallback(t *testing.T) {
	tests := []struct {
		name      string
		startNext string
		query     url.Values
		location  string
		signedIn  bool
	}{
		{
			name:     "provider error",
			query:    url.Values{"error": {"access_denied"}},
			location: "/login?error=access_denied",
		},
		{
			name:     "missing refresh token",
			query:    url.Values{"access": {"A1"}},
			location: "/login?error=missing_tokens",
		},
		{
			name:     "tokens without next",
			query:    url.Values{"access": {"A1"}, "refresh": {"R1"}},
			location: "/dashboard",
			signedIn: true,
		},
		{
			name:      "tokens with remembered next",
			startNext: "/upload-job",
			query:     url.Values{"access": {"A1"}, "refresh": {"R1"}},
			location:  "/upload-job",
			signedIn:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestFixture(t)
			f.backend.AcceptAccess("A1", 1)
			f.backend.Handle("GET auth/profile/", func(w http.ResponseWriter, _ *http.Request) {
				testbackend.WriteJSON(w, http.StatusOK, apiclient.Profile{User: session.User{ID: 1, Username: testUsername}})
			})

			if tt.startNext != "" {
				resp := f.get(t, "/auth/google?next="+url.QueryEscape(tt.startNext))
				require.Equal(t, http.StatusFound, resp.StatusCode)
				assert.Equal(t, f.backend.URL()+"/api/auth/google/login/", resp.Header.Get("Location"))
			}

			resp := f.get(t, "/auth/google/callback?"+tt.query.Encode())
			require.Equal(t, http.StatusSeeOther, resp.StatusCode)
			assert.Equal(t, tt.location, resp.Header.Get("Location"))

			s := f.store(t)
			assert.Equal(t, tt.signedIn, session.IsAuthenticated(context.Background(), s))
			assert.Empty(t, get(t, s, session.KeyOAuthNext), "next is consumed once")
			if tt.signedIn {
				assert.Equal(t, "R1", get(t, s, session.KeyRefreshToken))
				user, err := session.CurrentUser(context.Background(), s)
				require.NoError(t, err)
				require.NotNil(t, user)
				assert.Equal(t, testUsername, user.Username)
			}
		})
	}
}

func TestLogout_BlacklistsRefreshTokenAndDestroysSession(t *testing.T) {
	f := setupTestFixture(t)
	tokens := f.backend.IssueTokens(1)
	f.backend.Handle("POST auth/logout/", func(w http.ResponseWriter, _ *http.Request) {
		testbackend.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
	})
	s := f.signIn(t, tokens)
	require.NoError(t, s.Set(context.Background(), session.KeyLatestResume, `{"id":1}`))

	resp := f.postForm(t, "/logout", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	calls := f.backend.Calls("auth/logout/")
	require.Len(t, calls, 1)
	assert.JSONEq(t, `{"refresh":"`+tokens.Refresh+`"}`, string(calls[0].Body))

	for _, key := range []session.Key{session.KeyAccessToken, session.KeyRefreshToken, session.KeyUser, session.KeyLatestResume} {
		assert.Empty(t, get(t, s, key), key)
	}
}

func TestLogout_BackendFailureStillSignsOut(t *testing.T) {
	f := setupTestFixture(t)
	tokens := f.backend.IssueTokens(1)
	f.backend.Handle("POST auth/logout/", func(w http.ResponseWriter, _ *http.Request) {
		testbackend.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "boom"})
	})
	s := f.signIn(t, tokens)

	resp := f.postForm(t, "/logout", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.False(t, session.IsAuthenticated(context.Background(), s))
}

func TestDashboard_RefreshesExpiredTokenTransparently(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.AcceptRefresh("R1", 1)
	f.backend.Handle("GET dashboard/stats/", func(w http.ResponseWriter, _ *http.Request) {
		testbackend.WriteJSON(w, http.StatusOK, apiclient.DashboardStats{TotalResumes: 4, TotalJobs: 2})
	})
	s := f.signIn(t, session.Tokens{Access: "A1", Refresh: "R1"})

	resp := f.get(t, "/dashboard")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Resumes Uploaded")

	access := get(t, s, session.KeyAccessToken)
	assert.NotEqual(t, "A1", access)
	assert.NotEmpty(t, access)
	assert.Equal(t, "R1", get(t, s, session.KeyRefreshToken))
	assert.Len(t, f.backend.Calls("token/refresh/"), 1)
}

func TestDashboard_FailedRefreshSendsBrowserToLogin(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.Handle("GET dashboard/stats/", func(w http.ResponseWriter, _ *http.Request) {
		testbackend.WriteJSON(w, http.StatusOK, apiclient.DashboardStats{})
	})
	s := f.signIn(t, session.Tokens{Access: "A1", Refresh: "R1"})

	resp := f.get(t, "/dashboard")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login?next=%2Fdashboard", resp.Header.Get("Location"))
	assert.Empty(t, get(t, s, session.KeyAccessToken))
	assert.Empty(t, get(t, s, session.KeyRefreshToken))
}

func TestDashboard_BackendErrorRenderedInline(t *testing.T) {
	f := setupTestFixture(t)
	tokens := f.backend.IssueTokens(1)
	f.backend.Handle("GET dashboard/stats/", func(w http.ResponseWriter, _ *http.Request) {
		testbackend.WriteJSON(w, http.StatusForbidden, map[string]string{"detail": "You do not have permission to perform this action."})
	})
	f.signIn(t, tokens)

	resp := f.get(t, "/dashboard")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "You do not have permission to perform this action.")
	assert.Zero(t, f.backend.Unauthorized())
}

func TestAnalysis_MergesLatestResumeOnce(t *testing.T) {
	f := setupTestFixture(t)
	tokens := f.backend.IssueTokens(1)
	f.backend.Handle("GET resumes/", resumeList)
	f.backend.Handle("GET jobs/", jobList)
	s := f.signIn(t, tokens)

	latest, err := json.Marshal(apiclient.Resume{ID: 9, File: "/media/resumes/fresh.pdf"})
	require.NoError(t, err)
	require.NoError(t, s.Set(context.Background(), session.KeyLatestResume, string(latest)))

	resp := f.get(t, "/analysis")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "fresh.pdf")
	assert.Contains(t, body, "cv.pdf")
	assert.Contains(t, body, "Go Engineer")
	assert.Empty(t, get(t, s, session.KeyLatestResume))
}

func TestAnalysis_RequiresBothSelections(t *testing.T) {
	f := setupTestFixture(t)
	tokens := f.backend.IssueTokens(1)
	f.backend.Handle("GET resumes/", resumeList)
	f.backend.Handle("GET jobs/", jobList)
	f.signIn(t, tokens)

	resp := f.postForm(t, "/analysis", url.Values{"resume_id": {"7"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Please select both a resume and a job description")
	assert.Empty(t, f.backend.Calls("analyze/"))
}

func TestAnalysis_ShowsResult(t *testing.T) {
	f := setupTestFixture(t)
	tokens := f.backend.IssueTokens(1)
	f.backend.Handle("GET resumes/", resumeList)
	f.backend.Handle("GET jobs/", jobList)
	f.backend.Handle("POST analyze/", func(w http.ResponseWriter, r *http.Request) {
		var in apiclient.AnalysisRequest
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.ResumeID != 7 || in.JobID != 3 {
			testbackend.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "wrong ids"})
			return
		}
		testbackend.WriteJSON(w, http.StatusOK, apiclient.Analysis{
			JobSkills:     []string{"Go", "Kubernetes"},
			MissingSkills: []string{"Kubernetes"},
			MatchPercent:  50,
		})
	})
	f.signIn(t, tokens)

	resp := f.postForm(t, "/analysis", url.Values{"resume_id": {"7"}, "job_id": {"3"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "Match: 50%")
	assert.Contains(t, body, "Kubernetes")
}

func TestUploadResume_RejectsUnsupportedFileWithoutUploading(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t, f.backend.IssueTokens(1))

	resp := f.postFile(t, "/upload-resume", "file", "cv.txt", []byte("plain text"))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Please upload a PDF, DOC, or DOCX file")
	assert.Empty(t, f.backend.Calls("resumes/"))
}

func TestUploadResume_CachesLatestResume(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.Handle("POST resumes/", func(w http.ResponseWriter, r *http.Request) {
		if _, _, err := r.FormFile("file"); err != nil {
			testbackend.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "No file provided"})
			return
		}
		testbackend.WriteJSON(w, http.StatusCreated, apiclient.Created[apiclient.Resume]{
			Message: "Resume uploaded successfully",
			ID:      12,
			Data:    apiclient.Resume{ID: 12, File: "/media/resumes/cv.doc"},
		})
	})
	s := f.signIn(t, f.backend.IssueTokens(1))

	doc := append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, make([]byte, 512)...)
	resp := f.postFile(t, "/upload-resume", "file", "cv.doc", doc)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Resume uploaded successfully")

	var cached apiclient.Resume
	require.NoError(t, json.Unmarshal([]byte(get(t, s, session.KeyLatestResume)), &cached))
	assert.Equal(t, 12, cached.ID)
}

func TestUploadJob_ShortDescriptionRejected(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t, f.backend.IssueTokens(1))

	resp := f.postForm(t, "/upload-job", url.Values{"title": {"Go Engineer"}, "description": {"too short"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Job description must be at least 50 characters long")
	assert.Empty(t, f.backend.Calls("jobs/"))
}

func TestUploadJob_CreatesAndReturnsToDashboard(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.Handle("POST jobs/", func(w http.ResponseWriter, _ *http.Request) {
		testbackend.WriteJSON(w, http.StatusCreated, apiclient.Created[apiclient.Job]{ID: 3, Data: apiclient.Job{Title: "Go Engineer"}})
	})
	f.signIn(t, f.backend.IssueTokens(1))

	resp := f.postForm(t, "/upload-job", url.Values{
		"title":       {"Go Engineer"},
		"description": {strings.Repeat("Build and run distributed services. ", 3)},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))

	calls := f.backend.Calls("jobs/")
	require.Len(t, calls, 1)
	var sent apiclient.Job
	require.NoError(t, json.Unmarshal(calls[0].Body, &sent))
	assert.Equal(t, "Go Engineer", sent.Title)
}

func TestDeleteJob_ErrorReturnsToAnalysisWithMessage(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t, f.backend.IssueTokens(1))

	resp := f.postForm(t, "/jobs/3/delete", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/analysis?error=Not+found.", resp.Header.Get("Location"))
}

func TestProfile_UpdateRefreshesStoredUser(t *testing.T) {
	f := setupTestFixture(t)
	profile := apiclient.Profile{User: session.User{ID: 1, Username: testUsername, FirstName: "Ada"}}
	f.backend.Handle("GET auth/profile/", func(w http.ResponseWriter, _ *http.Request) {
		testbackend.WriteJSON(w, http.StatusOK, profile)
	})
	f.backend.Handle("PATCH auth/profile/", func(w http.ResponseWriter, r *http.Request) {
		var update apiclient.ProfileUpdate
		_ = json.NewDecoder(r.Body).Decode(&update)
		updated := profile
		updated.Phone = utils.Value(update.Phone)
		updated.Bio = utils.Value(update.Bio)
		updated.User.LastName = "Lovelace"
		testbackend.WriteJSON(w, http.StatusOK, updated)
	})
	s := f.signIn(t, f.backend.IssueTokens(1))

	resp := f.postForm(t, "/profile", url.Values{"phone": {"0123"}, "bio": {"Engineer"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Profile updated successfully!")

	calls := f.backend.Calls("auth/profile/")
	require.NotEmpty(t, calls)
	assert.JSONEq(t, `{"phone":"0123","bio":"Engineer"}`, string(calls[len(calls)-1].Body))

	user, err := session.CurrentUser(context.Background(), s)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Ada Lovelace", user.DisplayName())
}

func TestResumeDownload_SendsAttachment(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t, f.backend.IssueTokens(1))

	resp := f.postForm(t, "/resume-generator/download", url.Values{"name": {"Ada Lovelace"}, "resume": {"ADA LOVELACE\nEngineer"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `attachment; filename="Ada_Lovelace_resume.txt"`, resp.Header.Get("Content-Disposition"))
	assert.Equal(t, "ADA LOVELACE\nEngineer", readBody(t, resp))
}

func TestHealth(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		f := setupTestFixture(t, server.WithHealthCheck("sessions", func(context.Context) error { return nil }))
		resp := f.get(t, "/healthz")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"status":"ok","checks":{"sessions":"ok"}}`, readBody(t, resp))
	})

	t.Run("failing check", func(t *testing.T) {
		f := setupTestFixture(t, server.WithHealthCheck("sessions", func(context.Context) error { return errors.New("redis down") }))
		resp := f.get(t, "/healthz")
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.JSONEq(t, `{"status":"unavailable","checks":{"sessions":"redis down"}}`, readBody(t, resp))
	})
}

func TestStaticAssets(t *testing.T) {
	f := setupTestFixture(t)

	resp := f.get(t, "/css/app.css")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/css")
	assert.NotEmpty(t, resp.Header.Get("Cache-Control"))
}

func TestRegister_MismatchedPasswordsNeverReachBackend(t *testing.T) {
	f := setupTestFixture(t)

	resp := f.postForm(t, "/register", url.Values{
		"username":         {"grace"},
		"email":            {"grace@example.com"},
		"password":         {"secret1"},
		"password_confirm": {"secret2"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Passwords do not match")
	assert.Empty(t, f.backend.Calls("auth/register/"))
}

func TestRegister_SuccessShowsMessageOnLogin(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.HandlePublic("POST auth/register/", func(w http.ResponseWriter, _ *http.Request) {
		testbackend.WriteJSON(w, http.StatusCreated, apiclient.RegisterResult{Message: "User created"})
	})

	resp := f.postForm(t, "/register", url.Values{
		"username":         {"grace"},
		"email":            {"grace@example.com"},
		"password":         {"secret1"},
		"password_confirm": {"secret1"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/login?registered=1", resp.Header.Get("Location"))

	page := f.get(t, "/login?registered=1")
	assert.Contains(t, readBody(t, page), "Registration successful! Please log in.")
}

func TestRegister_BackendFieldErrorShownInline(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.HandlePublic("POST auth/register/", func(w http.ResponseWriter, _ *http.Request) {
		testbackend.WriteJSON(w, http.StatusBadRequest, map[string][]string{
			"username": {"A user with that username already exists."},
		})
	})

	resp := f.postForm(t, "/register", url.Values{
		"username":         {"grace"},
		"email":            {"grace@example.com"},
		"password":         {"secret1"},
		"password_confirm": {"secret1"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "A user with that username already exists.")
}

func TestForgotPassword_ShowsConfirmation(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.HandlePublic("POST auth/password-reset/", func(w http.ResponseWriter, _ *http.Request) {
		testbackend.WriteJSON(w, http.StatusOK, apiclient.PasswordResetResult{
			Message:  "Reset link sent",
			ResetURL: "http://localhost:3000/reset-password?token=abc",
		})
	})

	resp := f.postForm(t, "/forgot-password", url.Values{"email": {"ada@example.com"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "Reset link sent")
	assert.NotContains(t, body, "token=abc", "reset links are only shown in DEV")
}

func TestResetPassword_ConfirmsAndReturnsToLogin(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.HandlePublic("POST auth/password-reset-confirm/", func(w http.ResponseWriter, _ *http.Request) {
		testbackend.WriteJSON(w, http.StatusOK, apiclient.MessageResult{Message: "Password reset"})
	})

	resp := f.postForm(t, "/reset-password", url.Values{
		"token":                {"abc"},
		"new_password":         {"secret9"},
		"new_password_confirm": {"secret9"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login?reset=1", resp.Header.Get("Location"))

	calls := f.backend.Calls("auth/password-reset-confirm/")
	require.Len(t, calls, 1)
	var sent apiclient.PasswordResetConfirm
	require.NoError(t, json.Unmarshal(calls[0].Body, &sent))
	assert.Equal(t, "abc", sent.Token)
}

var hiddenNext = regexp.MustCompile(`name="next" value="([^"]*)"`)

func TestLogin_ReturnsToGuardedPageThroughRenderedForm(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{name: "dashboard", path: "/dashboard"},
		{name: "path with query", path: "/analysis?resume_id=7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestFixture(t)
			f.backend.AddUser(testUsername, testPassword)

			guarded := f.get(t, tt.path)
			require.Equal(t, http.StatusSeeOther, guarded.StatusCode)
			loginURL := guarded.Header.Get("Location")

			page := f.get(t, loginURL)
			require.Equal(t, http.StatusOK, page.StatusCode)
			m := hiddenNext.FindStringSubmatch(readBody(t, page))
			require.Len(t, m, 2, "login form must carry next")
			next := html.UnescapeString(m[1])
			assert.Equal(t, tt.path, next)

			resp := f.postForm(t, "/login", url.Values{
				"username": {testUsername},
				"password": {testPassword},
				"next":     {next},
			})
			require.Equal(t, http.StatusSeeOther, resp.StatusCode)
			assert.Equal(t, tt.path, resp.Header.Get("Location"))
		})
	}
}

func TestLogin_FailedAttemptKeepsExistingSession(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.AddUser(testUsername, testPassword)
	s := f.signIn(t, session.Tokens{Access: "A1", Refresh: "R1"})

	resp := f.postForm(t, "/login", url.Values{"username": {testUsername}, "password": {"wrong"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Invalid credentials")

	calls := f.backend.Calls("auth/login/")
	require.Len(t, calls, 1)
	assert.Empty(t, calls[0].Authorization)
	assert.Equal(t, "A1", get(t, s, session.KeyAccessToken))
	assert.Equal(t, "R1", get(t, s, session.KeyRefreshToken))
}
