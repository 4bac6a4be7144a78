package apiclient

import (
	"context"
	"net/http"
	"strconv"

	"github.com/jrsteele09/careergap-web/session"
)

func itoa(id int) string {
	return strconv.Itoa(id)
}

// call sends req and decodes a successful body into out (which may be nil).
func (c *Client) call(ctx context.Context, store session.Store, req *Request, out any) error {
	resp, err := c.Do(ctx, store, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return resp.Decode(out)
}

func (c *Client) callJSON(ctx context.Context, store session.Store, method, path string, in, out any) error {
	req, err := JSONRequest(method, path, in)
	if err != nil {
		return err
	}
	return c.call(ctx, store, req, out)
}

// AuthAPI covers the auth/ endpoints.
type AuthAPI struct{ c *Client }

func (c *Client) Auth() AuthAPI { return AuthAPI{c} }

func (a AuthAPI) Login(ctx context.Context, store session.Store, creds Credentials) (*LoginResult, error) {
	var out LoginResult
	if err := a.c.callJSON(ctx, store, http.MethodPost, "auth/login/", creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a AuthAPI) Register(ctx context.Context, store session.Store, reg Registration) (*RegisterResult, error) {
	var out RegisterResult
	if err := a.c.callJSON(ctx, store, http.MethodPost, "auth/register/", reg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout blacklists the refresh token on the backend.
func (a AuthAPI) Logout(ctx context.Context, store session.Store, refreshToken string) error {
	return a.c.callJSON(ctx, store, http.MethodPost, "auth/logout/", refreshRequest{Refresh: refreshToken}, nil)
}

func (a AuthAPI) ChangePassword(ctx context.Context, store session.Store, change PasswordChange) (*MessageResult, error) {
	var out MessageResult
	if err := a.c.callJSON(ctx, store, http.MethodPost, "auth/change-password/", change, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a AuthAPI) RequestPasswordReset(ctx context.Context, store session.Store, email string) (*PasswordResetResult, error) {
	var out PasswordResetResult
	body := struct {
		Email string `json:"email"`
	}{email}
	if err := a.c.callJSON(ctx, store, http.MethodPost, "auth/password-reset/", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a AuthAPI) ConfirmPasswordReset(ctx context.Context, store session.Store, confirm PasswordResetConfirm) (*MessageResult, error) {
	var out MessageResult
	if err := a.c.callJSON(ctx, store, http.MethodPost, "auth/password-reset-confirm/", confirm, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a AuthAPI) Profile(ctx context.Context, store session.Store) (*Profile, error) {
	var out Profile
	if err := a.c.call(ctx, store, NewRequest(http.MethodGet, "auth/profile/"), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a AuthAPI) UpdateProfile(ctx context.Context, store session.Store, update ProfileUpdate) (*Profile, error) {
	var out Profile
	if err := a.c.callJSON(ctx, store, http.MethodPatch, "auth/profile/", update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GoogleLoginURL is where the browser is sent to start Google sign-in. The
// backend performs the exchange and redirects back with tokens.
func (a AuthAPI) GoogleLoginURL() string {
	return a.c.URL("auth/google/login/", nil)
}

type DashboardAPI struct{ c *Client }

func (c *Client) Dashboard() DashboardAPI { return DashboardAPI{c} }

func (d DashboardAPI) Stats(ctx context.Context, store session.Store) (*DashboardStats, error) {
	var out DashboardStats
	if err := d.c.call(ctx, store, NewRequest(http.MethodGet, "dashboard/stats/"), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type ResumesAPI struct{ c *Client }

func (c *Client) Resumes() ResumesAPI { return ResumesAPI{c} }

// Upload sends the résumé as the multipart field "file" with the upload timeout.
func (r ResumesAPI) Upload(ctx context.Context, store session.Store, filename string, data []byte) (*Created[Resume], error) {
	req, err := MultipartRequest("resumes/", File{Field: "file", Name: filename, Data: data}, nil)
	if err != nil {
		return nil, err
	}
	req.Timeout = r.c.cfg.UploadTimeout

	var out Created[Resume]
	if err := r.c.call(ctx, store, req, &out); err != nil {
		return nil, err
	}
	if out.Data.ID == 0 {
		out.Data.ID = out.ID
	}
	return &out, nil
}

func (r ResumesAPI) List(ctx context.Context, store session.Store) ([]Resume, error) {
	var out []Resume
	if err := r.c.call(ctx, store, NewRequest(http.MethodGet, "resumes/"), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r ResumesAPI) Get(ctx context.Context, store session.Store, id int) (*Resume, error) {
	var out Resume
	if err := r.c.call(ctx, store, NewRequest(http.MethodGet, "resumes/"+itoa(id)+"/"), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r ResumesAPI) Analyze(ctx context.Context, store session.Store, id int) (*Response, error) {
	return r.c.Do(ctx, store, NewRequest(http.MethodPost, "resumes/"+itoa(id)+"/analyze/"))
}

func (r ResumesAPI) Delete(ctx context.Context, store session.Store, id int) error {
	return r.c.call(ctx, store, NewRequest(http.MethodDelete, "resumes/"+itoa(id)+"/"), nil)
}

type JobsAPI struct{ c *Client }

func (c *Client) Jobs() JobsAPI { return JobsAPI{c} }

func (j JobsAPI) Create(ctx context.Context, store session.Store, job Job) (*Created[Job], error) {
	var out Created[Job]
	if err := j.c.callJSON(ctx, store, http.MethodPost, "jobs/", job, &out); err != nil {
		return nil, err
	}
	if out.Data.ID == 0 {
		out.Data.ID = out.ID
	}
	return &out, nil
}

func (j JobsAPI) Update(ctx context.Context, store session.Store, id int, job Job) (*Job, error) {
	var out Job
	if err := j.c.callJSON(ctx, store, http.MethodPut, "jobs/"+itoa(id)+"/", job, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (j JobsAPI) List(ctx context.Context, store session.Store) ([]Job, error) {
	var out []Job
	if err := j.c.call(ctx, store, NewRequest(http.MethodGet, "jobs/"), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (j JobsAPI) Get(ctx context.Context, store session.Store, id int) (*Job, error) {
	var out Job
	if err := j.c.call(ctx, store, NewRequest(http.MethodGet, "jobs/"+itoa(id)+"/"), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (j JobsAPI) Analyze(ctx context.Context, store session.Store, id int) (*Response, error) {
	return j.c.Do(ctx, store, NewRequest(http.MethodPost, "jobs/"+itoa(id)+"/analyze/"))
}

func (j JobsAPI) Delete(ctx context.Context, store session.Store, id int) error {
	return j.c.call(ctx, store, NewRequest(http.MethodDelete, "jobs/"+itoa(id)+"/"), nil)
}

type ResumeGenAPI struct{ c *Client }

func (c *Client) ResumeGen() ResumeGenAPI { return ResumeGenAPI{c} }

func (g ResumeGenAPI) Generate(ctx context.Context, store session.Store, in ResumeInput) (*GeneratedResume, error) {
	var out GeneratedResume
	if err := g.c.callJSON(ctx, store, http.MethodPost, "generate-resume/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g ResumeGenAPI) Build(ctx context.Context, store session.Store, in ResumeInput) (*GeneratedResume, error) {
	var out GeneratedResume
	if err := g.c.callJSON(ctx, store, http.MethodPost, "resume/build/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g ResumeGenAPI) Preview(ctx context.Context, store session.Store, id int) (*GeneratedResume, error) {
	var out GeneratedResume
	if err := g.c.call(ctx, store, NewRequest(http.MethodGet, "resume/preview/"+itoa(id)+"/"), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type AnalyzeAPI struct{ c *Client }

func (c *Client) Analyze() AnalyzeAPI { return AnalyzeAPI{c} }

func (a AnalyzeAPI) Analyze(ctx context.Context, store session.Store, in AnalysisRequest) (*Analysis, error) {
	var out Analysis
	if err := a.c.callJSON(ctx, store, http.MethodPost, "analyze/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type SpeakAPI struct{ c *Client }

func (c *Client) Speak() SpeakAPI { return SpeakAPI{c} }

// Assess uploads a recording as the multipart field "audio" with the audio timeout.
func (s SpeakAPI) Assess(ctx context.Context, store session.Store, filename, mimeType string, data []byte) (*SpeechAssessment, error) {
	req, err := MultipartRequest("speak-assessment/", File{Field: "audio", Name: filename, Data: data, MimeType: mimeType}, nil)
	if err != nil {
		return nil, err
	}
	req.Timeout = s.c.cfg.AudioTimeout

	var out SpeechAssessment
	if err := s.c.call(ctx, store, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
