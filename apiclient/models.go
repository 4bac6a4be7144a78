package apiclient

import (
	"strings"

	"github.com/jrsteele09/careergap-web/session"
)

type User = session.User

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResult struct {
	Message string         `json:"message"`
	User    User           `json:"user"`
	Tokens  session.Tokens `json:"tokens"`
}

type Registration struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
}

type RegisterResult struct {
	Message string `json:"message"`
	User    User   `json:"user"`
}

type PasswordChange struct {
	OldPassword        string `json:"old_password"`
	NewPassword        string `json:"new_password"`
	NewPasswordConfirm string `json:"new_password_confirm"`
}

type PasswordResetConfirm struct {
	Token              string `json:"token"`
	NewPassword        string `json:"new_password"`
	NewPasswordConfirm string `json:"new_password_confirm"`
}

type PasswordResetResult struct {
	Message string `json:"message"`
	// ResetURL is only returned by development backends
	ResetURL string `json:"reset_url,omitempty"`
}

// MessageResult is the body of endpoints that only acknowledge
type MessageResult struct {
	Message string `json:"message"`
}

type Profile struct {
	ID         int    `json:"id"`
	User       User   `json:"user"`
	Phone      string `json:"phone"`
	Bio        string `json:"bio"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
	LastLogin  string `json:"last_login"`
	IsVerified bool   `json:"is_verified"`
}

// ProfileUpdate is a partial update; nil fields are left unchanged.
type ProfileUpdate struct {
	Phone *string `json:"phone,omitempty"`
	Bio   *string `json:"bio,omitempty"`
}

type Activity struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Time   string `json:"time"`
	Status string `json:"status"`
	Icon   string `json:"icon"`
}

type DashboardStats struct {
	TotalResumes     int        `json:"total_resumes"`
	TotalJobs        int        `json:"total_jobs"`
	TotalAnalyses    int        `json:"total_analyses"`
	RecentActivities []Activity `json:"recent_activities"`
	MatchAccuracy    float64    `json:"match_accuracy"`
	AvgAnalysisTime  float64    `json:"avg_analysis_time"`
}

type Resume struct {
	ID               int     `json:"id"`
	User             int     `json:"user"`
	Username         string  `json:"username"`
	File             string  `json:"file"`
	ParsedText       string  `json:"parsed_text"`
	UploadedAt       string  `json:"uploaded_at"`
	UpdatedAt        string  `json:"updated_at"`
	FileSize         int64   `json:"file_size"`
	FileSizeMB       float64 `json:"file_size_mb"`
	FileType         string  `json:"file_type"`
	IsProcessed      bool    `json:"is_processed"`
	ProcessingStatus string  `json:"processing_status"`
}

// DisplayName is the last path element of the stored file, or a numbered label.
func (r Resume) DisplayName() string {
	if r.File != "" {
		name := r.File
		if i := strings.LastIndex(name, "/"); i >= 0 {
			name = name[i+1:]
		}
		if name != "" {
			return name
		}
	}
	return "Resume #" + itoa(r.ID)
}

type Job struct {
	ID             int    `json:"id,omitempty"`
	User           int    `json:"user,omitempty"`
	Username       string `json:"username,omitempty"`
	Title          string `json:"title"`
	Company        string `json:"company"`
	Location       string `json:"location"`
	Description    string `json:"description"`
	Requirements   string `json:"requirements"`
	Salary         string `json:"salary"`
	JobType        string `json:"job_type"`
	UploadedAt     string `json:"uploaded_at,omitempty"`
	UpdatedAt      string `json:"updated_at,omitempty"`
	IsAnalyzed     bool   `json:"is_analyzed,omitempty"`
	AnalysisStatus string `json:"analysis_status,omitempty"`
}

// Created is the envelope returned by resume and job creation
type Created[T any] struct {
	Message string `json:"message"`
	ID      int    `json:"id"`
	Data    T      `json:"data"`
}

type AnalysisRequest struct {
	ResumeID int `json:"resume_id"`
	JobID    int `json:"job_id"`
}

type ResumeOverview struct {
	// the backend spells this key "has_experirnce"
	HasExperience   bool   `json:"has_experirnce"`
	HasEducation    bool   `json:"has_education"`
	YearsExperience string `json:"year_experience"`
}

type Analysis struct {
	ResumeSkills    []string       `json:"resume_skills"`
	JobSkills       []string       `json:"job_skills"`
	MissingSkills   []string       `json:"missing_skills"`
	MatchPercent    float64        `json:"match_percent"`
	Recommendations []string       `json:"recommendations"`
	ResumeOverview  ResumeOverview `json:"resume_overview"`
}

// MatchedSkills are the job skills the résumé already covers.
func (a Analysis) MatchedSkills() []string {
	missing := make(map[string]struct{}, len(a.MissingSkills))
	for _, s := range a.MissingSkills {
		missing[strings.ToLower(s)] = struct{}{}
	}
	var matched []string
	for _, s := range a.JobSkills {
		if _, ok := missing[strings.ToLower(s)]; !ok {
			matched = append(matched, s)
		}
	}
	return matched
}

type ResumeInput struct {
	Name         string   `json:"name"`
	Role         string   `json:"role"`
	Education    string   `json:"education"`
	Skills       string   `json:"skills"`
	Projects     []string `json:"projects"`
	Internship   string   `json:"internship"`
	Achievements []string `json:"achievements"`
}

type GeneratedResume struct {
	ID              int    `json:"id,omitempty"`
	FormattedResume string `json:"formatted_resume"`
}

type SpeechAssessment struct {
	Transcript string  `json:"transcript"`
	Clarity    float64 `json:"clarity"`
	Confidence float64 `json:"confidence"`
	Fluency    float64 `json:"fluency"`
	Feedback   string  `json:"feedback"`
}

// SplitList turns a comma separated form value into trimmed, non-empty items.
func SplitList(s string) []string {
	items := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			items = append(items, p)
		}
	}
	return items
}
