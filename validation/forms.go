package validation

import (
	"net/url"
	"strconv"
	"strings"
)

type LoginForm struct {
	Username string `form:"username" label:"Username" validate:"required"`
	Password string `form:"password" label:"Password" validate:"required"`
}

type RegisterForm struct {
	Username        string `form:"username" label:"Username" validate:"required"`
	Email           string `form:"email" label:"Email" validate:"required,email"`
	Password        string `form:"password" label:"Password" validate:"required,min=6"`
	PasswordConfirm string `form:"password_confirm" label:"Password confirmation" validate:"required,eqfield=Password"`
	FirstName       string `form:"first_name"`
	LastName        string `form:"last_name"`
}

type ForgotPasswordForm struct {
	Email string `form:"email" label:"Email" validate:"required,email"`
}

type ResetPasswordForm struct {
	Token              string `form:"token" msg:"The reset link is invalid or incomplete" validate:"required"`
	NewPassword        string `form:"new_password" label:"New password" validate:"required,min=6"`
	NewPasswordConfirm string `form:"new_password_confirm" label:"Password confirmation" validate:"required,eqfield=NewPassword"`
}

type ChangePasswordForm struct {
	OldPassword        string `form:"old_password" label:"Current password" validate:"required"`
	NewPassword        string `form:"new_password" label:"New password" validate:"required,min=6"`
	NewPasswordConfirm string `form:"new_password_confirm" label:"Password confirmation" validate:"required,eqfield=NewPassword"`
}

type ProfileForm struct {
	Phone string `form:"phone" label:"Phone" validate:"omitempty,max=20"`
	Bio   string `form:"bio" label:"Bio" validate:"omitempty,max=500"`
}

type JobForm struct {
	Title        string `form:"title" label:"Job title" validate:"required"`
	Company      string `form:"company"`
	Location     string `form:"location"`
	Description  string `form:"description" label:"Job description" validate:"required,min=50"`
	Requirements string `form:"requirements"`
	Salary       string `form:"salary"`
	JobType      string `form:"job_type"`
}

type AnalysisForm struct {
	ResumeID int `form:"resume_id" msg:"Please select both a resume and a job description" validate:"required"`
	JobID    int `form:"job_id" msg:"Please select both a resume and a job description" validate:"required"`
}

type ResumeGenForm struct {
	Name         string `form:"name" label:"Name" validate:"required"`
	Role         string `form:"role" label:"Role" validate:"required"`
	Education    string `form:"education" label:"Education" validate:"required"`
	Skills       string `form:"skills" msg:"Skills are required" validate:"required"`
	Projects     string `form:"projects"`
	Internship   string `form:"internship"`
	Achievements string `form:"achievements"`
}

// Values reads trimmed form values. Passwords are read as typed.
type Values url.Values

func (v Values) Text(key string) string {
	return strings.TrimSpace(url.Values(v).Get(key))
}

func (v Values) Secret(key string) string {
	return url.Values(v).Get(key)
}

// ID reads a positive integer, or 0 when the value is missing or malformed.
func (v Values) ID(key string) int {
	id, err := strconv.Atoi(v.Text(key))
	if err != nil || id < 0 {
		return 0
	}
	return id
}
