package validation_test

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"testing"

	apperrors "github.com/jrsteele09/careergap-web/internal/errors"
	"github.com/jrsteele09/careergap-web/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fields(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, apperrors.ErrValidation)
	var verr *validation.Errors
	require.ErrorAs(t, err, &verr)
	return verr.Fields()
}

func TestValidate_Login(t *testing.T) {
	require.NoError(t, validation.Validate(validation.LoginForm{Username: "ada", Password: "x"}))

	f := fields(t, validation.Validate(validation.LoginForm{}))
	assert.Equal(t, "Username is required", f["username"])
	assert.Equal(t, "Password is required", f["password"])
}

func TestValidate_Register(t *testing.T) {
	valid := validation.RegisterForm{Username: "ada", Email: "ada@example.com", Password: "secret1", PasswordConfirm: "secret1"}
	require.NoError(t, validation.Validate(valid))

	t.Run("bad email", func(t *testing.T) {
		form := valid
		form.Email = "ada"
		assert.Equal(t, "Please enter a valid email address", fields(t, validation.Validate(form))["email"])
	})

	t.Run("short password", func(t *testing.T) {
		form := valid
		form.Password, form.PasswordConfirm = "abc", "abc"
		assert.Equal(t, "Password must be at least 6 characters long", fields(t, validation.Validate(form))["password"])
	})

	t.Run("mismatch", func(t *testing.T) {
		form := valid
		form.PasswordConfirm = "secret2"
		var verr *validation.Errors
		require.ErrorAs(t, validation.Validate(form), &verr)
		assert.Equal(t, "Passwords do not match", verr.First())
	})
}

func TestValidate_ChangePassword(t *testing.T) {
	err := validation.Validate(validation.ChangePasswordForm{OldPassword: "old", NewPassword: "newpass", NewPasswordConfirm: "other"})
	assert.Equal(t, "Passwords do not match", fields(t, err)["new_password_confirm"])
}

func TestValidate_Job(t *testing.T) {
	err := validation.Validate(validation.JobForm{Title: "Go Engineer", Description: "Too short"})
	assert.Equal(t, "Job description must be at least 50 characters long", fields(t, err)["description"])

	require.NoError(t, validation.Validate(validation.JobForm{
		Title:       "Go Engineer",
		Description: strings.Repeat("Go, Docker, Kubernetes. ", 3),
	}))
}

func TestValidate_Analysis(t *testing.T) {
	var verr *validation.Errors
	require.ErrorAs(t, validation.Validate(validation.AnalysisForm{ResumeID: 3}), &verr)
	assert.Equal(t, "Please select both a resume and a job description", verr.First())
	require.NoError(t, validation.Validate(validation.AnalysisForm{ResumeID: 3, JobID: 4}))
}

func TestValidate_ResumeGen(t *testing.T) {
	f := fields(t, validation.Validate(validation.ResumeGenForm{Name: "Ada"}))
	assert.Equal(t, "Role is required", f["role"])
	assert.Equal(t, "Education is required", f["education"])
	assert.Equal(t, "Skills are required", f["skills"])
	assert.NotContains(t, f, "name")
}

func TestValues(t *testing.T) {
	v := validation.Values{"username": {"  ada "}, "password": {" pw "}, "resume_id": {"12"}, "job_id": {"x"}}
	assert.Equal(t, "ada", v.Text("username"))
	assert.Equal(t, " pw ", v.Secret("password"))
	assert.Equal(t, 12, v.ID("resume_id"))
	assert.Equal(t, 0, v.ID("job_id"))
}

func TestResumeFile(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		data    []byte
		wantErr string
	}{
		{"valid pdf", "cv.pdf", minimalPDF(), ""},
		{"valid docx", "cv.DOCX", minimalDOCX(t, "Ada Lovelace"), ""},
		{"valid doc", "cv.doc", append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, 0, 0), ""},
		{"missing", "", nil, "Please select a file to upload"},
		{"wrong type", "cv.txt", []byte("hello"), "Please upload a PDF, DOC, or DOCX file"},
		{"too large", "cv.pdf", make([]byte, validation.MaxResumeSize+1), "File size must be less than 5MB"},
		{"corrupt pdf", "cv.pdf", []byte("%PDF-1.4 not really"), "The PDF file appears to be damaged and could not be read"},
		{"corrupt docx", "cv.docx", []byte("PK not a zip"), "The DOCX file appears to be damaged and could not be read"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.ResumeFile(tt.file, tt.data)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			assert.Equal(t, tt.wantErr, fields(t, err)["file"])
		})
	}
}

func TestAudioFile(t *testing.T) {
	require.NoError(t, validation.AudioFile("speech.webm", "audio/webm", 1024))

	assert.Equal(t, "Please record or upload an audio file", fields(t, validation.AudioFile("", "", 0))["audio"])
	assert.Equal(t, "Please upload an audio file", fields(t, validation.AudioFile("a.mp4", "video/mp4", 10))["audio"])
	assert.Equal(t, "Audio file must be less than 25MB", fields(t, validation.AudioFile("a.wav", "audio/wav", validation.MaxAudioSize+1))["audio"])
}

func TestResumeText_DOCX(t *testing.T) {
	text, err := validation.ResumeText("cv.docx", minimalDOCX(t, "Ada Lovelace"))
	require.NoError(t, err)
	assert.Contains(t, text, "Ada Lovelace")

	text, err = validation.ResumeText("cv.doc", []byte{0xD0})
	require.NoError(t, err)
	assert.Empty(t, text)
}

// minimalPDF builds a one-page PDF with a correct cross-reference table.
func minimalPDF() []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func minimalDOCX(t *testing.T, text string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`,
		"word/document.xml": `<?xml version="1.0" encoding="UTF-8"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
			`<w:body><w:p><w:r><w:t>` + text + `</w:t></w:r></w:p></w:body></w:document>`,
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
	}
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}
