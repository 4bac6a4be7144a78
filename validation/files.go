package validation

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const (
	MaxResumeSize = 5 << 20
	MaxAudioSize  = 25 << 20
)

var resumeExtensions = map[string]struct{}{
	".pdf":  {},
	".doc":  {},
	".docx": {},
}

// Legacy Word files are OLE compound documents
var oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// ResumeFile accepts a non-empty PDF, DOC or DOCX of at most 5 MB that opens
// as the format its extension claims.
func ResumeFile(name string, data []byte) error {
	errs := &Errors{}
	ext := strings.ToLower(filepath.Ext(name))

	switch {
	case name == "" || len(data) == 0:
		errs.Add("file", "Please select a file to upload")
	case !isResumeExt(ext):
		errs.Add("file", "Please upload a PDF, DOC, or DOCX file")
	case len(data) > MaxResumeSize:
		errs.Add("file", "File size must be less than 5MB")
	default:
		if err := checkReadable(ext, data); err != nil {
			errs.Add("file", fmt.Sprintf("The %s file appears to be damaged and could not be read", strings.ToUpper(ext[1:])))
		}
	}
	return errs.orNil()
}

// AudioFile accepts a non-empty audio/* upload of at most 25 MB.
func AudioFile(name, contentType string, size int64) error {
	errs := &Errors{}
	switch {
	case name == "" || size == 0:
		errs.Add("audio", "Please record or upload an audio file")
	case !strings.HasPrefix(strings.ToLower(contentType), "audio/"):
		errs.Add("audio", "Please upload an audio file")
	case size > MaxAudioSize:
		errs.Add("audio", "Audio file must be less than 25MB")
	}
	return errs.orNil()
}

// ResumeText extracts plain text from a PDF or DOCX résumé for preview.
// Legacy DOC files yield no text.
func ResumeText(name string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return "", fmt.Errorf("failed to read pdf: %w", err)
		}
		var sb strings.Builder
		for i := 1; i <= r.NumPage(); i++ {
			page := r.Page(i)
			if page.V.IsNull() {
				continue
			}
			text, _ := page.GetPlainText(nil)
			sb.WriteString(text)
		}
		return strings.TrimSpace(sb.String()), nil
	case ".docx":
		doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return "", fmt.Errorf("failed to parse docx: %w", err)
		}
		defer doc.Close()
		return strings.TrimSpace(stripXML(doc.Editable().GetContent())), nil
	}
	return "", nil
}

func isResumeExt(ext string) bool {
	_, ok := resumeExtensions[ext]
	return ok
}

func checkReadable(ext string, data []byte) error {
	switch ext {
	case ".pdf":
		r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return err
		}
		if r.NumPage() == 0 {
			return fmt.Errorf("pdf has no pages")
		}
	case ".docx":
		doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return err
		}
		return doc.Close()
	case ".doc":
		if !bytes.HasPrefix(data, oleSignature) {
			return fmt.Errorf("not a word document")
		}
	}
	return nil
}

// stripXML drops the markup GetContent leaves around document text.
func stripXML(s string) string {
	var sb strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			sb.WriteByte(' ')
		case !inTag:
			sb.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}
