package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"time"
)

// Request is a backend call. The body is held in memory so that the call can
// be re-sent after a token refresh.
type Request struct {
	Method      string
	Path        string // relative to the API prefix, e.g. "resumes/"
	Query       url.Values
	Body        []byte
	ContentType string
	// Timeout overrides the client default for this call only
	Timeout time.Duration
}

// Response is a fully read backend response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Decode unmarshals the body into v. An empty body leaves v untouched.
func (r *Response) Decode(v any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("[apiclient Decode] %w", err)
	}
	return nil
}

func NewRequest(method, path string) *Request {
	return &Request{Method: method, Path: path}
}

// JSONRequest builds a request with v encoded as the JSON body. A nil v sends no body.
func JSONRequest(method, path string, v any) (*Request, error) {
	req := NewRequest(method, path)
	if v == nil {
		return req, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("[apiclient JSONRequest] %s %s: %w", method, path, err)
	}
	req.Body = b
	req.ContentType = "application/json"
	return req, nil
}

// File is an upload part.
type File struct {
	Field    string
	Name     string
	Data     []byte
	MimeType string
}

// MultipartRequest builds a multipart/form-data POST with one file and optional fields.
func MultipartRequest(path string, file File, fields map[string]string) (*Request, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("[apiclient MultipartRequest] field %s: %w", k, err)
		}
	}

	var (
		part io.Writer
		err  error
	)
	if file.MimeType != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.Field, file.Name))
		h.Set("Content-Type", file.MimeType)
		part, err = mw.CreatePart(h)
	} else {
		part, err = mw.CreateFormFile(file.Field, file.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("[apiclient MultipartRequest] create part: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, fmt.Errorf("[apiclient MultipartRequest] write part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("[apiclient MultipartRequest] close: %w", err)
	}

	return &Request{
		Method:      http.MethodPost,
		Path:        path,
		Body:        buf.Bytes(),
		ContentType: mw.FormDataContentType(),
	}, nil
}
