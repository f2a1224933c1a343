package mealie

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

// Request describes a single API call. Path is relative to the API prefix
// ("recipes/pasta"); a leading "api/" is accepted and not doubled.
// Requests carry the session credential unless SkipAuth is set.
type Request struct {
	Method   string
	Path     string
	Query    url.Values
	Body     Body
	SkipAuth bool
}

// Body encodes a request payload.
type Body interface {
	// Encode returns the payload reader and its Content-Type.
	Encode() (io.Reader, string, error)
}

// JSONBody sends Value encoded as JSON.
type JSONBody struct {
	Value any
}

func (b JSONBody) Encode() (io.Reader, string, error) {
	data, err := json.Marshal(b.Value)
	if err != nil {
		return nil, "", fmt.Errorf("encode json body: %w", err)
	}
	return bytes.NewReader(data), "application/json", nil
}

// RawBody sends Data untouched.
type RawBody struct {
	Data        []byte
	ContentType string
}

func (b RawBody) Encode() (io.Reader, string, error) {
	ct := b.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	return bytes.NewReader(b.Data), ct, nil
}

// FormBody sends url-encoded form values.
type FormBody url.Values

func (b FormBody) Encode() (io.Reader, string, error) {
	return strings.NewReader(url.Values(b).Encode()), "application/x-www-form-urlencoded", nil
}

// FilePart is a file field of a multipart body.
type FilePart struct {
	Field    string
	FileName string
	Data     []byte
}

// MultipartBody sends form fields and files as multipart/form-data.
type MultipartBody struct {
	Fields map[string]string
	Files  []FilePart
}

func (b MultipartBody) Encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, value := range b.Fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", name, err)
		}
	}
	for _, f := range b.Files {
		part, err := w.CreateFormFile(f.Field, f.FileName)
		if err != nil {
			return nil, "", fmt.Errorf("create form file %s: %w", f.Field, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", fmt.Errorf("write form file %s: %w", f.Field, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func (r *Request) method() string {
	if r.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(r.Method)
}

// apiPath strips the leading slash and the API prefix if the caller
// already included it.
func (r *Request) apiPath() string {
	p := strings.TrimLeft(r.Path, "/")
	if p == apiPrefix {
		return ""
	}
	return strings.TrimPrefix(p, apiPrefix+"/")
}
