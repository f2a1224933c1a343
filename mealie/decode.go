package mealie

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
)

// ContentKind describes the shape of a decoded payload.
type ContentKind int

const (
	ContentJSON ContentKind = iota
	ContentBinary
	ContentText
)

func (k ContentKind) String() string {
	switch k {
	case ContentJSON:
		return "json"
	case ContentBinary:
		return "binary"
	case ContentText:
		return "text"
	default:
		return fmt.Sprintf("ContentKind(%d)", int(k))
	}
}

// Response is a successfully decoded API response. Payload holds a
// normalized JSON value for ContentJSON, []byte for ContentBinary and a
// string for ContentText.
type Response struct {
	StatusCode int
	Kind       ContentKind
	Payload    any
}

// DecodeFunc turns a response body into a payload. An error returned here
// is surfaced to the caller as-is, so decoders should return *APIError for
// anything the caller needs to classify.
type DecodeFunc func(body io.Reader) (ContentKind, any, error)

// Decoders dispatches on a response's media type. Each Client owns its own
// table; register extra media types before the client is used.
type Decoders struct {
	table    map[string]DecodeFunc
	fallback DecodeFunc
}

// DefaultDecoders returns a table with JSON, octet-stream and text
// handlers, rejecting text/html and falling back to raw bytes for any
// other media type.
func DefaultDecoders() *Decoders {
	d := &Decoders{
		table:    make(map[string]DecodeFunc),
		fallback: decodeBinary,
	}
	d.Register("application/json", decodeJSON)
	d.Register("application/octet-stream", decodeBinary)
	d.Register("text/*", decodeText)
	d.Register("text/html", rejectHTML)
	return d
}

// Register installs fn for mediaType. A "type/*" key matches any subtype
// that has no exact entry.
func (d *Decoders) Register(mediaType string, fn DecodeFunc) {
	d.table[strings.ToLower(strings.TrimSpace(mediaType))] = fn
}

// Clone returns an independent copy of the table.
func (d *Decoders) Clone() *Decoders {
	out := &Decoders{
		table:    make(map[string]DecodeFunc, len(d.table)),
		fallback: d.fallback,
	}
	for k, v := range d.table {
		out.table[k] = v
	}
	return out
}

func (d *Decoders) lookup(mediaType string) DecodeFunc {
	if fn, ok := d.table[mediaType]; ok {
		return fn
	}
	if major, _, ok := strings.Cut(mediaType, "/"); ok {
		if fn, ok := d.table[major+"/*"]; ok {
			return fn
		}
	}
	return d.fallback
}

// Decode interprets a 2xx response body according to contentType.
func (d *Decoders) Decode(status int, contentType string, body io.Reader) (*Response, error) {
	if status == http.StatusNoContent {
		return &Response{StatusCode: status, Kind: ContentBinary}, nil
	}
	if strings.TrimSpace(contentType) == "" {
		return nil, &APIError{
			Kind:       KindUnknown,
			StatusCode: status,
			Message:    "missing content type",
		}
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, &APIError{
			Kind:       KindUnknown,
			StatusCode: status,
			Message:    fmt.Sprintf("malformed content type %q", contentType),
		}
	}

	kind, payload, err := d.lookup(strings.ToLower(mediaType))(body)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == 0 {
			apiErr.StatusCode = status
		}
		return nil, err
	}
	return &Response{StatusCode: status, Kind: kind, Payload: payload}, nil
}

func decodeJSON(body io.Reader) (ContentKind, any, error) {
	var v any
	if err := json.NewDecoder(body).Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return ContentJSON, nil, nil
		}
		return ContentJSON, nil, &APIError{Kind: KindUnknown, Message: "decode json: " + err.Error()}
	}
	return ContentJSON, Normalize(v), nil
}

func decodeBinary(body io.Reader) (ContentKind, any, error) {
	b, err := io.ReadAll(body)
	if err != nil {
		return ContentBinary, nil, fmt.Errorf("read body: %w", err)
	}
	return ContentBinary, b, nil
}

func decodeText(body io.Reader) (ContentKind, any, error) {
	b, err := io.ReadAll(body)
	if err != nil {
		return ContentText, nil, fmt.Errorf("read body: %w", err)
	}
	return ContentText, string(b), nil
}

// An HTML page on an API endpoint means a proxy, login gateway or wrong
// base URL answered instead of the API.
func rejectHTML(io.Reader) (ContentKind, any, error) {
	return ContentText, nil, &APIError{
		Kind:    KindUnexpectedContentType,
		Message: "received text/html from an API endpoint; check the base URL or any auth gateway in front of the server",
	}
}
