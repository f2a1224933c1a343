package mealie

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an API failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindUnauthenticated
	KindBadRequest
	KindParameterMissing
	KindInternalServerError
	KindUnexpectedContentType
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindBadRequest:
		return "bad request"
	case KindParameterMissing:
		return "parameter missing"
	case KindInternalServerError:
		return "internal server error"
	case KindUnexpectedContentType:
		return "unexpected content type"
	default:
		return "unknown"
	}
}

// Sentinels matched by errors.Is against an *APIError of the same kind.
var (
	ErrUnknown               = errors.New("unknown api error")
	ErrUnauthenticated       = errors.New("not authenticated")
	ErrBadRequest            = errors.New("bad request")
	ErrParameterMissing      = errors.New("parameter missing")
	ErrInternalServer        = errors.New("internal server error")
	ErrUnexpectedContentType = errors.New("unexpected content type")
)

// Model precondition failures.
var (
	ErrDetached           = errors.New("model is not attached to a client")
	ErrMissingID          = errors.New("missing required attribute id")
	ErrMissingPassword    = errors.New("missing password attribute, required to change password")
	ErrMissingSignupToken = errors.New("tried to sign up user without signup token")
)

// APIError is returned for every classified HTTP or payload failure.
type APIError struct {
	Kind       Kind
	StatusCode int
	Method     string
	Path       string
	Message    string
	// Params is the location of the missing field for KindParameterMissing,
	// e.g. ["body", "name"].
	Params []string
	// Body holds the raw response body for diagnostics.
	Body []byte
}

func (e *APIError) Error() string {
	var b strings.Builder
	b.WriteString("mealie: ")
	b.WriteString(e.Kind.String())
	if e.Method != "" || e.Path != "" {
		fmt.Fprintf(&b, " (%s %s", e.Method, e.Path)
		if e.StatusCode != 0 {
			fmt.Fprintf(&b, " -> %d", e.StatusCode)
		}
		b.WriteString(")")
	} else if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if len(e.Params) > 0 {
		fmt.Fprintf(&b, " %s", strings.Join(e.Params, "."))
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Unwrap exposes the sentinel for the error's kind.
func (e *APIError) Unwrap() error {
	switch e.Kind {
	case KindUnauthenticated:
		return ErrUnauthenticated
	case KindBadRequest:
		return ErrBadRequest
	case KindParameterMissing:
		return ErrParameterMissing
	case KindInternalServerError:
		return ErrInternalServer
	case KindUnexpectedContentType:
		return ErrUnexpectedContentType
	default:
		return ErrUnknown
	}
}

// ConfigError reports an invalid client configuration, such as a base URL
// without a scheme or host. It is returned before any request is made.
type ConfigError struct {
	Field  string
	Value  string
	Reason string
	Cause  error
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("mealie: invalid %s %q: %s", e.Field, e.Value, e.Reason)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error { return e.Cause }

// TransportError reports a request that never produced an HTTP response:
// connection failures, timeouts and cancellation.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("mealie: %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// validationEntry is one element of a FastAPI/pydantic validation detail list.
type validationEntry struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// Classify maps a non-2xx status and its body onto an *APIError. It always
// returns exactly one error value and never retries.
func Classify(status int, body []byte) *APIError {
	e := &APIError{Kind: KindUnknown, StatusCode: status, Body: body}

	switch {
	case status >= 500 && status < 600:
		e.Kind = KindInternalServerError
		e.Message = detailString(body)
		return e
	case status >= 400 && status < 500:
	default:
		e.Message = fmt.Sprintf("unexpected status %d", status)
		return e
	}

	if len(strings.TrimSpace(string(body))) == 0 {
		e.Kind = KindBadRequest
		return e
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		e.Message = "unparseable error body"
		return e
	}

	raw, ok := obj["detail"]
	if !ok || strings.TrimSpace(string(raw)) == "null" {
		e.Kind = KindBadRequest
		return e
	}

	var detail string
	if err := json.Unmarshal(raw, &detail); err == nil {
		e.Message = detail
		switch detail {
		case "Not authenticated":
			e.Kind = KindUnauthenticated
		case "Bad Request":
			e.Kind = KindBadRequest
		case "Internal Server Error":
			e.Kind = KindInternalServerError
		}
		return e
	}

	var entries []validationEntry
	if err := json.Unmarshal(raw, &entries); err == nil {
		for _, entry := range entries {
			if entry.Type != "value_error.missing" && entry.Type != "missing" {
				continue
			}
			e.Kind = KindParameterMissing
			e.Message = entry.Msg
			e.Params = locPath(entry.Loc)
			return e
		}
		e.Message = "validation failed"
		return e
	}

	e.Message = "unrecognised error detail"
	return e
}

func locPath(loc []any) []string {
	out := make([]string, 0, len(loc))
	for _, part := range loc {
		switch v := part.(type) {
		case string:
			out = append(out, v)
		case float64:
			out = append(out, fmt.Sprintf("%d", int(v)))
		default:
			out = append(out, fmt.Sprint(v))
		}
	}
	return out
}

func detailString(body []byte) string {
	var obj struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &obj); err != nil {
		return ""
	}
	return obj.Detail
}
