package mealie

import (
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantKind   Kind
		wantParams []string
	}{
		{"not authenticated", 401, `{"detail":"Not authenticated"}`, KindUnauthenticated, nil},
		{"bad request detail", 400, `{"detail":"Bad Request"}`, KindBadRequest, nil},
		{"internal detail on 4xx", 418, `{"detail":"Internal Server Error"}`, KindInternalServerError, nil},
		{"other detail", 404, `{"detail":"Not Found"}`, KindUnknown, nil},
		{"server error", 500, `oops`, KindInternalServerError, nil},
		{"server error json", 503, `{"detail":"down"}`, KindInternalServerError, nil},
		{
			"missing parameter",
			422,
			`{"detail":[{"loc":["body","name"],"msg":"field required","type":"value_error.missing"}]}`,
			KindParameterMissing,
			[]string{"body", "name"},
		},
		{
			"missing parameter pydantic v2",
			422,
			`{"detail":[{"loc":["query","start"],"msg":"Field required","type":"missing"}]}`,
			KindParameterMissing,
			[]string{"query", "start"},
		},
		{
			"first missing entry wins",
			422,
			`{"detail":[{"loc":["body","x"],"msg":"bad","type":"type_error.integer"},{"loc":["body","items",0],"msg":"field required","type":"value_error.missing"},{"loc":["body","y"],"msg":"field required","type":"value_error.missing"}]}`,
			KindParameterMissing,
			[]string{"body", "items", "0"},
		},
		{
			"validation without missing",
			422,
			`{"detail":[{"loc":["body","x"],"msg":"bad","type":"type_error.integer"}]}`,
			KindUnknown,
			nil,
		},
		{"empty 4xx body", 400, ``, KindBadRequest, nil},
		{"object without detail", 400, `{"message":"nope"}`, KindBadRequest, nil},
		{"null detail", 400, `{"detail":null}`, KindBadRequest, nil},
		{"non json 4xx", 400, `<html>nope</html>`, KindUnknown, nil},
		{"redirect", 302, ``, KindUnknown, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify(tt.status, []byte(tt.body))
			require.NotNil(t, err)
			assert.Equal(t, tt.wantKind, err.Kind)
			assert.Equal(t, tt.status, err.StatusCode)
			if tt.wantParams != nil {
				assert.Equal(t, tt.wantParams, err.Params)
			}
		})
	}
}

func TestAPIErrorIs(t *testing.T) {
	err := error(&APIError{Kind: KindUnauthenticated, StatusCode: 401})
	wrapped := fmt.Errorf("list recipes: %w", err)

	assert.ErrorIs(t, wrapped, ErrUnauthenticated)
	assert.NotErrorIs(t, wrapped, ErrBadRequest)

	var apiErr *APIError
	require.ErrorAs(t, wrapped, &apiErr)
	assert.Equal(t, 401, apiErr.StatusCode)
}

func TestAPIErrorMessage(t *testing.T) {
	err := &APIError{
		Kind:       KindParameterMissing,
		StatusCode: 422,
		Method:     "POST",
		Path:       "/api/recipes/create",
		Message:    "field required",
		Params:     []string{"body", "name"},
	}
	assert.Equal(t, "mealie: parameter missing (POST /api/recipes/create -> 422) body.name: field required", err.Error())
}

func TestConfigErrorUnwrap(t *testing.T) {
	cause := &url.Error{Op: "parse", URL: "::", Err: errors.New("missing protocol scheme")}
	err := &ConfigError{Field: "base URL", Value: "::", Reason: "unparseable", Cause: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "base URL")
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "unauthenticated", KindUnauthenticated.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
