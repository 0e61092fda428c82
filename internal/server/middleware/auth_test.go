package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClaims struct {
	subject string
}

func (c *testClaims) GetSubject() (string, error) {
	return c.subject, nil
}

// testTokenValidator accepts a fixed set of tokens.
type testTokenValidator map[string]string

func (v testTokenValidator) ValidateToken(tokenString string) (SubjectGetter, error) {
	subject, ok := v[tokenString]
	if !ok {
		return nil, errors.New("invalid token")
	}
	return &testClaims{subject: subject}, nil
}

func newProtectedHandler(mutatingOnly bool) http.Handler {
	validator := testTokenValidator{"valid-token": "analyst-dashboard", "no-subject": ""}
	return AuthMiddleware(validator, mutatingOnly)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, err := GetSubject(r)
		if err != nil {
			subject = "anonymous"
		}
		_, _ = w.Write([]byte(subject))
	}))
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name         string
		method       string
		header       string
		mutatingOnly bool
		wantStatus   int
		wantBody     string
	}{
		{name: "valid token", method: http.MethodPost, header: "Bearer valid-token", wantStatus: http.StatusOK, wantBody: "analyst-dashboard"},
		{name: "case insensitive scheme", method: http.MethodPost, header: "bearer valid-token", wantStatus: http.StatusOK, wantBody: "analyst-dashboard"},
		{name: "missing header", method: http.MethodPost, wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", method: http.MethodPost, header: "Basic valid-token", wantStatus: http.StatusUnauthorized},
		{name: "extra parts", method: http.MethodPost, header: "Bearer valid-token extra", wantStatus: http.StatusUnauthorized},
		{name: "invalid token", method: http.MethodPut, header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "empty subject", method: http.MethodPost, header: "Bearer no-subject", wantStatus: http.StatusUnauthorized},
		{name: "get checked when not mutating only", method: http.MethodGet, wantStatus: http.StatusUnauthorized},
		{name: "get passes when mutating only", method: http.MethodGet, mutatingOnly: true, wantStatus: http.StatusOK, wantBody: "anonymous"},
		{name: "delete checked when mutating only", method: http.MethodDelete, mutatingOnly: true, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/tasks", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			newProtectedHandler(tt.mutatingOnly).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestGetSubject_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := GetSubject(req)
	require.Error(t, err)
}
