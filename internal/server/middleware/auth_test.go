package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticValidator map[string]string

func (v staticValidator) ValidateToken(token string) (string, error) {
	subject, ok := v[token]
	if !ok {
		return "", errors.New("invalid token")
	}
	return subject, nil
}

func newProtected(t *testing.T) (http.Handler, *string) {
	t.Helper()
	var seen string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if subject, err := Subject(r); err == nil {
			seen = subject
		}
		w.WriteHeader(http.StatusOK)
	})
	mw := AuthMiddleware(staticValidator{"good-token": "ats-importer"}, "/health")
	return mw(handler), &seen
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		header      string
		wantStatus  int
		wantSubject string
	}{
		{name: "valid token", path: "/extract", header: "Bearer good-token", wantStatus: http.StatusOK, wantSubject: "ats-importer"},
		{name: "lowercase scheme", path: "/extract", header: "bearer good-token", wantStatus: http.StatusOK, wantSubject: "ats-importer"},
		{name: "missing header", path: "/extract", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", path: "/extract", header: "Basic good-token", wantStatus: http.StatusUnauthorized},
		{name: "extra parts", path: "/extract", header: "Bearer good-token extra", wantStatus: http.StatusUnauthorized},
		{name: "unknown token", path: "/extract", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "open path", path: "/health", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, seen := newProtected(t)
			req := httptest.NewRequest(http.MethodPost, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantSubject, *seen)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Contains(t, w.Header().Get("WWW-Authenticate"), "Bearer")
			}
		})
	}
}

func TestSubject_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, err := Subject(req)

	assert.Error(t, err)
}

func TestWithSubject(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithSubject(req.Context(), "cli"))

	subject, err := Subject(req)

	require.NoError(t, err)
	assert.Equal(t, "cli", subject)
}
