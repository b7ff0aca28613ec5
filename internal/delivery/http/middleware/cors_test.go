package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCORS(t *testing.T) {
	tests := []struct {
		name        string
		allowed     []string
		method      string
		origin      string
		wantStatus  int
		wantOrigin  string
		wantCreds   string
		wantMethods string
		nextCalled  bool
	}{
		{"allowed origin", []string{" https://app.example.com/ ", ""}, http.MethodGet, "https://app.example.com", http.StatusOK, "https://app.example.com", "true", "", true},
		{"unknown origin", []string{"https://app.example.com"}, http.MethodGet, "https://evil.example.com", http.StatusOK, "", "", "", true},
		{"no origin header", []string{"https://app.example.com"}, http.MethodGet, "", http.StatusOK, "", "", "", true},
		{"wildcard", []string{"*"}, http.MethodGet, "https://any.example.com", http.StatusOK, "*", "", "", true},
		{"preflight allowed", []string{"https://app.example.com"}, http.MethodOptions, "https://app.example.com", http.StatusNoContent, "https://app.example.com", "true", corsAllowMethods, false},
		{"preflight unknown", []string{"https://app.example.com"}, http.MethodOptions, "https://evil.example.com", http.StatusNoContent, "", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				w.WriteHeader(http.StatusOK)
			})
			req := httptest.NewRequest(tt.method, "/events", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.method == http.MethodOptions {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rr := httptest.NewRecorder()

			CORS(tt.allowed, next).ServeHTTP(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.nextCalled, nextCalled)
			assert.Equal(t, tt.wantOrigin, rr.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantCreds, rr.Header().Get("Access-Control-Allow-Credentials"))
			assert.Equal(t, tt.wantMethods, rr.Header().Get("Access-Control-Allow-Methods"))
		})
	}
}
