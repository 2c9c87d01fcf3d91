package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORS(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		allowed    []string
		origin     string
		preflight  bool
		wantStatus int
		wantOrigin string
	}{
		{name: "allowed origin", allowed: []string{"https://expo.example/"}, origin: "https://expo.example", wantStatus: http.StatusOK, wantOrigin: "https://expo.example"},
		{name: "unknown origin", allowed: []string{"https://expo.example"}, origin: "https://evil.example", wantStatus: http.StatusOK},
		{name: "wildcard", allowed: []string{"*"}, origin: "https://any.example", wantStatus: http.StatusOK, wantOrigin: "https://any.example"},
		{name: "no origin header", allowed: []string{"*"}, wantStatus: http.StatusOK},
		{name: "preflight allowed", allowed: []string{"https://expo.example"}, origin: "https://expo.example", preflight: true, wantStatus: http.StatusNoContent, wantOrigin: "https://expo.example"},
		{name: "preflight unknown", allowed: []string{"https://expo.example"}, origin: "https://evil.example", preflight: true, wantStatus: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := http.MethodGet
			if tt.preflight {
				method = http.MethodOptions
			}
			req := httptest.NewRequest(method, "http://test/events", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rr := httptest.NewRecorder()

			CORS(tt.allowed, okHandler).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantOrigin, rr.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "Origin", rr.Header().Get("Vary"))
			if tt.preflight && tt.wantOrigin != "" {
				assert.Equal(t, corsAllowMethods, rr.Header().Get("Access-Control-Allow-Methods"))
			}
		})
	}
}
