package middleware

import (
	"emojiart-server/auth"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func okHandler(t *testing.T, wantClaims bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := r.Context().Value(ClaimsContextKey).(*auth.AppClaims)
		if ok != wantClaims {
			t.Errorf("claims present = %v, want %v", ok, wantClaims)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthJWT_Disabled(t *testing.T) {
	handler := AuthJWT(auth.New(""))(okHandler(t, false))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Status code mismatch: got %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestAuthJWT_Enabled(t *testing.T) {
	tokens := auth.New("secret")
	valid, err := tokens.Issue("alice", time.Hour)
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	tests := []struct {
		name     string
		header   string
		wantCode int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer abc", http.StatusUnauthorized},
		{"valid token", "Bearer " + valid, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := AuthJWT(tokens)(okHandler(t, tt.wantCode == http.StatusOK))

			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("Status code mismatch: got %d, want %d", rec.Code, tt.wantCode)
			}
		})
	}
}

func TestSubject(t *testing.T) {
	tokens := auth.New("secret")
	token, err := tokens.Issue("alice", time.Hour)
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	var got string
	handler := AuthJWT(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = Subject(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got != "alice" {
		t.Errorf("Subject() = %q, want %q", got, "alice")
	}
	if s := Subject(httptest.NewRequest(http.MethodGet, "/", nil).Context()); s != "" {
		t.Errorf("Subject() without claims = %q, want empty", s)
	}
}
