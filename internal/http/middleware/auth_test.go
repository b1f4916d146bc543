package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, subject string, ttl time.Duration) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func authedRequest(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/leads", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestRequireAuth(t *testing.T) {
	var gotUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireAuth(testSecret)(next)

	t.Run("valid token passes and sets user id", func(t *testing.T) {
		gotUserID = ""
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, authedRequest(signToken(t, testSecret, "user-1", time.Hour)))
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		if gotUserID != "user-1" {
			t.Fatalf("expected user-1 on context, got %q", gotUserID)
		}
	})

	t.Run("missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, authedRequest(""))
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/leads", nil)
		req.Header.Set("Authorization", "Basic abc123")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, authedRequest(signToken(t, "other-secret", "user-1", time.Hour)))
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, authedRequest(signToken(t, testSecret, "user-1", -time.Hour)))
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("missing subject", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, authedRequest(signToken(t, testSecret, "", time.Hour)))
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("empty secret rejects everything", func(t *testing.T) {
		disabled := RequireAuth("")(next)
		w := httptest.NewRecorder()
		disabled.ServeHTTP(w, authedRequest(signToken(t, testSecret, "user-1", time.Hour)))
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})
}
