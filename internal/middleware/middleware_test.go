package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimiterWindow(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("first two requests should pass")
	}
	if rl.Allow("a") {
		t.Error("third request in the window should be refused")
	}
	if !rl.Allow("b") {
		t.Error("other clients are limited separately")
	}
	now = now.Add(61 * time.Second)
	if !rl.Allow("a") {
		t.Error("request after the window should pass")
	}
}

func serve(h gin.HandlerFunc, header string) *httptest.ResponseRecorder {
	r := gin.New()
	r.GET("/", h, func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("user"))
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sign(t *testing.T, secret string, method jwt.SigningMethod, claims jwt.RegisteredClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestAuth(t *testing.T) {
	valid := sign(t, "s3cret", jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "planner"})
	expired := sign(t, "s3cret", jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "planner",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	otherKey := sign(t, "other", jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "planner"})
	hs512 := sign(t, "s3cret", jwt.SigningMethodHS512, jwt.RegisteredClaims{Subject: "planner"})

	tests := []struct {
		name   string
		secret string
		header string
		want   int
		user   string
	}{
		{"disabled", "", "", http.StatusOK, ""},
		{"valid", "s3cret", "Bearer " + valid, http.StatusOK, "planner"},
		{"missing", "s3cret", "", http.StatusUnauthorized, ""},
		{"not bearer", "s3cret", "Basic abc", http.StatusUnauthorized, ""},
		{"expired", "s3cret", "Bearer " + expired, http.StatusUnauthorized, ""},
		{"wrong key", "s3cret", "Bearer " + otherKey, http.StatusUnauthorized, ""},
		{"wrong method", "s3cret", "Bearer " + hs512, http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(Auth(tt.secret), tt.header)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}
			if tt.want == http.StatusOK && w.Body.String() != tt.user {
				t.Errorf("user = %q, want %q", w.Body.String(), tt.user)
			}
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	h := RateLimit(1, time.Minute)
	if w := serve(h, ""); w.Code != http.StatusOK {
		t.Fatalf("first request status = %d", w.Code)
	}
	// serve builds a new engine but the limiter is shared through h
	if w := serve(h, ""); w.Code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", w.Code)
	}
}
