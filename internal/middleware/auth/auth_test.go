package auth

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	if id, ok := IdentityFrom(r.Context()); ok {
		w.Header().Set("X-Subject", id.Subject)
	}
	w.WriteHeader(http.StatusOK)
})

func TestBasicAuth(t *testing.T) {
	h := BasicAuth("admin", "secret")(okHandler)

	tests := []struct {
		name string
		user string
		pass string
		set  bool
		want int
	}{
		{"valid", "admin", "secret", true, http.StatusOK},
		{"wrong password", "admin", "nope", true, http.StatusUnauthorized},
		{"wrong user", "root", "secret", true, http.StatusUnauthorized},
		{"missing header", "", "", false, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/products/capacity", nil)
			if tt.set {
				req.SetBasicAuth(tt.user, tt.pass)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, tt.want, rr.Code)
			if tt.want == http.StatusUnauthorized {
				assert.Contains(t, rr.Header().Get("WWW-Authenticate"), "Basic")
			}
		})
	}
}

func TestBasicAuth_EmptyConfiguredUserRejects(t *testing.T) {
	h := BasicAuth("", "")(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth("", "")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func sign(t *testing.T, secret string, method jwt.SigningMethod, c jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, c).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestBearer(t *testing.T) {
	const secret = "super-secret-jwt-token"
	h := Bearer(slog.Default(), secret)(okHandler)

	valid := sign(t, secret, jwt.SigningMethodHS256, claims{
		Email: "ventas@funnykitchen.mx",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	expired := sign(t, secret, jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	otherKey := sign(t, "other", jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	})
	hs512 := sign(t, secret, jwt.SigningMethodHS512, claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	})
	noSubject := sign(t, secret, jwt.SigningMethodHS256, claims{})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer " + valid, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
		{"wrong key", "Bearer " + otherKey, http.StatusUnauthorized},
		{"wrong alg", "Bearer " + hs512, http.StatusUnauthorized},
		{"no subject", "Bearer " + noSubject, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/quotations", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, tt.want, rr.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, "user-1", rr.Header().Get("X-Subject"))
			}
		})
	}
}

func TestBearer_Disabled(t *testing.T) {
	h := Bearer(slog.Default(), "")(okHandler)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/quotations", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
}
