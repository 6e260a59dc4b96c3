package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	jwt "github.com/golang-jwt/jwt/v4"
)

type ctxKey struct{}

type Identity struct {
	Subject string
	Email   string
	Role    string
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

type claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Bearer verifies HS256 access tokens signed with the auth service's JWT secret.
// An empty secret disables verification.
func Bearer(log *slog.Logger, secret string) func(http.Handler) http.Handler {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			var c claims
			_, err := parser.ParseWithClaims(strings.TrimSpace(raw), &c, func(*jwt.Token) (any, error) {
				return []byte(secret), nil
			})
			if err != nil || c.Subject == "" {
				log.Warn("token rechazado", slog.String("path", r.URL.Path), slog.Any("error", err))
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKey{}, Identity{Subject: c.Subject, Email: c.Email, Role: c.Role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
