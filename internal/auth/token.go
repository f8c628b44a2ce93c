// Package auth verifies the access-token credential carried on requests. The
// attempt core only ever sees the opaque subject string.
package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every way a presented credential can fail to verify.
var ErrInvalidToken = errors.New("invalid access token")

// TokenService signs and verifies HS256 access tokens.
type TokenService struct {
	hmac []byte
	ttl  time.Duration
	now  func() time.Time
}

type claims struct {
	jwt.RegisteredClaims
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &TokenService{hmac: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue mints a token for subject, used by tooling and tests; the service
// itself only verifies.
func (s *TokenService) Issue(subject string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})
	return token.SignedString(s.hmac)
}

// Verify returns the token's subject, the owner key for everything downstream.
func (s *TokenService) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.hmac, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	c, ok := token.Claims.(*claims)
	if !ok || c.Subject == "" {
		return "", ErrInvalidToken
	}
	return c.Subject, nil
}

type contextKey struct{}

// SubjectFromContext returns the verified owner key attached by Middleware.
func SubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(contextKey{}).(string)
	return subject, ok
}

// Middleware requires a valid access_token cookie and attaches its subject to
// the request context.
func Middleware(verifier *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie("access_token")
			if err != nil || cookie.Value == "" {
				http.Error(w, "missing access token", http.StatusUnauthorized)
				return
			}
			subject, err := verifier.Verify(cookie.Value)
			if err != nil {
				http.Error(w, "invalid access token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, subject)))
		})
	}
}
