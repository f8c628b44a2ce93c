package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// AccessTokenCookie is the cookie carrying the client credential. Requests
// without it (login and other anonymous traffic) are keyed by address alone;
// requests with it are keyed by credential:address so distinct credentials
// behind one NAT do not share a budget and a stolen address cannot ride on a
// credential's budget.
const AccessTokenCookie = "access_token"

// KeyFunc derives the rate-limiting key for a request.
type KeyFunc func(r *http.Request) string

// DefaultKeyFunc keys authenticated requests by credential:address and
// everything else by address.
func DefaultKeyFunc(r *http.Request) string {
	addr := clientAddress(r)
	cookie, err := r.Cookie(AccessTokenCookie)
	if err != nil || cookie.Value == "" {
		return addr
	}
	return cookie.Value + ":" + addr
}

func clientAddress(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}

// Middleware gates every request through the limiter before it reaches
// business logic, answering 429 on exhaustion.
func Middleware(limiter *Limiter, keyFn KeyFunc) func(http.Handler) http.Handler {
	if keyFn == nil {
		keyFn = DefaultKeyFunc
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(keyFn(r)) {
				http.Error(w, "too many requests, please try again later", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
