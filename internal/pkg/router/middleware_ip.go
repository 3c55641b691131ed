package router

import (
	"context"
	"net"
	"net/http"
	"strings"
)

type ctxKeyIP struct{}

// ClientIP returns the client IP resolved by the IP middleware, if any.
func ClientIP(r *http.Request) string {
	ip, _ := r.Context().Value(ctxKeyIP{}).(string)
	return ip
}

func middlewareIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := resolveClientIP(r)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyIP{}, ip)))
	})
}

func resolveClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}

	if real := r.Header.Get("X-Real-IP"); real != "" {
		return real
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
