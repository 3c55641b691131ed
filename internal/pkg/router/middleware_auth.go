package router

import (
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/satriajati/gerbang/internal/pkg/jwt"
)

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return header[len(prefix):]
	}
	return ""
}

func middlewareAuthentication(j jwt.JWT, public map[string]map[string]struct{}) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if matched := httprouter.ParamsFromContext(r.Context()).MatchedRoutePath(); matched != "" {
				path = matched
			}

			if methods, ok := public[r.Method]; ok {
				if _, ok := methods[path]; ok {
					next.ServeHTTP(w, r)
					return
				}
			}

			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				writeJSON(w, errorResponse{Message: "missing authorization token"}, http.StatusUnauthorized)
				return
			}

			claims, err := j.Verify(token)
			if err != nil {
				writeJSON(w, errorResponse{Message: "invalid authorization token"}, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(jwt.SetAuth(r.Context(), claims)))
		})
	}
}
