package router

import (
	"net/http"

	"github.com/satriajati/gerbang/internal/pkg/instrument"
	"github.com/satriajati/gerbang/internal/pkg/uid"
)

const headerCorrelationID = "X-Correlation-ID"

func middlewareCorrelationID(gen uid.StringID) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cid := r.Header.Get(headerCorrelationID)
			if cid == "" {
				cid = gen.Generate()
			}

			w.Header().Set(headerCorrelationID, cid)
			ctx := instrument.SetCorrelationID(r.Context(), cid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
