package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

type ctxKey int

const (
	ctxKeyHunt ctxKey = iota
)

// huntMiddleware resolves the {huntID} URL parameter once for the route group.
func huntMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "huntID"))
		if id == "" {
			writeError(w, http.StatusNotFound, "hunt not found")
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyHunt, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func huntID(r *http.Request) string {
	return r.Context().Value(ctxKeyHunt).(string)
}
