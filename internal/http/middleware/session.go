package middleware

import (
	"net/http"

	"github.com/wolfman30/videobooker-api/internal/session"
)

// Session stores the X-Session-Id header in the request context. A missing
// header maps to session.DefaultID; malformed IDs are rejected.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := session.Normalize(r.Header.Get(session.Header))
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid X-Session-Id"}`))
			return
		}
		next.ServeHTTP(w, r.WithContext(session.WithID(r.Context(), id)))
	})
}
