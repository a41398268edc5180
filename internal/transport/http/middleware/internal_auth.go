package middleware

import (
	"crypto/subtle"
	"net/http"
)

const HeaderInternalSecret = "X-Internal-Secret"

// InternalAuth guards service-to-service endpoints with a shared secret
// header. An empty configured secret locks the endpoints rather than
// leaving them open.
func InternalAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				http.Error(w, "internal auth misconfigured", http.StatusInternalServerError)
				return
			}

			got := r.Header.Get(HeaderInternalSecret)
			if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
