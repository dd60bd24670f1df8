package middleware

import (
	"net/http"
)

// OriginChecker reports whether a browser origin is on the allow list. An
// empty allow list accepts any origin.
func OriginChecker(allowedOrigins []string) func(origin string) bool {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return func(origin string) bool {
		return len(allowed) == 0 || allowed[origin]
	}
}

// EnableCORS echoes allowed origins. An empty allow list accepts any origin.
func EnableCORS(next http.Handler, allowedOrigins []string) http.Handler {
	originAllowed := OriginChecker(allowedOrigins)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin != "" && originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
		}

		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		// Handle preflight
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
