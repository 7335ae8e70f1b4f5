package middleware

import (
	"net/http"
	"spendtracker/src/util"
)

// DemoMode makes the API read-only except for signing in.
func DemoMode(enabled bool) func(http.Handler) http.Handler {
	allowedPosts := map[string]bool{
		"/api/auth/login":      true,
		"/api/auth/register":   true,
		"/api/auth/demo-login": true,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled || r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			if r.Method == http.MethodPost && allowedPosts[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			util.WriteError(w, http.StatusForbidden, "Demo mode: only GET requests are allowed")
		})
	}
}
