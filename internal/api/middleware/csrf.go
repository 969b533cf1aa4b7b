package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
	"github.com/phrazzld/blog-api/internal/api/shared"
	"github.com/phrazzld/blog-api/internal/service/auth"
)

// MsgCSRFFailed is the detail of a rejected unsafe request.
const MsgCSRFFailed = "CSRF verification failed."

func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

// CSRF requires unsafe requests to echo the CSRF cookie in the CSRF header.
// Requests authenticated by an Authorization header carry no ambient
// credentials and are exempt. When enforce is false the middleware is a
// no-op.
func CSRF(enforce bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enforce {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if safeMethod(r.Method) || r.Header.Get("Authorization") != "" {
				next.ServeHTTP(w, r)
				return
			}

			cookie := ""
			if c, err := r.Cookie(auth.CSRFCookieName); err == nil {
				cookie = c.Value
			}
			if !auth.CSRFTokensMatch(cookie, r.Header.Get(auth.CSRFHeaderName)) {
				shared.Error(w, r, http.StatusForbidden, "", MsgCSRFFailed)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CORS allows cross-origin browser requests from origins. An empty list
// disables cross-origin access.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", auth.CSRFHeaderName},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
