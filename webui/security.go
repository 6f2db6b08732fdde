// security.go contains the security header and CORS middleware.
package webui

import "net/http"

// SecurityMiddleware sets baseline security headers and answers CORS
// preflight requests for the configured origins. An allowed origin list
// containing "*" admits every origin.
type SecurityMiddleware struct {
	allowedOrigins map[string]bool
	allowAll       bool
}

// NewSecurityMiddleware creates the middleware from an origin whitelist.
func NewSecurityMiddleware(allowedOrigins []string) *SecurityMiddleware {
	m := &SecurityMiddleware{allowedOrigins: make(map[string]bool, len(allowedOrigins))}
	for _, origin := range allowedOrigins {
		if origin == "*" {
			m.allowAll = true
			continue
		}
		m.allowedOrigins[origin] = true
	}
	return m
}

// Handler wraps next with security headers and CORS handling.
func (m *SecurityMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")

		if origin := r.Header.Get("Origin"); origin != "" && m.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *SecurityMiddleware) originAllowed(origin string) bool {
	return m.allowAll || m.allowedOrigins[origin]
}
