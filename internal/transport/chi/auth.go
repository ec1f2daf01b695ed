package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// exemptPaths are routes that bypass authentication (liveness, health, metrics).
var exemptPaths = map[string]struct{}{
	"/":        {},
	"/health":  {},
	"/metrics": {},
}

// SharedSecretMiddleware returns a middleware that validates the webhook
// shared secret from the Authorization header (Bearer scheme) or the
// X-Webhook-Secret header. If secret is empty, authentication is disabled
// (pass-through).
func SharedSecretMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		// Auth disabled — pass everything through
		if secret == "" {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Exempt paths
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			presented := r.Header.Get("X-Webhook-Secret")
			if presented == "" {
				auth := r.Header.Get("Authorization")
				const bearerPrefix = "Bearer "
				if strings.HasPrefix(auth, bearerPrefix) {
					presented = auth[len(bearerPrefix):]
				}
			}

			if presented == "" {
				writeError(w, http.StatusUnauthorized, codeBadRequest, "missing webhook secret")
				return
			}
			if subtle.ConstantTimeCompare([]byte(presented), []byte(secret)) != 1 {
				writeError(w, http.StatusUnauthorized, codeBadRequest, "invalid webhook secret")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
