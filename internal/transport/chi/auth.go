package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// DefaultPublicPaths stay reachable without a token for health checks and scrapers.
var DefaultPublicPaths = []string{"/health", "/metrics"}

const bearerPrefix = "Bearer "

// BearerAuth guards every route except publicPaths with static API keys.
// With no non-empty key configured the middleware is a pass-through.
func BearerAuth(apiKeys []string, publicPaths ...string) func(http.Handler) http.Handler {
	keys := make([][]byte, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			keys = append(keys, []byte(k))
		}
	}
	public := make(map[string]struct{}, len(publicPaths))
	for _, p := range publicPaths {
		public[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := public[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			token, msg := bearerToken(r.Header.Get("Authorization"))
			if msg == "" && !knownKey(keys, token) {
				msg = "invalid api key"
			}
			if msg != "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="vecfuse"`)
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, msg)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(header string) (string, string) {
	switch {
	case header == "":
		return "", "missing authorization header"
	case !strings.HasPrefix(header, bearerPrefix):
		return "", "authorization header must use Bearer scheme"
	}
	return strings.TrimSpace(header[len(bearerPrefix):]), ""
}

// knownKey compares against every key so timing does not leak which one matched.
func knownKey(keys [][]byte, token string) bool {
	t := []byte(token)
	found := 0
	for _, k := range keys {
		found |= subtle.ConstantTimeCompare(k, t)
	}
	return found == 1
}
