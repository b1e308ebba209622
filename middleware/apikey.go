package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// APIAuth gates the management endpoints behind a static bearer token.
type APIAuth struct {
	token string
}

// NewAPIAuth creates the middleware. An empty token locks every protected
// route; that is intentional for deployments that only serve redirects.
func NewAPIAuth(token string) *APIAuth {
	if token == "" {
		log.Warn().Msg("No API token configured - management routes are inaccessible")
	}
	return &APIAuth{token: token}
}

// Protect wraps a handler with bearer-token authentication. The comparison is
// constant time so a failed probe learns nothing about the token.
func (a *APIAuth) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		provided := ""
		if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			provided = strings.TrimPrefix(auth, "Bearer ")
		}

		if a.token == "" || provided == "" ||
			subtle.ConstantTimeCompare([]byte(provided), []byte(a.token)) != 1 {
			log.Warn().
				Str("path", r.URL.Path).
				Str("ip", r.RemoteAddr).
				Msg("Rejected management request")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"clientError":true,"internalError":false,"message":"Invalid API token.","data":null}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}
