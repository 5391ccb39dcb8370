package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"vecteditor/internal/auth"
	"vecteditor/internal/httputil"
)

// PeerHeader carries a self-declared peer id when authentication is off
const PeerHeader = "X-Peer-ID"

// publicPaths skip authentication
var publicPaths = map[string]bool{
	"/health": true,
}

// AuthMiddleware resolves the editing peer of each request.
//
// With a verifier, requests need a valid bearer token; websocket clients
// that cannot set headers pass it as the access_token query parameter.
// Without one, the peer id is taken from the X-Peer-ID header and
// defaults to anonymous.
func AuthMiddleware(verifier auth.JWTVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			if verifier == nil {
				if peerID := strings.TrimSpace(r.Header.Get(PeerHeader)); peerID != "" {
					r = httputil.WithPeerID(r, peerID)
				}
				next.ServeHTTP(w, r)
				return
			}

			token := bearerToken(r)
			if token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				logger.Debug("authentication failed", "path", r.URL.Path, "error", err)
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, httputil.WithPeerID(r, claims.PeerID()))
		})
	}
}

func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return r.URL.Query().Get("access_token")
}
