package httputil

import (
	"context"
	"net/http"
)

type contextKey string

const peerIDKey contextKey = "peerID"

// AnonymousPeer identifies requests that carry no verified identity
const AnonymousPeer = "anonymous"

// WithPeerID adds the editing peer's id to the request context
func WithPeerID(r *http.Request, peerID string) *http.Request {
	ctx := context.WithValue(r.Context(), peerIDKey, peerID)
	return r.WithContext(ctx)
}

// GetPeerID returns the peer id from context, or AnonymousPeer
func GetPeerID(r *http.Request) string {
	if peerID, _ := r.Context().Value(peerIDKey).(string); peerID != "" {
		return peerID
	}
	return AnonymousPeer
}
