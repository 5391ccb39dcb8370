package models

import "github.com/golang-jwt/jwt/v5"

// PeerClaims are the JWT claims of an editing peer
type PeerClaims struct {
	jwt.RegisteredClaims
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// PeerID returns the subject claim, which identifies the peer
func (c *PeerClaims) PeerID() string {
	return c.Subject
}
