package auth

import "vecteditor/internal/domain/models"

// JWTVerifier validates bearer tokens presented by editing peers
type JWTVerifier interface {
	// VerifyToken returns the claims of a valid token, or domain.ErrUnauthorized
	VerifyToken(tokenString string) (*models.PeerClaims, error)

	// Close releases the verifier's resources
	Close() error
}
