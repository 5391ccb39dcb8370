package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"vecteditor/internal/domain"
	"vecteditor/internal/domain/models"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// allowedAlgorithms guards against algorithm confusion
var allowedAlgorithms = []string{"RS256", "ES256"}

// KeyVerifier implements JWTVerifier against a set of public keys
type KeyVerifier struct {
	keyfunc jwt.Keyfunc
	logger  *slog.Logger
}

// NewJWTVerifier fetches signing keys from a JWKS endpoint. keyfunc caches
// the set and refreshes it on unknown key ids.
func NewJWTVerifier(ctx context.Context, jwksURL string, logger *slog.Logger) (JWTVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}

	logger.Info("JWT verifier initialized", "jwks_url", jwksURL)
	return NewKeyVerifier(jwks.Keyfunc, logger), nil
}

// NewKeyVerifier verifies tokens with keys resolved by kf
func NewKeyVerifier(kf jwt.Keyfunc, logger *slog.Logger) *KeyVerifier {
	return &KeyVerifier{keyfunc: kf, logger: logger}
}

// VerifyToken validates a token and returns its peer claims
func (v *KeyVerifier) VerifyToken(tokenString string) (*models.PeerClaims, error) {
	claims := &models.PeerClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, v.keyfunc,
		jwt.WithValidMethods(allowedAlgorithms),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		v.logger.Debug("token rejected", "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	if claims.Subject == "" {
		v.logger.Debug("token missing subject claim")
		return nil, fmt.Errorf("%w: missing subject", domain.ErrUnauthorized)
	}

	return claims, nil
}

// Close is a no-op; keyfunc stops refreshing when its context ends
func (v *KeyVerifier) Close() error {
	v.logger.Info("JWT verifier closed")
	return nil
}
