package auth

import (
	"context"

	"github.com/travelapp/restaurants/backend/go-services/internal/config"
	"github.com/travelapp/restaurants/backend/go-services/pkg/middleware"
)

// NewVerifier picks the token verifier for cfg: HMAC when a shared secret is
// set, otherwise OIDC discovery. It returns nil when auth is disabled.
func NewVerifier(ctx context.Context, cfg config.AuthConfig) (middleware.Verifier, error) {
	switch {
	case cfg.JWTSecret != "":
		return NewHMACVerifier(cfg.JWTSecret), nil
	case cfg.OIDCIssuer != "" && cfg.OIDCClientID != "":
		v, err := NewOIDCVerifier(ctx, cfg.OIDCIssuer, cfg.OIDCClientID)
		if err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, nil
	}
}
