package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/travelapp/restaurants/backend/go-services/pkg/logger"
	"github.com/travelapp/restaurants/backend/go-services/pkg/metrics"
)

// ClaimsKey is the gin context key holding verified token claims.
const ClaimsKey = "claims"

// Token is minimal interface for a verified token that can expose claims
type Token interface {
	Claims(v interface{}) error
}

// Verifier is the minimal interface the middleware depends on
type Verifier interface {
	Verify(ctx context.Context, raw string) (Token, error)
}

// RevocationChecker reports whether a token id (jti) has been revoked.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

func reject(c *gin.Context, reason, msg string) {
	metrics.AuthRejected.WithLabelValues(reason).Inc()
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}

// AuthMiddleware verifies "Authorization: Bearer <token>" and stores the claims
// under ClaimsKey. rev may be nil.
func AuthMiddleware(ver Verifier, rev RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			reject(c, "missing", "missing Authorization header")
			return
		}
		raw, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			reject(c, "malformed", "invalid Authorization header")
			return
		}

		tok, err := ver.Verify(c.Request.Context(), strings.TrimSpace(raw))
		if err != nil {
			logger.Debugf("auth: token rejected: %v", err)
			reject(c, "invalid", "invalid token")
			return
		}
		var claims map[string]interface{}
		if err := tok.Claims(&claims); err != nil {
			reject(c, "claims", "failed to parse claims")
			return
		}

		if rev != nil {
			if jti, _ := claims["jti"].(string); jti != "" {
				revoked, err := rev.IsRevoked(c.Request.Context(), jti)
				if err != nil {
					logger.Errorf("auth: revocation lookup failed: %v", err)
					c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token check failed"})
					return
				}
				if revoked {
					reject(c, "revoked", "token revoked")
					return
				}
			}
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}
