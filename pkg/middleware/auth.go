package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthConfig holds JWT authentication settings
type AuthConfig struct {
	Secret string
	Issuer string
	// AllowHeaderFallback accepts X-User-ID / X-Tenant-ID headers when no
	// bearer token is present. Development only.
	AllowHeaderFallback bool
}

// Claims are the token claims this service cares about
type Claims struct {
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
	jwt.RegisteredClaims
}

// Auth returns a gin middleware that authenticates requests and sets
// user_id and tenant_id in the request context.
func Auth(cfg *AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			if cfg.AllowHeaderFallback {
				userID := c.GetHeader("X-User-ID")
				tenantID := c.GetHeader("X-Tenant-ID")
				if userID != "" && tenantID != "" {
					c.Set("user_id", userID)
					c.Set("tenant_id", tenantID)
					c.Next()
					return
				}
			}
			abortUnauthorized(c, "missing authorization header")
			return
		}

		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			abortUnauthorized(c, "invalid authorization header")
			return
		}

		claims := &Claims{}
		parserOpts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
		if cfg.Issuer != "" {
			parserOpts = append(parserOpts, jwt.WithIssuer(cfg.Issuer))
		}

		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(cfg.Secret), nil
		}, parserOpts...)
		if err != nil || !token.Valid {
			abortUnauthorized(c, "invalid token")
			return
		}

		if claims.UserID == "" || claims.TenantID == "" {
			abortUnauthorized(c, "token missing required claims")
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("tenant_id", claims.TenantID)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": msg,
		},
	})
}
