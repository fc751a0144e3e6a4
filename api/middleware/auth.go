package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/feichai0017/ai-ready-data/internal/billing"
	"github.com/feichai0017/ai-ready-data/pkg/logger"
)

const (
	// APIKeyHeader carries the caller's credential.
	APIKeyHeader = "X-API-Key"
	// CredentialKey is the gin context key holding the validated credential.
	CredentialKey = "credentialId"
)

// APIKeyAuth validates the X-API-Key header against the account store.
// Missing or unknown keys get a 401; quota enforcement happens later, in
// the processing path.
func APIKeyAuth(meter *billing.Meter, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(APIKeyHeader)
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "InvalidCredential",
				"message": "missing " + APIKeyHeader + " header",
			})
			return
		}

		if _, err := meter.Account(c.Request.Context(), key); err != nil {
			log.Warn("Rejected unknown credential",
				logger.String("path", c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "InvalidCredential",
				"message": "invalid credential",
			})
			return
		}

		c.Set(CredentialKey, key)
		c.Next()
	}
}

// AdminAuth guards the account management endpoints with a static token.
// An empty configured token disables the admin surface entirely.
func AdminAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" || c.GetHeader("X-Admin-Token") != token {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "InvalidCredential",
				"message": "invalid admin token",
			})
			return
		}
		c.Next()
	}
}

// Credential returns the validated credential from the request context.
func Credential(c *gin.Context) string {
	return c.GetString(CredentialKey)
}
