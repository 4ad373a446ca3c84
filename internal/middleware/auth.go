package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lalith-99/staffhub/internal/auth"
)

// Context keys for storing claims in gin.Context. Handlers go through the
// helpers below rather than reading the keys directly.
const (
	ContextKeyUserID   = "user_id"
	ContextKeyTenantID = "tenant_id"
	ContextKeyEmail    = "email"
	ContextKeyRole     = "role"
)

var (
	errMissingToken = errors.New("missing authorization header")
	errBadFormat    = errors.New("invalid authorization format, expected: Bearer <token>")
)

// AuthMiddleware returns a Gin middleware that validates JWT tokens from
// the Authorization header.
//
// If the token is invalid it aborts with 401 and the handler never runs.
// If it is valid the claims are stored with c.Set and the chain continues.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return authenticate(secret, false)
}

// WebSocketAuth is AuthMiddleware for the upgrade endpoint. Browsers cannot
// set headers on a websocket handshake, so the token may also arrive as the
// "token" query parameter.
func WebSocketAuth(secret string) gin.HandlerFunc {
	return authenticate(secret, true)
}

func authenticate(secret string, allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := bearerToken(c, allowQuery)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		claims, err := auth.ParseToken(tokenString, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired token",
			})
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyTenantID, claims.TenantID)
		c.Set(ContextKeyEmail, claims.Email)
		c.Set(ContextKeyRole, claims.Role)

		c.Next()
	}
}

func bearerToken(c *gin.Context, allowQuery bool) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if q := c.Query("token"); allowQuery && q != "" {
			return q, nil
		}
		return "", errMissingToken
	}

	// Split "Bearer eyJhbG..." into ["Bearer", "eyJhbG..."]
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", errBadFormat
	}
	return parts[1], nil
}

// ---------------------------------------------------------------
// Helper functions for handlers to extract claims from context.
//
// They do the type assertion once, in one place. A missing key yields the
// zero value, which fails any tenant-scoped query gracefully.
// ---------------------------------------------------------------

func GetUserID(c *gin.Context) uuid.UUID {
	return getUUID(c, ContextKeyUserID)
}

func GetTenantID(c *gin.Context) uuid.UUID {
	return getUUID(c, ContextKeyTenantID)
}

func GetEmail(c *gin.Context) string {
	return c.GetString(ContextKeyEmail)
}

func GetRole(c *gin.Context) string {
	return c.GetString(ContextKeyRole)
}

// GetIdentity bundles the verified caller for the service layer.
func GetIdentity(c *gin.Context) auth.Identity {
	return auth.Identity{
		UserID:   GetUserID(c),
		TenantID: GetTenantID(c),
		Email:    GetEmail(c),
		Role:     GetRole(c),
	}
}

func getUUID(c *gin.Context, key string) uuid.UUID {
	val, exists := c.Get(key)
	if !exists {
		return uuid.Nil
	}
	id, ok := val.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}
