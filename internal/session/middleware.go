package session

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const CtxClaimsKey = "session_claims"

// Middleware requires a valid session token, from the Authorization header
// or, for websocket upgrades, the "token" query parameter.
func Middleware(tokens TokenService, revoked *Revocations) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := tokenFrom(c)
		if raw == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session token"})
			c.Abort()
			return
		}

		claims, err := tokens.Parse(raw)
		if err != nil || revoked.Revoked(claims.SessionID) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid session token"})
			c.Abort()
			return
		}

		attach(c, claims)
		c.Next()
	}
}

// Optional attaches the session when a valid token is present and lets
// anonymous requests through.
func Optional(tokens TokenService, revoked *Revocations) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := tokenFrom(c); raw != "" {
			if claims, err := tokens.Parse(raw); err == nil && !revoked.Revoked(claims.SessionID) {
				attach(c, claims)
			}
		}
		c.Next()
	}
}

func MustGetClaims(c *gin.Context) *Claims {
	v, ok := c.Get(CtxClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*Claims)
	return claims
}

func attach(c *gin.Context, claims *Claims) {
	c.Set(CtxClaimsKey, claims)
	c.Request = c.Request.WithContext(WithID(c.Request.Context(), claims.SessionID))
}

func tokenFrom(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > len("bearer ") && strings.HasPrefix(strings.ToLower(h), "bearer ") {
		return strings.TrimSpace(h[len("Bearer "):])
	}
	return strings.TrimSpace(c.Query("token"))
}
