package session

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Purger deletes everything a repository holds for a session.
type Purger interface {
	DeleteSession(ctx context.Context, sessionID string) (int64, error)
}

type Handler struct {
	Tokens  TokenService
	Revoked *Revocations
	Purgers []Purger
	Log     *zap.Logger
}

func NewHandler(tokens TokenService, revoked *Revocations, purgers ...Purger) *Handler {
	return &Handler{Tokens: tokens, Revoked: revoked, Purgers: purgers, Log: zap.NewNop()}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.start)
	rg.GET("/me", Middleware(h.Tokens, h.Revoked), h.me)
	rg.DELETE("/me", Middleware(h.Tokens, h.Revoked), h.end)
}

func (h *Handler) start(c *gin.Context) {
	id := uuid.NewString()
	token, exp, err := h.Tokens.Sign(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token failed"})
		return
	}
	h.Log.Info("session started", zap.String("session", id))
	c.JSON(http.StatusCreated, gin.H{
		"session_id": id,
		"token":      token,
		"expires_at": exp.UTC(),
	})
}

func (h *Handler) me(c *gin.Context) {
	claims := MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var exp time.Time
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time.UTC()
	}
	c.JSON(http.StatusOK, gin.H{"session_id": claims.SessionID, "expires_at": exp})
}

// end purges the session's data and revokes its token.
func (h *Handler) end(c *gin.Context) {
	claims := MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var removed int64
	for _, p := range h.Purgers {
		n, err := p.DeleteSession(c.Request.Context(), claims.SessionID)
		if err != nil {
			h.Log.Error("purge session failed", zap.String("session", claims.SessionID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "purge failed"})
			return
		}
		removed += n
	}

	if h.Revoked != nil {
		until := time.Now().Add(h.Tokens.Duration)
		if claims.ExpiresAt != nil {
			until = claims.ExpiresAt.Time
		}
		h.Revoked.Revoke(claims.SessionID, until)
	}

	h.Log.Info("session ended", zap.String("session", claims.SessionID), zap.Int64("removed", removed))
	c.JSON(http.StatusOK, gin.H{"message": "session ended", "removed": removed})
}
