package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"biodex/internal/explore"
	"biodex/internal/favorites"
	"biodex/internal/history"
	"biodex/internal/metrics"
	"biodex/internal/middleware"
	"biodex/internal/notes"
	"biodex/internal/session"
	"biodex/internal/sightings"
	synchub "biodex/internal/sync"
)

type deps struct {
	DB        *sql.DB
	Hub       *synchub.Hub
	Explore   *explore.Handler
	Tokens    session.TokenService
	Revoked   *session.Revocations
	RateLimit int
	Log       *zap.Logger
}

func newRouter(d deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(d.Log))

	// avoid "trusted all proxies" warning
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := d.Hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := d.DB.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":     "not_ready",
				"db_error":   err.Error(),
				"sessions":   stats.Sessions,
				"ws_clients": stats.WSClients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":     "ready",
			"db":         "ok",
			"sessions":   stats.Sessions,
			"ws_clients": stats.WSClients,
		})
	})

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Exploration (public; a session token only adds history)
	public := router.Group("/")
	public.Use(session.Optional(d.Tokens, d.Revoked))
	d.Explore.Limit = middleware.RateLimit(d.RateLimit)
	d.Explore.RegisterRoutes(public)

	favRepo := favorites.NewRepo(d.DB)
	noteRepo := notes.NewRepo(d.DB)
	sightRepo := sightings.NewRepo(d.DB)
	histRepo := history.NewRepo(d.DB)

	// Sessions
	sessHandler := session.NewHandler(d.Tokens, d.Revoked, favRepo, noteRepo, sightRepo, histRepo, d.Hub)
	sessHandler.Log = d.Log.Named("session")
	sessions := router.Group("/sessions")
	sessHandler.RegisterRoutes(sessions)
	sessions.GET("/events", session.Middleware(d.Tokens, d.Revoked), synchub.WSHandler(d.Hub, d.Log.Named("ws")))

	// Session data (protected)
	protected := router.Group("/")
	protected.Use(session.Middleware(d.Tokens, d.Revoked))
	favorites.NewHandler(favRepo, d.Hub).RegisterRoutes(protected)
	notes.NewHandler(noteRepo, d.Hub).RegisterRoutes(protected)
	sightings.NewHandler(sightRepo, d.Hub).RegisterRoutes(protected)
	history.NewHandler(histRepo).RegisterRoutes(protected)

	return router
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)))
	}
}
