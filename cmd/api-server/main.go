package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"biodex/internal/bootstrap"
	"biodex/internal/explore"
	"biodex/internal/geoip"
	"biodex/internal/history"
	"biodex/internal/session"
	synchub "biodex/internal/sync"
	"biodex/pkg/database"
	"biodex/pkg/utils"
)

func main() {
	cfg := utils.Load()
	log := utils.MustLogger(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(database.Config{DSN: cfg.DSN})
	if err != nil {
		log.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal("db migrate failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline, err := bootstrap.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal("pipeline setup failed", zap.Error(err))
	}
	defer pipeline.Close()

	pipeline.Explorer.Sink = history.NewSink(history.NewRepo(db), log.Named("history"))

	exploreHandler := explore.NewHandler(pipeline.Explorer, pipeline.Images, pipeline.Builder)
	if cfg.GeoIPPath != "" {
		locator, err := geoip.Open(cfg.GeoIPPath)
		if err != nil {
			log.Warn("geoip disabled", zap.Error(err))
		} else {
			defer locator.Close()
			exploreHandler.Locator = locator
		}
	}

	hub := synchub.NewHub(50)
	hub.TTL = cfg.Session.Duration

	router := newRouter(deps{
		DB:      db,
		Hub:     hub,
		Explore: exploreHandler,
		Tokens: session.TokenService{
			Secret:   []byte(cfg.Session.Secret),
			Issuer:   cfg.Session.Issuer,
			Duration: cfg.Session.Duration,
		},
		Revoked:   session.NewRevocations(),
		RateLimit: cfg.RateLimitQPS,
		Log:       log,
	})

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP API server listening", zap.String("addr", cfg.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", zap.Error(err))
	}
	log.Info("server stopped")
}
