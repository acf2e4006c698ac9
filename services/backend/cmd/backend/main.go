package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"irisguide/internal/util"
	"irisguide/pkg/alerts"
	"irisguide/pkg/storage"
	"irisguide/pkg/store"
	"irisguide/services/backend/internal/app"
	"irisguide/services/backend/internal/config"
	"irisguide/services/backend/internal/server"
)

func main() {
	configPath := flag.String("config", config.ConfigPath, "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	sessionTTL, err := config.ParseDuration("sessionTTL", cfg.SessionTTL)
	if err != nil {
		log.Fatalf("failed to parse session TTL: %v", err)
	}
	if sessionTTL == 0 {
		sessionTTL = 24 * time.Hour
	}
	jwtLeeway, _ := config.ParseDuration("jwtLeeway", cfg.JWTLeeway)
	presignTTL, _ := config.ParseDuration("presignTTL", cfg.PresignTTL)

	logger := util.InitLogger(cfg.LogLevel)

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	defer rdb.Close()
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		cancel()
		log.Fatalf("failed to reach redis: %v", err)
	}
	cancel()

	var sessions store.SessionStore
	if cfg.JWTSecret != "" {
		sessions, err = store.NewJWTSessionStore(cfg.JWTSecret, sessionTTL, store.NewRedisTokenRevoker(rdb, sessionTTL), store.JWTOptions{
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
			Leeway:   jwtLeeway,
		})
		if err != nil {
			log.Fatalf("failed to init jwt sessions: %v", err)
		}
	} else {
		sessions = store.NewRedisSessionStore(rdb, sessionTTL)
	}

	var dataStore store.Store
	if cfg.Store == config.StoreMemory {
		logger.Warn("using in-memory account store; data is lost on restart")
		dataStore = store.NewMemoryStore()
	}

	var objects storage.ObjectStore
	if cfg.MinioEndpoint != "" {
		objects, err = storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			log.Fatalf("failed to init object storage: %v", err)
		}
	}

	feed, err := alerts.NewRedisFeed(rdb, "iris:alerts", cfg.AlertStreamMaxLen)
	if err != nil {
		log.Fatalf("failed to init alert feed: %v", err)
	}

	appCore, err := app.New(app.Config{
		DatabaseURL: cfg.DatabaseURL,
		PresignTTL:  presignTTL,
		Store:       dataStore,
		Sessions:    sessions,
		Objects:     objects,
		Alerts:      feed,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	httpServer, err := server.New(server.Config{
		App:                        appCore,
		Redis:                      rdb,
		RegisterRateLimitPerMinute: cfg.RegisterRateLimitPerMin,
		LoginRateLimitPerMinute:    cfg.LoginRateLimitPerMinute,
		TrustedProxies:             cfg.TrustedProxies,
		RequireBearer:              cfg.RequireBearer,
	})
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("backend server listening", "addr", addr)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
		}
		return
	case <-ctx.Done():
	}
	slog.Info("shutting down backend server")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
}
