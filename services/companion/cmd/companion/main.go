package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"irisguide/internal/util"
	"irisguide/pkg/ai"
	"irisguide/pkg/auth"
	"irisguide/pkg/authstub"
	"irisguide/pkg/localstore"
	"irisguide/services/companion/internal/app"
	"irisguide/services/companion/internal/assistant"
	"irisguide/services/companion/internal/backendclient"
	"irisguide/services/companion/internal/config"
	"irisguide/services/companion/internal/device"
	"irisguide/services/companion/internal/geo"
	"irisguide/services/companion/internal/screens"
)

func main() {
	configPath := flag.String("config", config.ConfigPath, "path to companion.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		log.Fatalf("failed to create data dir: %v", err)
	}
	logFile, err := os.OpenFile(cfg.LogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		log.Fatalf("failed to open log file: %v", err)
	}
	defer logFile.Close()
	logger := util.InitLoggerTo(logFile, cfg.LogLevel)

	bolt, err := localstore.OpenBolt(cfg.StorePath())
	if err != nil {
		log.Fatalf("failed to open local store: %v", err)
	}
	store := localstore.New(bolt, logger)
	defer store.Close()

	var (
		authn   authstub.Authenticator
		backend screens.Backend
	)
	if cfg.BackendURL != "" {
		client := backendclient.NewClient(cfg.BackendURL)
		authn = authstub.NewRemote(client, store)
		backend = client
		logger.Info("companion using backend", "url", cfg.BackendURL)
	} else {
		authn = authstub.NewLocal(store, auth.Bcrypt{})
		logger.Info("companion running offline")
	}

	helper, err := assistant.New(ai.GeneratorConfig{
		Provider: cfg.AIProvider,
		APIKey:   cfg.AIAPIKey,
		Model:    cfg.AIModel,
		BaseURL:  cfg.AIBaseURL,
	})
	if err != nil {
		log.Fatalf("failed to init assistant: %v", err)
	}
	if !helper.Available() {
		logger.Warn("no AI key configured; assistant unavailable")
	}

	companion, err := app.New(app.Config{
		Store:     store,
		Auth:      authn,
		Backend:   backend,
		Camera:    &device.SimCamera{Deny: cfg.DenyCamera},
		Locator:   device.SimLocator{Deny: cfg.DenyLocation, Position: device.Position{Lat: cfg.Latitude, Lon: cfg.Longitude}},
		Geocoder:  geo.NewNominatim(cfg.NominatimURL, "iris-companion"),
		Assistant: helper,
		In:        os.Stdin,
		Out:       os.Stdout,
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("failed to init companion: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := companion.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("companion stopped", "err", err)
	}
}
