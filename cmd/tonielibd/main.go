package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"tonielib/internal/config"
	"tonielib/internal/daemon"
	"tonielib/internal/logging"
)

// Environment overrides. The persisted configuration schema is owned by the
// setup wizard and carries no daemon transport settings, so bind address and
// paths come from the environment instead.
const (
	envConfigPath = "TONIELIB_CONFIG"
	envDataRoot   = "TONIELIB_DATA"
	envBind       = "TONIELIB_BIND"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	configPath := os.Getenv(envConfigPath)
	cfg, resolvedPath, exists, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	if !exists {
		logger.Info("no configuration file found, awaiting first-run setup",
			logging.String("config", resolvedPath))
	}

	d, err := daemon.New(daemon.Options{
		Config:     cfg,
		ConfigPath: resolvedPath,
		DataRoot:   os.Getenv(envDataRoot),
		Bind:       os.Getenv(envBind),
		Logger:     logger,
	})
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		os.Exit(1)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("tonielibd shutting down")
}
