package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/kazerbreaker/murdero-image-studio/internal/config"
	"github.com/kazerbreaker/murdero-image-studio/internal/inject"
	"github.com/kazerbreaker/murdero-image-studio/internal/log"
	"github.com/kazerbreaker/murdero-image-studio/internal/server"
	"github.com/samber/do"
)

func main() {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		log.New(os.Stderr, log.ParseLevel("")).Error("loading configuration", "error", err)
		os.Exit(1)
	}

	logger := log.New(os.Stderr, log.ParseLevel(cfg.LogLevel))
	if err := run(log.NewContext(context.Background(), logger), cfg); err != nil {
		logger.Error("exiting", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	injector := inject.Setup(ctx, cfg)
	defer func() { _ = injector.Shutdown() }()

	srv, err := do.Invoke[*server.Server](injector)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}
