package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/tasksync/internal/client/app"
	"github.com/dmitrijs2005/tasksync/internal/client/cli"
	"github.com/dmitrijs2005/tasksync/internal/client/config"
	"github.com/dmitrijs2005/tasksync/internal/logging"
)

func main() {

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer func() {
		if err := a.Dispose(); err != nil {
			logger.Error(context.Background(), "shutdown failed", "error", err)
		}
	}()

	if err := a.Init(ctx); err != nil {
		logger.Error(ctx, "init failed", "error", err)
		return
	}

	cli.Run(ctx, a, os.Stdin)

}
