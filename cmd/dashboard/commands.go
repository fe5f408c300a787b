package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"dashboard/internal/app"
	"dashboard/internal/config"
	"dashboard/internal/database"
	"dashboard/internal/logger"
)

type Globals struct {
	Config  string
	EnvFile string
}

func (g *Globals) load() (*config.Config, *logrus.Logger, error) {
	if err := config.LoadEnvFile(g.EnvFile); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, logger.New(cfg.Server.Env, cfg.Logging), nil
}

type ServeCmd struct{}

func (c *ServeCmd) Run(g *Globals) error {
	cfg, log, err := g.load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.WithField("operation", "main.serve").Errorf("[db][close][err] %v", err)
		}
	}()
	return a.Run(ctx)
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(g *Globals) error {
	cfg, log, err := g.load()
	if err != nil {
		return err
	}

	db, err := database.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := database.Migrate(context.Background(), db, func(msg string) { log.Info(msg) })
	if err != nil {
		return err
	}
	fmt.Printf("Applied %d migration(s)\n", n)
	return nil
}
