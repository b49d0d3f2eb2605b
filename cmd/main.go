package main

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/onlyhub/internal/services"
	"github.com/desertthunder/onlyhub/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	if err := shared.LoadEnvFiles(".env.local", ".env"); err != nil {
		logger.Warn("failed to load env files", "error", err)
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "error", err)
		}
	}
	config.ApplyEnv()

	var client *services.Client
	if config.BackendConfigured() {
		c, err := services.NewClient(services.ClientOpts{
			URL:     config.Backend.URL,
			AnonKey: config.Backend.AnonKey,
			Timeout: config.Timeout(),
			Logger:  logger,
		})
		if err != nil {
			logger.Warn("invalid backend configuration, running in local-only mode", "error", err)
		} else {
			client = c
		}
	} else {
		logger.Warn("backend not configured, running in local-only mode")
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		Client: client,
		Logger: logger,
	})
	defer runner.Close()

	app := &cli.Command{
		Name:    "onlyhub",
		Usage:   "Manage the OnlyHub storefront catalog",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("verbose") {
				shared.SetLogLevel(logger, log.DebugLevel)
			}
			return ctx, nil
		},
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			runner.Close()
			logger.Fatalf("application error: %v", err)
		}
	}
}
