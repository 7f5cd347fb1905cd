package main

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/twx/internal/services"
	"github.com/desertthunder/twx/internal/shared"
	"github.com/urfave/cli/v3"
)

const defaultConfigPath = "config.toml"

func main() {
	logger := shared.NewLogger(nil)

	configPath := defaultConfigPath
	if p := os.Getenv("TWX_CONFIG"); p != "" {
		configPath = p
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		}
	}

	var twitch services.ImplicitGrantService
	if svc, err := services.NewTwitchService(services.TwitchOpts{
		ClientID:   config.Twitch.ClientID,
		AuthURL:    config.Twitch.AuthURL,
		APIURL:     config.Twitch.APIURL,
		APIVersion: config.Twitch.APIVersion,
		Scopes:     config.Twitch.Scopes,
		RateLimit:  config.Twitch.RateLimit,
	}); err == nil {
		twitch = svc
	} else {
		logger.Debug("twitch service unavailable", "error", err)
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Twitch:     twitch,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "twx",
		Usage:    "Log in to Twitch from the terminal and query videos",
		Version:  "0.1.0",
		Commands: runner.register(),
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging", Sources: cli.EnvVars("TWX_DEBUG")},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				shared.SetLogLevel(logger, log.DebugLevel)
			}
			return ctx, nil
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		switch {
		case errors.Is(err, shared.ErrNotImplemented):
			logger.Warn("not implemented")
			os.Exit(0)
		case errors.Is(err, shared.ErrAuthCancelled):
			logger.Warn("login cancelled")
			os.Exit(130)
		default:
			logger.Fatalf("application error: %v", err)
		}
	}
}
