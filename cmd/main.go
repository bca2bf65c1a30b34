package main

import (
	"context"
	"os"

	"github.com/desertthunder/aria/internal/services"
	"github.com/desertthunder/aria/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	api := services.NewPlayerAPIClient(services.PlayerAPIOpts{
		BaseURL: config.Player.APIBaseURL(),
	})

	runner := NewRunner(RunnerOpts{
		Config: config,
		API:    api,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "aria",
		Usage:    "Sync and generate playlists on a remote music player",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
