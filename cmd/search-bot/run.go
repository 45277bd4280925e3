package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.mau.fi/util/exzerolog"
	"maunium.net/go/mautrix"

	"github.com/beeper/search-bot/pkg/search"
	"github.com/beeper/search-bot/pkg/searchbot"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to Matrix and answer search commands",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := searchbot.Load(configPath)
		if err != nil {
			return err
		}
		if err = cfg.Validate(); err != nil {
			return err
		}
		log, err := cfg.Logging.Compile()
		if err != nil {
			return fmt.Errorf("failed to configure logging: %w", err)
		}
		exzerolog.SetupDefaults(log)
		shutdownTracing, err := searchbot.SetupTracing(cfg.Tracing)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdownTracing(context.Background()); err != nil {
				log.Err(err).Msg("Failed to flush traces")
			}
		}()

		client, err := mautrix.NewClient(cfg.Homeserver, cfg.UserID, cfg.AccessToken)
		if err != nil {
			return fmt.Errorf("failed to create matrix client: %w", err)
		}
		client.DeviceID = cfg.DeviceID
		client.Log = log.With().Str("component", "matrix").Logger()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx = log.WithContext(ctx)

		bot := searchbot.NewBot(cfg, client, search.NewResolver(&cfg.Search), *log)
		log.Info().
			Str("version", Tag).
			Str("homeserver", cfg.Homeserver).
			Strs("commands", bot.Commands().Names()).
			Msg("Starting search bot")
		if err = bot.Start(ctx); err != nil {
			return err
		}
		log.Info().Msg("Shutting down")
		return nil
	},
}
