package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.mau.fi/zeroconfig"

	"github.com/beeper/search-bot/pkg/search"
	"github.com/beeper/search-bot/pkg/searchbot"
)

var queryVerbose bool

var queryCmd = &cobra.Command{
	Use:   "query <terms...>",
	Short: "Run a single search and print the normalized result",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := searchbot.Load(configPath)
		if err != nil {
			return err
		}
		level := zerolog.WarnLevel
		if queryVerbose {
			level = zerolog.DebugLevel
		}
		logCfg := zeroconfig.Config{
			MinLevel: &level,
			Writers: []zeroconfig.WriterConfig{{
				Type:   zeroconfig.WriterTypeStderr,
				Format: zeroconfig.LogFormatPrettyColored,
			}},
		}
		log, err := logCfg.Compile()
		if err != nil {
			return fmt.Errorf("failed to configure logging: %w", err)
		}

		shutdownTracing, err := searchbot.SetupTracing(cfg.Tracing)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdownTracing(context.Background()); err != nil {
				log.Err(err).Msg("Failed to flush traces")
			}
		}()

		query := strings.Join(args, " ")
		outcome, err := search.NewResolver(&cfg.Search).Resolve(log.WithContext(cmd.Context()), query)
		if err != nil {
			return err
		}
		if outcome.FallbackErr != nil {
			log.Warn().Err(outcome.FallbackErr).Msg("Scrape fallback failed")
		}
		printOutcome(cmd.OutOrStdout(), outcome)
		return nil
	},
}

func init() {
	queryCmd.Flags().BoolVarP(&queryVerbose, "verbose", "v", false, "log pipeline details to stderr")
}

func printOutcome(w io.Writer, outcome *search.Outcome) {
	fmt.Fprintf(w, "source: %s (%s)\n", outcome.Kind, outcome.Took.Round(time.Millisecond))
	result, ok := outcome.Result()
	if !ok {
		fmt.Fprintln(w, "No result found!")
		return
	}
	if result.Title != "" {
		fmt.Fprintf(w, "title:  %s\n", result.Title)
	}
	if result.SourceURL != "" {
		fmt.Fprintf(w, "url:    %s\n", result.SourceURL)
	}
	if result.ImageURL != "" {
		fmt.Fprintf(w, "image:  %s\n", result.ImageURL)
	}
	if result.Body != "" {
		fmt.Fprintf(w, "\n%s\n", result.Body)
		return
	}
	topics := result.Topics
	if len(topics) > search.DefaultMaxTopicCount {
		topics = topics[:search.DefaultMaxTopicCount]
	}
	for i, topic := range topics {
		fmt.Fprintf(w, "%d. %s <%s>\n", i+1, topic.Title(), topic.FirstURL)
		if snippet := topic.Snippet(); snippet != "" {
			fmt.Fprintf(w, "   %s\n", snippet)
		}
	}
}
