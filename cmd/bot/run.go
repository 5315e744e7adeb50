package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pilegoblin/gembot/internal/bot"
	"github.com/pilegoblin/gembot/internal/config"
	"github.com/pilegoblin/gembot/internal/gemini"
	"github.com/pilegoblin/gembot/internal/logutil"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Connect to Discord and serve commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(viper.GetViper())
			if err != nil {
				return err
			}

			logger, err := logutil.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.AddSource)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
			defer stop()

			return run(ctx, cfg, logger)
		},
	}

	cmd.Flags().String("model", "", "Gemini model name.")
	cmd.Flags().String("history-dir", "", "Confine history files to this directory.")
	_ = viper.BindPFlag("gemini.model", cmd.Flags().Lookup("model"))
	_ = viper.BindPFlag("history.dir", cmd.Flags().Lookup("history-dir"))

	return cmd
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	prompter, err := gemini.NewPrompter(ctx, cfg.Gemini)
	if err != nil {
		return err
	}

	d := bot.NewDispatcher(prompter, bot.DispatcherOptions{
		Prefix:           cfg.Bot.Prefix,
		MaxMessageLength: cfg.Bot.MaxMessageLength,
		HistoryDir:       cfg.History.Dir,
		Logger:           logger,
	})

	bb, err := bot.New(ctx, cfg.Discord.Token, d, logger)
	if err != nil {
		return fmt.Errorf("creating discord session: %w", err)
	}
	bb.SetStatus(cfg.Bot.Status)

	logger.Info("starting", "model", cfg.Gemini.Model, "prefix", cfg.Bot.Prefix, "history_dir", cfg.History.Dir)
	if err := bb.Start(ctx); err != nil {
		return err
	}
	logger.Info("bot has exited")
	return nil
}
