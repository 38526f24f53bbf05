package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"rabbit-bot/config"
	"rabbit-bot/console"
	"rabbit-bot/discord"
	"rabbit-bot/handlers"
	"rabbit-bot/middleware"
	"rabbit-bot/reminders"
	"rabbit-bot/store"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

func newRunCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Connect to Discord and start firing reminders",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*envFile)
			if err != nil {
				return err
			}
			if cfg.DiscordToken == "" {
				return errors.New("DISCORD_TOKEN is required")
			}
			setupLogging(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg)
		},
	}
}

func run(ctx context.Context, cfg config.Config) error {
	st, err := store.Open(cfg.StorePath)
	if err != nil {
		return fmt.Errorf("open reminder store: %w", err)
	}
	defer st.Close()

	auth := middleware.NewAuth(cfg.FeedSecret)
	hub := handlers.NewHub(auth)
	defer hub.Close()

	svc := reminders.NewService(st, hub)

	var con console.Client
	if cfg.ConsoleEnabled() {
		rc := console.New(cfg.ConsoleAddr(), cfg.ConsolePassword)
		if err := rc.Connect(); err != nil {
			log.Warn().Err(err).Str("component", "console").Str("addr", cfg.ConsoleAddr()).Msg("console not reachable yet, will retry on first command")
		}
		defer rc.Close()
		con = rc
	}

	bot, err := discord.New(cfg.DiscordToken, cfg.Presence)
	if err != nil {
		return err
	}
	bot.Bind(
		handlers.NewCommandHandler(svc, bot, con, cfg.Prefix),
		handlers.NewReactionHandler(reminders.NewResolver(svc), bot),
	)
	if err := bot.Open(ctx); err != nil {
		return err
	}
	defer bot.Close()

	sched := reminders.NewScheduler(st, bot, hub, cfg.TickInterval)
	sched.Start()

	var srv *http.Server
	errCh := make(chan error, 1)
	if cfg.HTTPAddr != "" {
		srv = &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           handlers.NewRouter(handlers.NewReminderHandler(svc), hub, auth),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			log.Info().Str("component", "http").Str("addr", cfg.HTTPAddr).Msg("operator API listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	log.Info().Str("store", cfg.StorePath).Str("prefix", cfg.Prefix).Msg("rabbit-bot running")

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case runErr = <-errCh:
		log.Error().Err(runErr).Str("component", "http").Msg("operator API failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := sched.Stop(shutdownCtx); err != nil {
		log.Warn().Err(err).Str("component", "scheduler").Msg("in-flight tick did not finish")
	}
	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Str("component", "http").Msg("shutdown incomplete")
		}
	}
	// Deferred closes follow: chat session, console, event feed, store.
	return runErr
}
