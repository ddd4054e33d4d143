// Package main contains the entrypoint for the DarkJarvis Telegram bot.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/spf13/cobra"

	"github.com/darkjarvis/darkjarvis/internal/ai"
	"github.com/darkjarvis/darkjarvis/internal/bot"
	"github.com/darkjarvis/darkjarvis/internal/bot/handlers"
	"github.com/darkjarvis/darkjarvis/internal/bot/tasks"
	"github.com/darkjarvis/darkjarvis/internal/broadcast"
	"github.com/darkjarvis/darkjarvis/internal/config"
	"github.com/darkjarvis/darkjarvis/internal/flow"
	"github.com/darkjarvis/darkjarvis/internal/logger"
	"github.com/darkjarvis/darkjarvis/internal/metrics"
	"github.com/darkjarvis/darkjarvis/internal/persona"
	"github.com/darkjarvis/darkjarvis/internal/session"
	"github.com/darkjarvis/darkjarvis/internal/store"
	"github.com/darkjarvis/darkjarvis/internal/store/sqlite"
	"github.com/darkjarvis/darkjarvis/internal/telegram"
	"github.com/darkjarvis/darkjarvis/internal/weather"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := 0
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		exitCode = 1
	}
	stop()
	os.Exit(exitCode)
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "darkjarvis",
		Short:         "DarkJarvis Telegram persona bot",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if code := run(cmd.Context(), configPath); code != 0 {
				return fmt.Errorf("exited with code %d", code)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "./config.yaml", "Path to configuration file")

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply SQLite schema migrations and exit",
		RunE: func(*cobra.Command, []string) error {
			return migrate(configPath)
		},
	})

	return root
}

func migrate(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", configPath, "error", err)
		return err
	}
	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)

	db, err := sqlite.Open(cfg.Storage.SQLitePath)
	if err != nil {
		log.Error("Failed to migrate database", "path", cfg.Storage.SQLitePath, "error", err)
		return err
	}
	log.Info("Database schema is up to date", "path", cfg.Storage.SQLitePath)
	return db.Close()
}

// openStore returns the configured persistence backend.
func openStore(cfg config.StorageConfig, log *slog.Logger) (store.Store, error) {
	switch cfg.Backend {
	case "sqlite":
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return sqlite.NewStore(db, log), nil
	default:
		return store.NewJSONStore(cfg.UsersPath, cfg.GroupsPath, log), nil
	}
}

// run wires every component, serves until ctx is cancelled and returns an
// exit code (0 for success, 1 for failure).
func run(ctx context.Context, configPath string) (exitCode int) {
	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON, "version", version)

	loc, err := cfg.Location()
	if err != nil {
		log.Error("Invalid scheduler timezone", "error", err)
		return 1
	}

	st, err := openStore(cfg.Storage, log)
	if err != nil {
		log.Error("Failed to open store", "backend", cfg.Storage.Backend, "error", err)
		return 1
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Error("Failed to close store", "error", err)
		}
	}()

	m := metrics.New()

	registry, err := ai.NewRegistryFromConfig(ctx, cfg.AI)
	if err != nil {
		log.Error("Failed to initialize AI providers", "error", err)
		return 1
	}

	sess := session.New(session.Options{
		DefaultProvider: cfg.AI.DefaultProvider,
		Providers:       registry.Names(),
		MaxWordsPerUser: cfg.Storage.MaxWordsPerUser,
		Logger:          log,
	})
	if err := sess.Restore(ctx, st); err != nil {
		log.Error("Failed to restore session state", "error", err)
		return 1
	}

	// Persist whatever was collected, also when a panic unwinds run.
	defer func() {
		exitCode = max(exitCode, finalFlush(sess, st, log, recover()))
	}()

	dispatcher := ai.NewDispatcher(registry, sess, ai.DispatcherConfig{
		Timeout:       cfg.AI.Timeout,
		NotConfigured: cfg.Messages.NotConfigured,
		Fallback:      cfg.Messages.AIFallback,
	}, m, log)
	flows := flow.NewManager(cfg.Bot.FlowTimeout)
	p := persona.New(cfg.Persona)

	hDeps := handlers.HandlerDeps{
		Logger:  log,
		Config:  cfg,
		Session: sess,
		Store:   st,
		AI:      dispatcher,
		Persona: p,
		Flows:   flows,
		Weather: weather.NewClient(cfg.Weather, nil),
		Metrics: m,
	}

	// The chat handler needs the bot identity and the broadcaster, both of
	// which exist only after the client is created. Polling starts later.
	var chat handlers.HandlerFunc
	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Recover(log), logger.Middleware(log), handlers.TrackSession(hDeps)),
		tgbot.WithDefaultHandler(func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			chat(ctx, b, update)
		}),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	hDeps.BotInfo, err = tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	log.Info("Retrieved bot info", "bot_id", hDeps.BotInfo.ID, "bot_username", hDeps.BotInfo.Username)

	broadcaster := broadcast.New(tg, broadcast.Options{
		Delay:       cfg.Scheduler.SendDelay,
		SendTimeout: cfg.Bot.SendTimeout,
		Metrics:     m,
		Logger:      log,
	})
	hDeps.Broadcaster = broadcaster
	chat = handlers.NewChatHandler(hDeps)

	if err := telegram.RegisterHandlers(tg, log, handlers.RegisterAllCommands(hDeps)); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}

	tDeps := tasks.TaskDeps{
		Logger:      log,
		Session:     sess,
		Store:       st,
		AI:          dispatcher,
		Persona:     p,
		Broadcaster: broadcaster,
		Flows:       flows,
	}
	sched, err := bot.NewScheduler(log, &cfg.Scheduler, loc, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	app := bot.NewBot(log, tg, sched, m, cfg.Metrics.Addr)

	log.Info("Starting bot...", "persona", p.Name, "provider", sess.Provider())
	runErr := app.Run(ctx)
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	return 0
}
