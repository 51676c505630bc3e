package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"tracksuit_watcher/internal/classifier"
	"tracksuit_watcher/internal/config"
	"tracksuit_watcher/internal/notifier"
	"tracksuit_watcher/internal/scheduler"
	"tracksuit_watcher/internal/service"
	"tracksuit_watcher/internal/source/vinted"
	"tracksuit_watcher/internal/storage/postgres"
	"tracksuit_watcher/internal/storage/sqlite"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// Setup logger
	logger := setupLogger("info")

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	// Open storage
	var (
		db            *sqlx.DB
		items         service.ItemStore
		notifications service.NotificationStore
		watchState    service.WatchStateStore
	)
	switch cfg.Database.Driver {
	case "sqlite":
		db, err = sqlite.Open(cfg.Database.Path)
		if err != nil {
			logger.Error("failed to open database", "path", cfg.Database.Path, "error", err)
			os.Exit(1)
		}
		if err := sqlite.Migrate(db); err != nil {
			logger.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
		items = sqlite.NewItemStore(db)
		notifications = sqlite.NewNotificationStore(db)
		watchState = sqlite.NewWatchStateStore(db)
	default:
		db, err = sqlx.Connect("postgres", cfg.Database.DSN())
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		items = postgres.NewItemStore(db)
		notifications = postgres.NewNotificationStore(db)
		watchState = postgres.NewWatchStateStore(db)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database", "driver", cfg.Database.Driver)

	// Channels are opt-in: only configured destinations are wired.
	var channels []notifier.Channel
	if cfg.Channels.Discord.WebhookURL != "" {
		channels = append(channels, notifier.NewDiscord(cfg.Channels.Discord.WebhookURL))
	}
	if cfg.Channels.Telegram.BotToken != "" {
		channels = append(channels, notifier.NewTelegram(
			cfg.Channels.Telegram.BotToken,
			cfg.Channels.Telegram.ChatID,
		))
	}
	if cfg.Channels.Queue.URL != "" {
		queue, err := notifier.NewQueue(notifier.QueueConfig{
			URL:        cfg.Channels.Queue.URL,
			Exchange:   cfg.Channels.Queue.Exchange,
			RoutingKey: cfg.Channels.Queue.RoutingKey,
			QueueName:  cfg.Channels.Queue.QueueName,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer queue.Close()
		channels = append(channels, queue)
	}
	dispatcher := notifier.NewDispatcher(channels, logger)

	// Initialize source and classifier
	src := vinted.New(vinted.Config{
		SearchText: cfg.Source.SearchText,
		PerPage:    cfg.Source.PerPage,
		Timeout:    cfg.Source.Timeout,
	}, logger)

	cls := classifier.New(cfg.Rules)

	watchService := service.NewWatchService(
		src,
		cls,
		items,
		notifications,
		watchState,
		dispatcher,
		logger,
		cfg.Source,
	)

	sched := scheduler.NewScheduler(watchService, cfg.Watch.Interval, cfg.Watch.CycleTimeout, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	logger.Info("starting tracksuit watcher",
		"source", src.Name(),
		"endpoints", len(cfg.Source.Endpoints),
		"channels", len(channels),
		"interval", cfg.Watch.Interval,
	)

	if err := sched.Start(ctx); err != nil && err != context.Canceled {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
