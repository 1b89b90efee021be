package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"unlockpro/internal/bot"
	"unlockpro/internal/config"
	"unlockpro/internal/httpapi"
	"unlockpro/internal/leads"
	"unlockpro/internal/metrics"
	"unlockpro/internal/notify"
	"unlockpro/internal/storage"
	redisstore "unlockpro/internal/storage/redis"
	"unlockpro/internal/unlock"
	"unlockpro/pkg/api"
	"unlockpro/pkg/logger"
	"unlockpro/pkg/redis"
)

// ENTRY POINT

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	zapLogger, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	// unlockpro migrate [up|down|status]
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		command := ""
		if len(os.Args) > 2 {
			command = os.Args[2]
		}
		if err := runMigrate(ctx, cfg.Database, command, zapLogger); err != nil {
			zapLogger.Fatal("Migration failed", zap.Error(err))
		}
		return
	}

	if err := run(ctx, cfg, zapLogger); err != nil {
		zapLogger.Fatal("Service stopped with error", zap.Error(err))
	}
	zapLogger.Info("Service shutdown gracefully")
}

func runMigrate(ctx context.Context, cfg config.DatabaseConfig, command string, logger *zap.Logger) error {
	if !cfg.Enabled() {
		return errors.New("DB_HOST is not set")
	}
	pgStorage, err := storage.NewPostgresStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer pgStorage.Close()

	return storage.Migrate(ctx, pgStorage.DB().DB, command, logger)
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Redis
	redisClient, err := redis.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer redisClient.Close()
	stateStorage := redisstore.New(redisClient, cfg.Redis.StateTTL)

	// PostgreSQL lead journal
	var (
		journal    leads.Journal
		leadSource bot.LeadSource
	)
	if cfg.Database.Enabled() {
		pgStorage, err := storage.NewPostgresStorage(ctx, cfg.Database, logger)
		if err != nil {
			return fmt.Errorf("failed to init PostgreSQL storage: %w", err)
		}
		defer pgStorage.Close()

		if err := storage.RunMigrations(ctx, pgStorage.DB().DB, logger); err != nil {
			return err
		}
		journal = pgStorage
		leadSource = pgStorage
	} else {
		logger.Info("DB_HOST not set, lead journal disabled")
	}

	// Telegram
	var (
		botAPI   *tgbotapi.BotAPI
		notifier leads.Notifier
	)
	if cfg.Telegram.Token != "" {
		botAPI, err = bot.NewBotAPI(cfg.Telegram.Token, cfg.Telegram.APIEndpoint, cfg.Telegram.Timeout, cfg.Telegram.Debug, logger)
		if err != nil {
			return err
		}
		notifier = notify.NewTelegram(botAPI, cfg.Telegram.ChatID, cfg.Site.Name)
	} else {
		logger.Info("TELEGRAM_TOKEN not set, operator notifications disabled")
	}

	opts := unlock.DefaultOptions()
	opts.Seconds = cfg.Session.SessionSeconds()
	opts.TickInterval = cfg.Session.TickInterval
	opts.SubmitDelay = cfg.Session.SubmitDelay
	opts.CheckDelay = cfg.Session.CheckDelay
	opts.Retention = cfg.Session.Retention
	opts.SupportURL = cfg.Site.SupportWhatsAppURL
	manager := unlock.NewManager(opts, m, logger)
	defer manager.Shutdown()

	forms := leads.NewService(leads.Deps{
		Journal:  journal,
		Relay:    api.NewClient(cfg.Relay.URL, cfg.Relay.AccessKey, cfg.Relay.Timeout, logger),
		Notifier: notifier,
		Policy:   notify.NewBestEffort(cfg.Relay.Timeout, m, logger),
		Throttle: leads.NewThrottle(stateStorage, cfg.Site.IMEIChecksPerHour),
		Observer: m,
	}, logger)

	errCh := make(chan error, 2)

	if cfg.Telegram.Polling {
		tgBot := bot.New(botAPI, stateStorage, manager, forms, leadSource, bot.Options{
			AdminIDs:    cfg.Telegram.AdminIDs,
			SupportURL:  cfg.Site.SupportWhatsAppURL,
			SiteName:    cfg.Site.Name,
			PollTimeout: cfg.Telegram.PollTimeout,
		}, logger)
		go func() {
			if err := tgBot.Start(ctx); err != nil {
				errCh <- fmt.Errorf("bot stopped: %w", err)
			}
		}()
	}

	server := &http.Server{
		Addr: cfg.HTTP.Addr,
		Handler: httpapi.NewRouter(httpapi.Dependencies{
			Unlock:   manager,
			Forms:    forms,
			Health:   redisClient,
			Gatherer: registry,
			Logger:   logger,
		}),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown http server: %w", err)
	}
	return nil
}
