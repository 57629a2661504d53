package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"openhouse/internal/api"
	"openhouse/internal/config"
	"openhouse/internal/database"
	"openhouse/internal/domain"
	"openhouse/internal/events"
	"openhouse/internal/logging"
	"openhouse/internal/metrics"
	"openhouse/internal/notifier"
	"openhouse/internal/notify"
	"openhouse/internal/repository"
	"openhouse/internal/service"
	"openhouse/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, logCloser, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	if logCloser != nil {
		defer logCloser.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.Register()

	// Backing store: the shared SQLite database, or a process-local map for
	// standalone runs.
	var backend domain.Backend
	switch cfg.Database.Driver {
	case config.DriverMemory:
		backend = repository.NewMemoryBackend()
		logger.Info().Msg("using in-memory backend (standalone mode)")
	default:
		db, err := database.NewDB(cfg.Database.Path, logger)
		if err != nil {
			return fmt.Errorf("failed to init database: %w", err)
		}
		backend = db
	}
	defer backend.Close()

	// Change notifier: Redis pub/sub when instances share the backend,
	// loopback otherwise.
	var changeNotifier domain.ChangeNotifier
	if cfg.Redis.Enabled {
		client := notifier.NewRedisClient(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize)
		if err := notifier.Ping(ctx, client); err != nil {
			return err
		}
		defer client.Close()
		changeNotifier = notifier.NewRedisNotifier(client, logger)
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis change notifications enabled")
	} else {
		changeNotifier = notifier.NewLoopbackNotifier()
	}

	eventBus := events.NewEventBus()
	mirror := store.New()

	slotService := service.NewSlotService(backend, mirror, eventBus, changeNotifier, logger)
	bookingService := service.NewBookingService(backend, mirror, eventBus, changeNotifier, logger)

	if cfg.Telegram.Enabled {
		tg, err := notify.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.AdminChatID, logger)
		if err != nil {
			return fmt.Errorf("failed to init telegram notifier: %w", err)
		}
		tg.Attach(eventBus)
		logger.Info().Int64("chat_id", cfg.Telegram.AdminChatID).Msg("telegram admin notifications enabled")
	}

	// Load the initial snapshots, then react to change signals by reloading.
	if err := slotService.RefreshAll(ctx); err != nil {
		return err
	}
	unsubscribe, err := changeNotifier.Subscribe(ctx,
		func() {
			if err := slotService.RefreshSlots(context.Background()); err != nil {
				logger.Error().Err(err).Msg("slot refresh on notification failed")
			}
		},
		func() {
			if err := slotService.RefreshBookings(context.Background()); err != nil {
				logger.Error().Err(err).Msg("booking refresh on notification failed")
			}
		},
	)
	if err != nil {
		return err
	}
	defer unsubscribe()

	if cfg.Booking.SeedDemoSlots {
		if err := slotService.SeedDemoSlots(ctx); err != nil {
			logger.Error().Err(err).Msg("demo seeding failed")
		}
	}

	httpServer := api.NewHTTPServer(*cfg, slotService, bookingService, logger)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- httpServer.Start()
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown failed: %w", err)
	}

	return nil
}
