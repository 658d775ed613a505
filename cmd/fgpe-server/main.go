package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"github.com/FGPE-Erasmus/lightweight-fgpe-server/internal/config"
	"github.com/FGPE-Erasmus/lightweight-fgpe-server/internal/domain"
	"github.com/FGPE-Erasmus/lightweight-fgpe-server/internal/events"
	"github.com/FGPE-Erasmus/lightweight-fgpe-server/internal/progression"
	"github.com/FGPE-Erasmus/lightweight-fgpe-server/internal/storage/postgres"
	"github.com/FGPE-Erasmus/lightweight-fgpe-server/internal/storage/sqlite"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	setupLogging(cfg)

	instanceID := uuid.New()
	slog.Info("starting progression engine", "instance_id", instanceID)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer closeStore()

	service := progression.NewService(store)

	if cfg.RabbitMQURL != "" {
		conn, err := events.NewConnection(cfg.RabbitMQURL)
		if err != nil {
			return fmt.Errorf("connect to event broker: %w", err)
		}
		defer conn.Close()
		service.SetEventPublisher(events.NewPublisher(conn, slog.Default()))
	}

	slog.Info("progression engine ready", "bind", cfg.Bind, "port", cfg.Port)

	<-ctx.Done()
	slog.Info("shutting down")
	return nil
}

// openStore selects the storage backend from the DSN. A postgres URL picks
// the pooled backend; anything else is treated as a SQLite path.
func openStore(ctx context.Context, dsn string) (domain.Store, func(), error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		db, err := postgres.Open(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrate postgres: %w", err)
		}
		return postgres.NewStore(db), db.Close, nil
	}

	db, err := sqlite.Open(dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return sqlite.NewStore(db), func() { db.Close() }, nil
}

func setupLogging(cfg *config.Config) {
	level := parseLogLevel(cfg.LogLevel)
	if cfg.Debug {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
