package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UkralStul/blog-service/internal/app"
	"github.com/UkralStul/blog-service/internal/config"
	"github.com/UkralStul/blog-service/internal/httpapi"
	"github.com/UkralStul/blog-service/internal/logger"
	"github.com/UkralStul/blog-service/internal/notify"
	"github.com/UkralStul/blog-service/internal/storage"
	"github.com/UkralStul/blog-service/internal/storage/inmemory"
	"github.com/UkralStul/blog-service/internal/storage/sqlstore"
)

func main() {
	cfg, err := config.Parse()
	if err != nil {
		slog.Error("failed to load config", logger.Error(err))
		os.Exit(1)
	}

	// флаг перекрывает STORAGE из окружения
	storageType := flag.String("storage", cfg.Storage, "Storage type (in-memory, postgres or sqlite)")
	flag.Parse()
	cfg.Storage = *storageType
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", logger.Error(err))
		os.Exit(1)
	}

	log := logger.New(
		logger.WithFormat(cfg.LogFormat),
		logger.WithLevel(cfg.LogLevel),
		logger.WithAttr(slog.String("service", "blog-service")),
	)

	store, closeStore, err := openStorage(cfg)
	if err != nil {
		log.Error("failed to open storage", slog.String("storage", cfg.Storage), logger.Error(err))
		os.Exit(1)
	}
	defer closeStore()
	log.Info("storage ready", slog.String("storage", cfg.Storage))

	if cfg.Storage == config.StorageInMemory && cfg.SeedData {
		// Заполним данными для тестов
		if err := fillWithMockData(context.Background(), store); err != nil {
			log.Error("failed to seed storage", logger.Error(err))
			os.Exit(1)
		}
		log.Info("mock data filled")
	}

	observer := notify.NewObserver()
	bus := app.NewBus(app.Deps{
		Storage:             store,
		Notifier:            observer,
		Logger:              log,
		UnknownFilterPolicy: cfg.UnknownFilterPolicy,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpapi.NewRouter(bus, observer, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("listening", slog.String("addr", "http://localhost:"+cfg.Port+"/api/posts"))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", logger.Error(err))
	}
}

func openStorage(cfg config.Config) (storage.Storage, func(), error) {
	switch cfg.Storage {
	case config.StoragePostgres:
		s, err := sqlstore.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case config.StorageSQLite:
		s, err := sqlstore.NewSQLite(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	default:
		return inmemory.New(), func() {}, nil
	}
}
