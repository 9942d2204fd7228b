package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tg_shop/auth"
	"tg_shop/internal/config"
	db "tg_shop/internal/database"
	"tg_shop/internal/editor"
	"tg_shop/internal/handlers"
	"tg_shop/internal/store"
	"tg_shop/internal/telegram"
	"tg_shop/internal/utils"
)

const (
	janitorInterval = time.Minute
	pollWorkers     = 8
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("ошибка конфигурации", "error", err)
		os.Exit(1)
	}
	logger := utils.NewLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("бот остановлен с ошибкой", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := telegram.New(cfg.BotToken, logger)
	if err != nil {
		return err
	}

	if len(os.Args) > 1 && os.Args[1] == "setwebhook" {
		if cfg.WebhookURL == "" {
			return errors.New("BOT_URL is not set")
		}
		if err := client.SetWebhook(cfg.WebhookURL); err != nil {
			return err
		}
		logger.Info("вебхук установлен", "url", cfg.WebhookURL)
		return nil
	}

	docs, closeDocs, err := openDocStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeDocs()

	catalog := store.NewCatalogStore(docs, logger)
	bot := handlers.NewBot(handlers.Options{
		Messenger:      client,
		Catalog:        catalog,
		Carts:          store.NewCartStore(docs, catalog, logger),
		Orders:         store.NewOrderStore(docs, logger),
		Editor:         editor.NewMachine(catalog, cfg.SessionIdleTimeout, logger),
		Guard:          auth.NewGuard(cfg.OperatorID, logger),
		ReviewerID:     cfg.ReviewerID,
		PaymentDetails: cfg.PaymentDetails,
		Log:            logger,
	})
	go bot.RunJanitor(ctx, janitorInterval)

	if cfg.WebhookURL == "" {
		logger.Info("вебхук не задан, запускаем long polling")
		handlers.NewDispatcher(bot, pollWorkers).Run(ctx, client.Poll(ctx))
		return nil
	}
	return serve(ctx, cfg.ListenAddr, handlers.NewRouter(bot, logger), logger)
}

// openDocStore выбирает хранилище по STORE_BACKEND
func openDocStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (db.DocStore, func(), error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		gormDB, err := db.Connect(cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if sqlDB, err := gormDB.DB(); err == nil {
				sqlDB.Close()
			}
		}
		logger.Info("хранилище: postgres", "host", cfg.Postgres.Host, "db", cfg.Postgres.Name)
		return db.NewGormStore(gormDB), closeFn, nil

	case config.BackendRedis:
		client, err := db.ConnectRedis(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("хранилище: redis", "addr", cfg.RedisAddr, "namespace", cfg.RedisNamespace)
		return db.NewRedisStore(client, cfg.RedisNamespace), func() { client.Close() }, nil

	case config.BackendMemory:
		logger.Warn("хранилище в памяти: данные пропадут при перезапуске")
		return db.NewMemoryStore(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}

func serve(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("сервер запущен", "addr", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("сервер остановлен")
	return nil
}
