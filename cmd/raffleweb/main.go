// Package main запускает локальный веб-интерфейс платформы розыгрышей.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/raffle-client/internal/api"
	"github.com/mmeshcher/raffle-client/internal/config"
	"github.com/mmeshcher/raffle-client/internal/identity"
	"github.com/mmeshcher/raffle-client/internal/raffles"
	"github.com/mmeshcher/raffle-client/internal/web"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	store := identity.NewFileStore(cfg.TokenFile)
	provider := identity.NewCognito(cfg.CognitoRegion, cfg.CognitoClientID, store, sugar)
	manager := identity.NewManager(provider, cfg.AdminGroup, sugar)
	defer manager.Close()

	rafflesClient := raffles.NewClient(api.NewClient(cfg.APIURL, sugar))

	// Восстановление сессии из сохранённых токенов до приёма запросов.
	hydrateCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	manager.Hydrate(hydrateCtx)
	cancel()

	h := web.NewHandler(manager, rafflesClient, logger)
	defer h.Shutdown()

	r := h.SetupRouter()

	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Запуск HTTP-сервера
	g.Go(func() error {
		sugar.Infow("starting raffle web server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
