package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"storefront/internal/bootstrap"
	"storefront/internal/server"
	"storefront/pkg/config"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	logger := bootstrap.Logger()
	defer logger.Sync()

	appConfig := config.Read()
	zap.L().Info("Storefront starting...",
		zap.String("port", appConfig.Port),
		zap.String("storageDriver", appConfig.StorageDriver),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	repository, err := bootstrap.Repository(ctx, appConfig)
	cancel()
	if err != nil {
		zap.L().Fatal("Failed to open repository", zap.Error(err))
	}
	defer repository.Close()

	publisher, err := bootstrap.Publisher(appConfig)
	if err != nil {
		zap.L().Fatal("Failed to connect event publisher", zap.Error(err))
	}
	if publisher != nil {
		defer publisher.Close()
	}

	app := server.New(server.Dependencies{
		Repository: repository,
		Carts:      bootstrap.Carts(appConfig),
		Images:     bootstrap.Images(appConfig),
		Publisher:  publisher,
		CartTTL:    appConfig.CartTTL,
	})

	go func() {
		if err := app.Listen(fmt.Sprintf("0.0.0.0:%s", appConfig.Port)); err != nil {
			zap.L().Error("Failed to start server", zap.Error(err))
			os.Exit(1)
		}
	}()

	zap.L().Info("Server started", zap.String("port", appConfig.Port))

	gracefulShutdown(app)
}

func gracefulShutdown(app *fiber.App) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	zap.L().Info("Shutting down server...")

	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		zap.L().Error("Error during server shutdown", zap.Error(err))
	}

	zap.L().Info("Server gracefully stopped")
}
