package main

import (
	"context"
	"os"
	"os/signal"
	"storefront/infra/grpc"
	"storefront/internal/bootstrap"
	"storefront/pkg/config"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func main() {
	logger := bootstrap.Logger()
	defer logger.Sync()

	appConfig := config.Read()
	zap.L().Info("Catalog gRPC service starting...", zap.String("port", appConfig.GRPCPort))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	repository, err := bootstrap.Repository(ctx, appConfig)
	cancel()
	if err != nil {
		zap.L().Fatal("Failed to open repository", zap.Error(err))
	}
	defer repository.Close()

	server, err := grpc.NewServer(appConfig.GRPCPort, repository)
	if err != nil {
		zap.L().Fatal("Failed to create gRPC server", zap.Error(err))
	}

	go func() {
		if err := server.Start(); err != nil {
			zap.L().Error("gRPC server stopped", zap.Error(err))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	zap.L().Info("Shutdown signal received, stopping gRPC server...")
	server.GracefulStop()
	zap.L().Info("gRPC server stopped gracefully")
}
