package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"storefront/infra/postgres"
	"storefront/infra/rabbitmq"
	"storefront/internal/bootstrap"
	"storefront/internal/consumers"
	"storefront/pkg/config"
	"storefront/pkg/events"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func main() {
	logger := bootstrap.Logger()
	defer logger.Sync()

	zap.L().Info("Storefront worker starting...")

	appConfig := config.Read()
	if appConfig.RabbitMQURL == "" {
		zap.L().Fatal("RABBITMQ_URL is required for the worker")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repository, err := bootstrap.Repository(ctx, appConfig)
	if err != nil {
		zap.L().Fatal("Failed to open repository", zap.Error(err))
	}
	defer repository.Close()

	stockHandler := consumers.NewStockEventHandler(repository)

	stockConsumer, err := rabbitmq.NewConsumer(appConfig.RabbitMQURL, rabbitmq.ConsumerConfig{
		Exchange:       events.StockExchange,
		QueueName:      appConfig.ServiceName + ".stock.all.v1",
		RoutingKeys:    []string{"stock.*.v1"},
		ServiceName:    appConfig.ServiceName,
		PrefetchCount:  10,
		WorkerPoolSize: 10,
	})
	if err != nil {
		zap.L().Fatal("Failed to create stock consumer", zap.Error(err))
	}
	defer stockConsumer.Close()

	go func() {
		if err := stockConsumer.Consume(ctx, stockHandler.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
			zap.L().Error("Stock consumer stopped", zap.Error(err))
			cancel()
		}
	}()

	if pg, ok := repository.(*postgres.PgRepository); ok {
		go monitorPool(ctx, pg)
	}

	zap.L().Info("Worker started, consuming stock events", zap.String("exchange", events.StockExchange))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		zap.L().Info("Shutdown signal received, stopping worker...")
	case <-ctx.Done():
	}
	cancel()

	zap.L().Info("Worker stopped")
}

func monitorPool(ctx context.Context, pg *postgres.PgRepository) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := pg.GetPoolStats()
			zap.L().Info("Connection pool stats",
				zap.Int("maxOpen", stats.MaxOpenConnections),
				zap.Int("open", stats.OpenConnections),
				zap.Int("inUse", stats.InUse),
				zap.Int("idle", stats.Idle),
				zap.Int64("waitCount", stats.WaitCount),
				zap.Duration("waitDuration", stats.WaitDuration),
			)
		}
	}
}
