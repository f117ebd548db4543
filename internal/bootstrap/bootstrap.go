// Package bootstrap wires configuration into the concrete adapters shared by the binaries.
package bootstrap

import (
	"context"
	"fmt"
	"storefront/app"
	"storefront/infra/memory"
	"storefront/infra/postgres"
	"storefront/infra/rabbitmq"
	"storefront/infra/redisstore"
	"storefront/pkg/aws"
	"storefront/pkg/config"
	"storefront/pkg/events"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger installs a development zap logger as the global logger.
func Logger() *zap.Logger {
	zapConfig := zap.NewDevelopmentConfig()
	zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	logger, err := zapConfig.Build()
	if err != nil {
		panic(fmt.Errorf("fatal error building logger: %w", err))
	}
	zap.ReplaceGlobals(logger)
	return logger
}

// Repository opens the configured storage driver. Postgres gets its schema applied.
func Repository(ctx context.Context, cfg *config.AppConfig) (app.Repository, error) {
	switch cfg.StorageDriver {
	case "memory":
		zap.L().Warn("Using in-memory storage; data is lost on restart")
		return memory.NewRepository(), nil
	case "postgres":
		repository := postgres.NewPgRepository(cfg.PostgresDSN())
		if err := repository.Migrate(ctx); err != nil {
			_ = repository.Close()
			return nil, err
		}
		return repository, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// Carts keeps carts in Redis when REDIS_ADDR is set and in process memory otherwise.
func Carts(cfg *config.AppConfig) app.CartStore {
	if cfg.RedisAddr == "" {
		zap.L().Warn("REDIS_ADDR not set, carts are kept in memory")
		return memory.NewCartStore(cfg.CartTTL)
	}
	return redisstore.NewCartStore(redisstore.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB), cfg.CartTTL)
}

// Publisher returns nil when RABBITMQ_URL is unset; events are then dropped.
func Publisher(cfg *config.AppConfig) (events.Publisher, error) {
	if cfg.RabbitMQURL == "" {
		zap.L().Warn("RABBITMQ_URL not set, domain events are disabled")
		return nil, nil
	}

	publisher, err := rabbitmq.NewPublisher(cfg.RabbitMQURL, cfg.ServiceName)
	if err != nil {
		return nil, err
	}
	return publisher, nil
}

// Images returns nil when no bucket is configured, which disables image uploads.
func Images(cfg *config.AppConfig) app.ImageStore {
	if cfg.AWSBucket == "" {
		zap.L().Warn("AWS_BUCKET not set, image uploads are disabled")
		return nil
	}
	return aws.NewS3Bucket(cfg)
}
