package bootstrap

import (
	"context"
	"storefront/infra/memory"
	"storefront/infra/redisstore"
	"storefront/pkg/config"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryDrivers(t *testing.T) {
	repository, err := Repository(context.Background(), &config.AppConfig{StorageDriver: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &memory.Repository{}, repository)

	_, err = Repository(context.Background(), &config.AppConfig{StorageDriver: "mongo"})
	assert.EqualError(t, err, `unknown storage driver "mongo"`)
}

func TestCartsFallBackToMemory(t *testing.T) {
	assert.IsType(t, &memory.CartStore{}, Carts(&config.AppConfig{}))

	mr := miniredis.RunT(t)
	assert.IsType(t, &redisstore.CartStore{}, Carts(&config.AppConfig{RedisAddr: mr.Addr(), CartTTL: time.Hour}))
}

func TestOptionalAdaptersAreDisabledWithoutConfig(t *testing.T) {
	publisher, err := Publisher(&config.AppConfig{})
	require.NoError(t, err)
	assert.Nil(t, publisher)

	assert.Nil(t, Images(&config.AppConfig{}))
}
