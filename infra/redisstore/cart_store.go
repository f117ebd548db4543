package redisstore

import (
	"context"
	"fmt"
	"storefront/domain"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "storefront:cart:"

// CartStore keeps each cart as a hash of item id to quantity with a sliding TTL.
type CartStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCartStore(client *redis.Client, ttl time.Duration) *CartStore {
	return &CartStore{client: client, ttl: ttl}
}

func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func (s *CartStore) Get(ctx context.Context, id string) (*domain.Cart, error) {
	values, err := s.client.HGetAll(ctx, cartKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("get cart %s: %w", id, err)
	}
	return toCart(id, values)
}

// AddItem increments one line and refreshes the TTL in a single MULTI block.
func (s *CartStore) AddItem(ctx context.Context, id string, itemID int64) (*domain.Cart, error) {
	key := cartKey(id)

	var lines *redis.StringStringMapCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, key, strconv.FormatInt(itemID, 10), 1)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		lines = pipe.HGetAll(ctx, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("add item %d to cart %s: %w", itemID, id, err)
	}

	return toCart(id, lines.Val())
}

// removeScript takes one unit off a line, dropping it at zero. Redis deletes the hash with its last field.
var removeScript = redis.NewScript(`
local qty = tonumber(redis.call('HGET', KEYS[1], ARGV[1]) or '0')
if qty > 1 then
  redis.call('HINCRBY', KEYS[1], ARGV[1], -1)
elseif qty == 1 then
  redis.call('HDEL', KEYS[1], ARGV[1])
end
if tonumber(ARGV[2]) > 0 and redis.call('EXISTS', KEYS[1]) == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return redis.call('HGETALL', KEYS[1])
`)

func (s *CartStore) RemoveItem(ctx context.Context, id string, itemID int64) (*domain.Cart, error) {
	res, err := removeScript.Run(ctx, s.client, []string{cartKey(id)},
		strconv.FormatInt(itemID, 10), s.ttl.Milliseconds()).Slice()
	if err != nil {
		return nil, fmt.Errorf("remove item %d from cart %s: %w", itemID, id, err)
	}

	values := make(map[string]string, len(res)/2)
	for i := 0; i+1 < len(res); i += 2 {
		field, _ := res[i].(string)
		value, _ := res[i+1].(string)
		values[field] = value
	}
	return toCart(id, values)
}

func (s *CartStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, cartKey(id)).Err(); err != nil {
		return fmt.Errorf("delete cart %s: %w", id, err)
	}
	return nil
}

func cartKey(id string) string {
	return keyPrefix + id
}

func toCart(id string, values map[string]string) (*domain.Cart, error) {
	cart := domain.NewCart(id)
	for field, value := range values {
		itemID, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("cart %s: bad item id %q: %w", id, field, err)
		}
		qty, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("cart %s: bad quantity %q: %w", id, value, err)
		}
		if qty > 0 {
			cart.Lines[itemID] = qty
		}
	}
	return cart, nil
}
