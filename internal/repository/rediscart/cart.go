// Package rediscart stores session carts in Redis hashes keyed by cart id.
package rediscart

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"rental-backend/internal/domain"
	"rental-backend/internal/logger"
	"rental-backend/internal/repository"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "rental:cart:"

type cartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCartRepository returns a cart store whose entries expire ttl after the
// last write.
func NewCartRepository(client *redis.Client, ttl time.Duration) repository.CartRepository {
	return &cartRepository{client: client, ttl: ttl}
}

// Connect parses a redis:// URL and verifies the server is reachable.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func key(cartID string) string {
	return keyPrefix + cartID
}

// Get returns the cart, or an empty cart when none is stored.
func (r *cartRepository) Get(ctx context.Context, cartID string) (*domain.Cart, error) {
	fields, err := r.client.HGetAll(ctx, key(cartID)).Result()
	if err != nil {
		logger.ExternalServiceResult("redis", "HGETALL", err, "cart_id", cartID)
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	cart := domain.NewCart()
	for field, value := range fields {
		itemID, err := strconv.ParseInt(field, 10, 32)
		if err != nil {
			continue
		}
		qty, err := strconv.ParseInt(value, 10, 32)
		if err != nil || qty <= 0 {
			continue
		}
		cart.Items[int32(itemID)] = int32(qty)
	}
	return cart, nil
}

// Save replaces the stored cart atomically and refreshes its TTL.
func (r *cartRepository) Save(ctx context.Context, cartID string, cart *domain.Cart) error {
	k := key(cartID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, k)
		if len(cart.Items) == 0 {
			return nil
		}
		values := make(map[string]any, len(cart.Items))
		for itemID, qty := range cart.Items {
			values[strconv.Itoa(int(itemID))] = strconv.Itoa(int(qty))
		}
		pipe.HSet(ctx, k, values)
		pipe.Expire(ctx, k, r.ttl)
		return nil
	})
	logger.ExternalServiceResult("redis", "SAVE_CART", err, "cart_id", cartID, "lines", len(cart.Items))
	if err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func (r *cartRepository) Delete(ctx context.Context, cartID string) error {
	if err := r.client.Del(ctx, key(cartID)).Err(); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}
