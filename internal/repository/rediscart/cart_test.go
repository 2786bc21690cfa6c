package rediscart

import (
	"context"
	"testing"
	"time"

	"rental-backend/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestCartRepository_GetMissing(t *testing.T) {
	_, client := setupTestRedis(t)
	repo := NewCartRepository(client, time.Hour)

	cart, err := repo.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.True(t, cart.Empty())
}

func TestCartRepository_SaveAndGet(t *testing.T) {
	mr, client := setupTestRedis(t)
	repo := NewCartRepository(client, time.Hour)
	ctx := context.Background()

	cart := domain.NewCart()
	cart.Items[1] = 3
	cart.Items[7] = 2
	require.NoError(t, repo.Save(ctx, "abc", cart))

	got, err := repo.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, map[int32]int32{1: 3, 7: 2}, got.Items)
	assert.Equal(t, int32(5), got.Count())
	assert.Equal(t, time.Hour, mr.TTL(key("abc")))

	// Saving a smaller cart drops the removed lines.
	delete(cart.Items, 7)
	require.NoError(t, repo.Save(ctx, "abc", cart))
	got, err = repo.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, map[int32]int32{1: 3}, got.Items)
}

func TestCartRepository_Expiry(t *testing.T) {
	mr, client := setupTestRedis(t)
	repo := NewCartRepository(client, time.Minute)
	ctx := context.Background()

	cart := domain.NewCart()
	cart.Items[1] = 1
	require.NoError(t, repo.Save(ctx, "abc", cart))

	mr.FastForward(2 * time.Minute)

	got, err := repo.Get(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, got.Empty())
}

func TestCartRepository_Delete(t *testing.T) {
	mr, client := setupTestRedis(t)
	repo := NewCartRepository(client, time.Hour)
	ctx := context.Background()

	cart := domain.NewCart()
	cart.Items[4] = 1
	require.NoError(t, repo.Save(ctx, "abc", cart))
	require.NoError(t, repo.Delete(ctx, "abc"))

	assert.False(t, mr.Exists(key("abc")))
}
