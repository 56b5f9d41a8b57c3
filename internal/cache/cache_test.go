package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"buymore_back_end/internal/cart"
	"buymore_back_end/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gocql/gocql"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func rice() models.Product {
	return models.Product{ID: gocql.TimeUUID(), Name: "Arroz", Price: decimal.RequireFromString("10.00"), Stock: 20}
}

func TestCartStore_UpdatePersistsWithTTL(t *testing.T) {
	mr, rdb := newRedis(t)
	store := NewCartStore(rdb)
	ctx := context.Background()
	p := rice()

	c, err := store.Update(ctx, "u1", func(c *cart.Cart) error {
		_, err := c.Add(p, 2, nil, "")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 2, c.Count())

	got, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.True(t, got.Total().Equal(decimal.RequireFromString("20")))
	assert.Equal(t, CartTTL, mr.TTL("cart:u1"))
}

func TestCartStore_FailedMutationWritesNothing(t *testing.T) {
	mr, rdb := newRedis(t)
	store := NewCartStore(rdb)
	ctx := context.Background()

	_, err := store.Update(ctx, "u1", func(c *cart.Cart) error {
		_, err := c.Add(rice(), 0, nil, "")
		return err
	})
	assert.ErrorIs(t, err, cart.ErrInvalidQuantity)
	assert.False(t, mr.Exists("cart:u1"))
}

func TestCartStore_SequentialUpdatesSeeLatestSnapshot(t *testing.T) {
	_, rdb := newRedis(t)
	store := NewCartStore(rdb)
	ctx := context.Background()
	p := rice()

	for i := 0; i < 5; i++ {
		_, err := store.Update(ctx, "u1", func(c *cart.Cart) error {
			_, err := c.Add(p, 1, nil, "")
			return err
		})
		require.NoError(t, err)
	}
	got, _ := store.Get(ctx, "u1")
	require.Len(t, got.Lines, 1)
	assert.Equal(t, 5, got.Lines[0].Quantity)
}

func TestCartStore_EmptyCartDeletesKey(t *testing.T) {
	mr, rdb := newRedis(t)
	store := NewCartStore(rdb)
	ctx := context.Background()

	c, _ := store.Update(ctx, "u1", func(c *cart.Cart) error {
		_, err := c.Add(rice(), 1, nil, "")
		return err
	})
	_, err := store.Update(ctx, "u1", func(cc *cart.Cart) error {
		cc.Remove(c.Lines[0].ID)
		return nil
	})
	require.NoError(t, err)
	assert.False(t, mr.Exists("cart:u1"))
}

func TestCartStore_MergeAndClear(t *testing.T) {
	mr, rdb := newRedis(t)
	store := NewCartStore(rdb)
	ctx := context.Background()
	p := rice()

	add := func(id string, q int) {
		_, err := store.Update(ctx, id, func(c *cart.Cart) error {
			_, err := c.Add(p, q, nil, "")
			return err
		})
		require.NoError(t, err)
	}
	add("anon-1", 2)
	add("user-1", 1)

	merged, err := store.Merge(ctx, "anon-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, 3, merged.Count())
	assert.False(t, mr.Exists("cart:anon-1"))

	require.NoError(t, store.Clear(ctx, "user-1"))
	got, _ := store.Get(ctx, "user-1")
	assert.True(t, got.IsEmpty())
}

func TestCartStore_DeductKeepsLinesAddedAfterSnapshot(t *testing.T) {
	mr, rdb := newRedis(t)
	store := NewCartStore(rdb)
	ctx := context.Background()
	p, milk := rice(), models.Product{ID: gocql.TimeUUID(), Name: "Leite", Price: decimal.RequireFromString("5.00")}

	snap, err := store.Update(ctx, "u1", func(c *cart.Cart) error {
		_, err := c.Add(p, 2, nil, "")
		return err
	})
	require.NoError(t, err)
	ordered := snap.Snapshot()

	_, err = store.Update(ctx, "u1", func(c *cart.Cart) error {
		_, err := c.Add(milk, 1, nil, "")
		return err
	})
	require.NoError(t, err)

	require.NoError(t, store.Deduct(ctx, "u1", ordered))
	got, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, milk.ID, got.Lines[0].ProductID)

	require.NoError(t, store.Deduct(ctx, "u1", got.Snapshot()))
	assert.False(t, mr.Exists("cart:u1"))
}

func TestCartStore_PublishesUpdates(t *testing.T) {
	_, rdb := newRedis(t)
	store := NewCartStore(rdb)
	ctx := context.Background()

	sub := store.Subscribe(ctx, "u1")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	_, err = store.Update(ctx, "u1", func(c *cart.Cart) error {
		_, err := c.Add(rice(), 1, nil, "")
		return err
	})
	require.NoError(t, err)

	select {
	case msg := <-sub.Channel():
		assert.Equal(t, "updated", msg.Payload)
	case <-time.After(2 * time.Second):
		t.Fatal("nenhum evento publicado")
	}
}

func TestCatalogCache_ReadThroughAndInvalidate(t *testing.T) {
	_, rdb := newRedis(t)
	cc := NewCatalogCache(rdb)
	ctx := context.Background()

	calls := 0
	load := func(context.Context) ([]models.Category, error) {
		calls++
		return []models.Category{{ID: gocql.TimeUUID(), Name: "Bebidas", Type: models.CategorySupermarket}}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := cc.Categories(ctx, load)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Bebidas", got[0].Name)
	}
	assert.Equal(t, 1, calls)

	cc.Invalidate(ctx)
	_, _ = cc.Categories(ctx, load)
	assert.Equal(t, 2, calls)
}

func TestCatalogCache_PromotionVariantSurvivesCache(t *testing.T) {
	_, rdb := newRedis(t)
	cc := NewCatalogCache(rdb)
	ctx := context.Background()
	pid := gocql.TimeUUID()

	load := func(context.Context) ([]models.Promotion, error) {
		return []models.Promotion{{
			ID:       gocql.TimeUUID(),
			Title:    "Combo",
			IsActive: true,
			Offer:    models.ProductBundle{ProductID: pid, Quantity: 2, SpecialPrice: decimal.RequireFromString("15.00")},
		}}, nil
	}
	_, err := cc.Promotions(ctx, load)
	require.NoError(t, err)

	cached, err := cc.Promotions(ctx, func(context.Context) ([]models.Promotion, error) {
		return nil, errors.New("não deveria ser chamado")
	})
	require.NoError(t, err)
	require.Len(t, cached, 1)
	b, ok := cached[0].Offer.(models.ProductBundle)
	require.True(t, ok)
	assert.Equal(t, pid, b.ProductID)
	assert.True(t, b.SpecialPrice.Equal(decimal.NewFromInt(15)))
}

func TestCatalogCache_NilPassesThrough(t *testing.T) {
	var cc *CatalogCache
	got, err := cc.Products(context.Background(), func(context.Context) ([]models.Product, error) {
		return []models.Product{rice()}, nil
	})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestRedis_RateLimitAndBlacklist(t *testing.T) {
	mr, rdb := newRedis(t)
	r := NewRedis(rdb)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		n, err := r.IncrementRateLimit(ctx, "rl:login:1.2.3.4", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}
	assert.Equal(t, time.Minute, mr.TTL("rl:login:1.2.3.4"))

	assert.False(t, r.IsTokenBlacklisted(ctx, "jti-1"))
	require.NoError(t, r.BlacklistToken(ctx, "jti-1", time.Hour))
	assert.True(t, r.IsTokenBlacklisted(ctx, "jti-1"))
}
