package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"buymore_back_end/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	CatalogTTL = time.Hour

	KeyProducts   = "products:all"
	KeyCategories = "categories:all"
	KeyPromotions = "promotions:all"
)

// CatalogCache é um read-through para as listas do catálogo. Sem Redis
// (valor nil) ele só repassa para o loader.
type CatalogCache struct {
	rdb *redis.Client
}

func NewCatalogCache(rdb *redis.Client) *CatalogCache {
	return &CatalogCache{rdb: rdb}
}

func (c *CatalogCache) Products(ctx context.Context, load func(context.Context) ([]models.Product, error)) ([]models.Product, error) {
	return remember(ctx, c, KeyProducts, load)
}

func (c *CatalogCache) Categories(ctx context.Context, load func(context.Context) ([]models.Category, error)) ([]models.Category, error) {
	return remember(ctx, c, KeyCategories, load)
}

func (c *CatalogCache) Promotions(ctx context.Context, load func(context.Context) ([]models.Promotion, error)) ([]models.Promotion, error) {
	return remember(ctx, c, KeyPromotions, load)
}

// Invalidate é chamado depois de qualquer escrita do painel admin.
func (c *CatalogCache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || c.rdb == nil {
		return
	}
	if len(keys) == 0 {
		keys = []string{KeyProducts, KeyCategories, KeyPromotions}
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Printf("⚠️ Erro ao invalidar cache do catálogo: %v", err)
	}
}

func remember[T any](ctx context.Context, c *CatalogCache, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	if c == nil || c.rdb == nil {
		return load(ctx)
	}

	if val, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var cached []T
		if err := json.Unmarshal(val, &cached); err == nil {
			return cached, nil
		}
	}

	items, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(items); err == nil {
		if err := c.rdb.Set(ctx, key, data, CatalogTTL).Err(); err != nil {
			log.Printf("⚠️ Erro ao gravar %s no cache: %v", key, err)
		}
	}
	return items, nil
}
