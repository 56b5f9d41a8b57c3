package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"buymore_back_end/internal/models"

	"github.com/redis/go-redis/v9"
)

// OrdersChannel recebe um evento por pedido criado ou status alterado.
const OrdersChannel = "orders:events"

// Redis agrupa as operações curtas: blacklist de tokens, rate limit e eventos.
type Redis struct {
	Client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{Client: client}
}

// --- Blacklist JWT (revogação antes de expirar) ---

func (r *Redis) BlacklistToken(ctx context.Context, tokenID string, duration time.Duration) error {
	key := fmt.Sprintf("blacklist:%s", tokenID)
	return r.Client.Set(ctx, key, "revoked", duration).Err()
}

func (r *Redis) IsTokenBlacklisted(ctx context.Context, tokenID string) bool {
	key := fmt.Sprintf("blacklist:%s", tokenID)
	exists, err := r.Client.Exists(ctx, key).Result()
	if err != nil {
		log.Printf("⚠️ Erro ao consultar blacklist: %v", err)
		return false
	}
	return exists > 0
}

// --- Rate limiting ---

// IncrementRateLimit incrementa o contador da janela e devolve o valor atual.
// O TTL só é definido no primeiro incremento, para a janela não deslizar.
func (r *Redis) IncrementRateLimit(ctx context.Context, key string, window time.Duration) (int64, error) {
	n, err := r.Client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := r.Client.Expire(ctx, key, window).Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}

// --- Eventos de pedidos ---

func (r *Redis) PublishOrderEvent(ctx context.Context, ev models.OrderEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return r.Client.Publish(ctx, OrdersChannel, data).Err()
}

func (r *Redis) SubscribeOrderEvents(ctx context.Context) *redis.PubSub {
	return r.Client.Subscribe(ctx, OrdersChannel)
}
