package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"buymore_back_end/internal/cart"

	"github.com/redis/go-redis/v9"
)

const (
	CartTTL        = 30 * 24 * time.Hour
	cartMaxRetries = 5
)

var ErrCartConflict = errors.New("carrinho alterado em paralelo, tente novamente")

// CartStore guarda cada carrinho como JSON em "cart:<id>". Toda alteração
// passa por Update, que relê o valor dentro de um WATCH e só grava se
// ninguém mexeu nele no meio.
type CartStore struct {
	rdb *redis.Client
}

func NewCartStore(rdb *redis.Client) *CartStore {
	return &CartStore{rdb: rdb}
}

func cartKey(id string) string { return "cart:" + id }

// Channel é o canal pub/sub do carrinho (mesmo nome da chave).
func Channel(id string) string { return cartKey(id) }

func readCart(ctx context.Context, c redis.Cmdable, key string) (cart.Cart, error) {
	var out cart.Cart
	data, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return out, nil
	}
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		log.Printf("⚠️ Carrinho %s corrompido, descartando: %v", key, err)
		return cart.Cart{}, nil
	}
	return out, nil
}

func (s *CartStore) Get(ctx context.Context, id string) (cart.Cart, error) {
	return readCart(ctx, s.rdb, cartKey(id))
}

// Update aplica fn sobre o estado mais recente do carrinho. Se fn devolver
// erro nada é gravado.
func (s *CartStore) Update(ctx context.Context, id string, fn func(*cart.Cart) error) (cart.Cart, error) {
	key := cartKey(id)
	var result cart.Cart

	txf := func(tx *redis.Tx) error {
		c, err := readCart(ctx, tx, key)
		if err != nil {
			return err
		}
		if err := fn(&c); err != nil {
			return err
		}
		data, err := json.Marshal(c)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if c.IsEmpty() {
				pipe.Del(ctx, key)
			} else {
				pipe.Set(ctx, key, data, CartTTL)
			}
			return nil
		})
		result = c
		return err
	}

	for i := 0; i < cartMaxRetries; i++ {
		err := s.rdb.Watch(ctx, txf, key)
		if err == nil {
			s.publish(ctx, id, "updated")
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return cart.Cart{}, err
	}
	return cart.Cart{}, ErrCartConflict
}

func (s *CartStore) Clear(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, cartKey(id)).Err(); err != nil {
		return fmt.Errorf("erro ao limpar carrinho: %w", err)
	}
	s.publish(ctx, id, "cleared")
	return nil
}

// Deduct remove do carrinho as linhas já pedidas, sobre o estado mais recente.
func (s *CartStore) Deduct(ctx context.Context, id string, ordered []cart.Line) error {
	_, err := s.Update(ctx, id, func(c *cart.Cart) error {
		c.Deduct(ordered)
		return nil
	})
	if err != nil {
		return fmt.Errorf("erro ao limpar carrinho: %w", err)
	}
	return nil
}

// Merge move o carrinho anônimo para o carrinho do usuário e apaga o anônimo.
func (s *CartStore) Merge(ctx context.Context, fromID, toID string) (cart.Cart, error) {
	if fromID == "" || fromID == toID {
		return s.Get(ctx, toID)
	}
	from, err := s.Get(ctx, fromID)
	if err != nil {
		return cart.Cart{}, err
	}
	if from.IsEmpty() {
		return s.Get(ctx, toID)
	}
	merged, err := s.Update(ctx, toID, func(c *cart.Cart) error {
		c.Merge(from)
		return nil
	})
	if err != nil {
		return cart.Cart{}, err
	}
	return merged, s.Clear(ctx, fromID)
}

func (s *CartStore) Subscribe(ctx context.Context, id string) *redis.PubSub {
	return s.rdb.Subscribe(ctx, Channel(id))
}

func (s *CartStore) publish(ctx context.Context, id, msg string) {
	if err := s.rdb.Publish(ctx, Channel(id), msg).Err(); err != nil {
		log.Printf("⚠️ Erro ao publicar evento do carrinho %s: %v", id, err)
	}
}
