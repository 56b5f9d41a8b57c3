// Package orders consulta pedidos para o cliente e para o painel admin.
package orders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"buymore_back_end/internal/models"
	"buymore_back_end/internal/store"

	"github.com/gocql/gocql"
)

// PhoneLimit: a tela de acompanhamento mostra só os últimos pedidos.
const PhoneLimit = 10

var (
	ErrInvalidStatus = errors.New("status inválido")
	ErrMissingKey    = errors.New("telefone ou e-mail não informado")
)

type View struct {
	models.Order
	Presentation Presentation `json:"presentation"`
}

type Viewer struct {
	orders store.OrderReader
}

func NewViewer(orders store.OrderReader) *Viewer {
	return &Viewer{orders: orders}
}

// ByPhone devolve os 10 pedidos mais recentes do telefone, com itens.
func (v *Viewer) ByPhone(ctx context.Context, phone string) ([]View, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, ErrMissingKey
	}
	list, err := v.orders.ListOrdersByPhone(ctx, phone, PhoneLimit)
	if err != nil {
		return nil, err
	}
	return withItems(ctx, v.orders, list)
}

// ByEmail não tem limite (página "Meus pedidos").
func (v *Viewer) ByEmail(ctx context.Context, email string) ([]View, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrMissingKey
	}
	list, err := v.orders.ListOrdersByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return withItems(ctx, v.orders, list)
}

func withItems(ctx context.Context, r store.OrderReader, list []models.Order) ([]View, error) {
	out := make([]View, 0, len(list))
	for _, o := range list {
		items, err := r.ListOrderItems(ctx, o.ID)
		if err != nil {
			return nil, fmt.Errorf("itens do pedido %s: %w", o.ID, err)
		}
		o.Items = items
		out = append(out, View{Order: o, Presentation: Present(o.Status)})
	}
	return out, nil
}

// Publisher avisa o painel em tempo real.
type Publisher interface {
	PublishOrderEvent(ctx context.Context, ev models.OrderEvent) error
}

type Admin struct {
	orders store.Orders
	events Publisher
}

// NewAdmin aceita events nil (sem feed em tempo real).
func NewAdmin(orders store.Orders, events Publisher) *Admin {
	return &Admin{orders: orders, events: events}
}

func (a *Admin) List(ctx context.Context) ([]View, error) {
	list, err := a.orders.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	return withItems(ctx, a.orders, list)
}

func (a *Admin) UpdateStatus(ctx context.Context, id gocql.UUID, status models.OrderStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if err := a.orders.UpdateOrderStatus(ctx, id, status); err != nil {
		return err
	}
	a.publish(ctx, models.OrderEvent{Type: "status_changed", OrderID: id, Status: status})
	return nil
}

// Created é chamado pelo checkout depois de gravar um pedido.
func (a *Admin) Created(ctx context.Context, o models.Order) {
	a.publish(ctx, models.OrderEvent{Type: "created", OrderID: o.ID, Status: o.Status})
}

func (a *Admin) publish(ctx context.Context, ev models.OrderEvent) {
	if a.events == nil {
		return
	}
	if err := a.events.PublishOrderEvent(ctx, ev); err != nil {
		log.Printf("⚠️ Erro ao publicar evento do pedido %s: %v", ev.OrderID, err)
	}
}
