package auth

import (
	"context"
	"slices"
	"sync"

	"buymore_back_end/internal/checkout"
	"buymore_back_end/internal/models"
)

// Session é o contexto do usuário resolvido uma vez por requisição.
type Session struct {
	User    models.User    `json:"user"`
	Profile models.Profile `json:"profile"`
	IsAdmin bool           `json:"is_admin"`
	Claims  Claims         `json:"-"`
}

// Approved: admins passam sempre.
func (s *Session) Approved() bool {
	return s != nil && (s.IsAdmin || s.Profile.Approved)
}

// CartID é a chave do carrinho do usuário logado.
func (s *Session) CartID() string {
	return "user:" + s.User.ID.String()
}

// Customer preenche os dados do pedido agendado a partir do cadastro.
func (s *Session) Customer() checkout.Customer {
	if s == nil {
		return checkout.Customer{}
	}
	return checkout.Customer{
		Name:    s.Profile.FullName,
		Email:   s.User.Email,
		Phone:   s.Profile.Phone,
		Address: s.Profile.Address(),
	}
}

type EventType string

const (
	SignedIn  EventType = "signed_in"
	SignedOut EventType = "signed_out"
)

// Event é publicado no Hub a cada entrada ou saída.
type Event struct {
	Type    EventType
	Session Session
	// AnonCartID é o carrinho anônimo do navegador no momento do login.
	AnonCartID string
}

type Listener func(ctx context.Context, ev Event)

// Hub é o único ponto de inscrição para mudanças de sessão.
type Hub struct {
	mu        sync.RWMutex
	next      int
	listeners map[int]Listener
}

func NewHub() *Hub {
	return &Hub{listeners: make(map[int]Listener)}
}

// Subscribe devolve a função que cancela a inscrição.
func (h *Hub) Subscribe(fn Listener) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	h.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.listeners, id)
			h.mu.Unlock()
		})
	}
}

// Publish chama os ouvintes em ordem de inscrição, na goroutine de quem publica.
func (h *Hub) Publish(ctx context.Context, ev Event) {
	h.mu.RLock()
	ids := make([]int, 0, len(h.listeners))
	for id := range h.listeners {
		ids = append(ids, id)
	}
	fns := make([]Listener, 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, h.listeners[id])
	}
	h.mu.RUnlock()

	for _, fn := range fns {
		fn(ctx, ev)
	}
}
