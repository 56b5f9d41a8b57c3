package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"buymore_back_end/internal/models"

	"github.com/gocql/gocql"
)

// Memory guarda tudo em mapas protegidos por um RWMutex.
type Memory struct {
	mu         sync.RWMutex
	products   map[gocql.UUID]models.Product
	categories map[gocql.UUID]models.Category
	promotions map[gocql.UUID]models.Promotion
	orders     map[gocql.UUID]models.Order
	items      map[gocql.UUID][]models.OrderItem
	users      map[gocql.UUID]models.User
	emails     map[string]gocql.UUID
	profiles   map[gocql.UUID]models.Profile
	roles      map[gocql.UUID][]string
}

func NewMemory() *Memory {
	return &Memory{
		products:   make(map[gocql.UUID]models.Product),
		categories: make(map[gocql.UUID]models.Category),
		promotions: make(map[gocql.UUID]models.Promotion),
		orders:     make(map[gocql.UUID]models.Order),
		items:      make(map[gocql.UUID][]models.OrderItem),
		users:      make(map[gocql.UUID]models.User),
		emails:     make(map[string]gocql.UUID),
		profiles:   make(map[gocql.UUID]models.Profile),
		roles:      make(map[gocql.UUID][]string),
	}
}

func (m *Memory) Close() {}

// --- catálogo ---

func (m *Memory) ListProducts(_ context.Context) ([]models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sortProducts(out)
	return out, nil
}

func (m *Memory) GetProduct(_ context.Context, id gocql.UUID) (models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return models.Product{}, fmt.Errorf("produto %s: %w", id, ErrNotFound)
	}
	return p, nil
}

func (m *Memory) SaveProduct(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	if p.ID == (gocql.UUID{}) {
		p.ID = gocql.TimeUUID()
		p.CreatedAt = now
	} else if old, ok := m.products[p.ID]; ok {
		p.CreatedAt = old.CreatedAt
	} else {
		return fmt.Errorf("produto %s: %w", p.ID, ErrNotFound)
	}
	p.UpdatedAt = now
	m.products[p.ID] = *p
	return nil
}

func (m *Memory) DeleteProduct(_ context.Context, id gocql.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return fmt.Errorf("produto %s: %w", id, ErrNotFound)
	}
	delete(m.products, id)
	return nil
}

func (m *Memory) ListCategories(_ context.Context) ([]models.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Category, 0, len(m.categories))
	for _, c := range m.categories {
		out = append(out, c)
	}
	sortCategories(out)
	return out, nil
}

func (m *Memory) SaveCategory(_ context.Context, c *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == (gocql.UUID{}) {
		c.ID = gocql.TimeUUID()
	} else if _, ok := m.categories[c.ID]; !ok {
		return fmt.Errorf("categoria %s: %w", c.ID, ErrNotFound)
	}
	m.categories[c.ID] = *c
	return nil
}

func (m *Memory) DeleteCategory(_ context.Context, id gocql.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[id]; !ok {
		return fmt.Errorf("categoria %s: %w", id, ErrNotFound)
	}
	delete(m.categories, id)
	return nil
}

// --- promoções ---

func (m *Memory) ListPromotions(_ context.Context) ([]models.Promotion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Promotion, 0, len(m.promotions))
	for _, p := range m.promotions {
		out = append(out, p)
	}
	sortPromotions(out)
	return out, nil
}

func (m *Memory) GetPromotion(_ context.Context, id gocql.UUID) (models.Promotion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.promotions[id]
	if !ok {
		return models.Promotion{}, fmt.Errorf("promoção %s: %w", id, ErrNotFound)
	}
	return p, nil
}

func (m *Memory) SavePromotion(_ context.Context, p *models.Promotion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == (gocql.UUID{}) {
		p.ID = gocql.TimeUUID()
		p.CreatedAt = time.Now()
	} else if old, ok := m.promotions[p.ID]; ok {
		p.CreatedAt = old.CreatedAt
	} else {
		return fmt.Errorf("promoção %s: %w", p.ID, ErrNotFound)
	}
	m.promotions[p.ID] = *p
	return nil
}

func (m *Memory) DeletePromotion(_ context.Context, id gocql.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.promotions[id]; !ok {
		return fmt.Errorf("promoção %s: %w", id, ErrNotFound)
	}
	delete(m.promotions, id)
	return nil
}

// --- pedidos ---

func (m *Memory) InsertOrder(_ context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o.ID == (gocql.UUID{}) {
		o.ID = gocql.TimeUUID()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}
	stored := *o
	stored.Items = nil
	m.orders[o.ID] = stored
	return nil
}

func (m *Memory) InsertOrderItems(_ context.Context, orderID gocql.UUID, items []models.OrderItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[orderID]; !ok {
		return fmt.Errorf("pedido %s: %w", orderID, ErrNotFound)
	}
	for _, it := range items {
		if it.ID == (gocql.UUID{}) {
			it.ID = gocql.TimeUUID()
		}
		it.OrderID = orderID
		m.items[orderID] = append(m.items[orderID], it)
	}
	return nil
}

func (m *Memory) ListOrders(_ context.Context) ([]models.Order, error) {
	return m.filterOrders(func(models.Order) bool { return true }, 0), nil
}

func (m *Memory) GetOrder(_ context.Context, id gocql.UUID) (models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return models.Order{}, fmt.Errorf("pedido %s: %w", id, ErrNotFound)
	}
	return o, nil
}

func (m *Memory) ListOrdersByPhone(_ context.Context, phone string, limit int) ([]models.Order, error) {
	return m.filterOrders(func(o models.Order) bool { return o.CustomerPhone == phone }, limit), nil
}

func (m *Memory) ListOrdersByEmail(_ context.Context, email string) ([]models.Order, error) {
	return m.filterOrders(func(o models.Order) bool { return o.CustomerEmail == email }, 0), nil
}

func (m *Memory) filterOrders(keep func(models.Order) bool, limit int) []models.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Order
	for _, o := range m.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	sortOrders(out)
	return limitOrders(out, limit)
}

func (m *Memory) ListOrderItems(_ context.Context, orderID gocql.UUID) ([]models.OrderItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.OrderItem(nil), m.items[orderID]...), nil
}

func (m *Memory) UpdateOrderStatus(_ context.Context, id gocql.UUID, status models.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return fmt.Errorf("pedido %s: %w", id, ErrNotFound)
	}
	o.Status = status
	m.orders[id] = o
	return nil
}

// --- usuários ---

func (m *Memory) CreateUser(_ context.Context, u *models.User, p *models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	email := strings.ToLower(u.Email)
	if _, ok := m.emails[email]; ok {
		return fmt.Errorf("e-mail %s: %w", email, ErrDuplicate)
	}
	if u.ID == (gocql.UUID{}) {
		u.ID = gocql.TimeUUID()
	}
	now := time.Now()
	u.Email = email
	u.CreatedAt = now
	p.ID = u.ID
	p.CreatedAt = now
	p.UpdatedAt = now
	m.users[u.ID] = *u
	m.emails[email] = u.ID
	m.profiles[u.ID] = *p
	return nil
}

func (m *Memory) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.emails[strings.ToLower(email)]
	if !ok {
		return models.User{}, fmt.Errorf("e-mail %s: %w", email, ErrNotFound)
	}
	return m.users[id], nil
}

func (m *Memory) GetProfile(_ context.Context, userID gocql.UUID) (models.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[userID]
	if !ok {
		return models.Profile{}, fmt.Errorf("perfil %s: %w", userID, ErrNotFound)
	}
	return p, nil
}

func (m *Memory) ListProfiles(_ context.Context) ([]models.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Profile, 0, len(m.profiles))
	for _, p := range m.profiles {
		out = append(out, p)
	}
	sortProfiles(out)
	return out, nil
}

func (m *Memory) SetApproved(_ context.Context, userID gocql.UUID, approved bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return fmt.Errorf("perfil %s: %w", userID, ErrNotFound)
	}
	p.Approved = approved
	p.UpdatedAt = time.Now()
	m.profiles[userID] = p
	return nil
}

func (m *Memory) Roles(_ context.Context, userID gocql.UUID) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.roles[userID]...), nil
}

func (m *Memory) GrantRole(_ context.Context, userID gocql.UUID, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.roles[userID] {
		if r == role {
			return nil
		}
	}
	m.roles[userID] = append(m.roles[userID], role)
	return nil
}
