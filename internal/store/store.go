// Package store é a fronteira com o banco remoto. O driver Scylla é o de
// produção; o driver em memória atende testes e desenvolvimento local.
package store

import (
	"context"
	"errors"

	"buymore_back_end/internal/models"

	"github.com/gocql/gocql"
)

var (
	ErrNotFound  = errors.New("registro não encontrado")
	ErrDuplicate = errors.New("registro já existe")
)

type Catalog interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id gocql.UUID) (models.Product, error)
	SaveProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id gocql.UUID) error

	ListCategories(ctx context.Context) ([]models.Category, error)
	SaveCategory(ctx context.Context, c *models.Category) error
	DeleteCategory(ctx context.Context, id gocql.UUID) error
}

type Promotions interface {
	ListPromotions(ctx context.Context) ([]models.Promotion, error)
	GetPromotion(ctx context.Context, id gocql.UUID) (models.Promotion, error)
	SavePromotion(ctx context.Context, p *models.Promotion) error
	DeletePromotion(ctx context.Context, id gocql.UUID) error
}

// OrderWriter é o que o checkout precisa: cabeçalho e itens em duas escritas
// independentes, sem transação entre elas.
type OrderWriter interface {
	InsertOrder(ctx context.Context, o *models.Order) error
	InsertOrderItems(ctx context.Context, orderID gocql.UUID, items []models.OrderItem) error
}

type OrderReader interface {
	ListOrders(ctx context.Context) ([]models.Order, error)
	GetOrder(ctx context.Context, id gocql.UUID) (models.Order, error)
	ListOrdersByPhone(ctx context.Context, phone string, limit int) ([]models.Order, error)
	ListOrdersByEmail(ctx context.Context, email string) ([]models.Order, error)
	ListOrderItems(ctx context.Context, orderID gocql.UUID) ([]models.OrderItem, error)
}

type Orders interface {
	OrderWriter
	OrderReader
	UpdateOrderStatus(ctx context.Context, id gocql.UUID, status models.OrderStatus) error
}

type Users interface {
	CreateUser(ctx context.Context, u *models.User, p *models.Profile) error
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetProfile(ctx context.Context, userID gocql.UUID) (models.Profile, error)
	ListProfiles(ctx context.Context) ([]models.Profile, error)
	SetApproved(ctx context.Context, userID gocql.UUID, approved bool) error
	Roles(ctx context.Context, userID gocql.UUID) ([]string, error)
	GrantRole(ctx context.Context, userID gocql.UUID, role string) error
}

type Store interface {
	Catalog
	Promotions
	Orders
	Users
	Close()
}

// HasRole consulta user_roles; erro de leitura conta como "sem papel".
func HasRole(ctx context.Context, u Users, userID gocql.UUID, role string) bool {
	roles, err := u.Roles(ctx, userID)
	if err != nil {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
