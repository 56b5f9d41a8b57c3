package models

import (
	"strings"
	"time"

	"github.com/gocql/gocql"
	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentPix        PaymentMethod = "pix"
	PaymentCreditCard PaymentMethod = "credit_card"
	PaymentDebitCard  PaymentMethod = "debit_card"
	PaymentCash       PaymentMethod = "cash"
)

// ParsePaymentMethod aceita também os valores antigos do formulário
// ("cartao", "dinheiro").
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pix":
		return PaymentPix, true
	case "credit_card", "cartao", "cartão":
		return PaymentCreditCard, true
	case "debit_card":
		return PaymentDebitCard, true
	case "cash", "dinheiro":
		return PaymentCash, true
	}
	return "", false
}

type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusAccepted       OrderStatus = "accepted"
	StatusInProduction   OrderStatus = "in_production"
	StatusPreparing      OrderStatus = "preparing"
	StatusReady          OrderStatus = "ready"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusInProduction, StatusPreparing,
		StatusReady, StatusOutForDelivery, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// OrderType define quais campos o checkout exige.
type OrderType string

const (
	OrderDelivery  OrderType = "delivery"
	OrderScheduled OrderType = "scheduled"
)

type Order struct {
	ID                 gocql.UUID      `json:"id" db:"order_id"`
	CustomerName       string          `json:"customer_name" db:"customer_name"`
	CustomerEmail      string          `json:"customer_email" db:"customer_email"`
	CustomerPhone      string          `json:"customer_phone" db:"customer_phone"`
	CustomerAddress    string          `json:"customer_address" db:"customer_address"`
	CustomerComplement string          `json:"customer_complement,omitempty" db:"customer_complement"`
	PaymentMethod      PaymentMethod   `json:"payment_method" db:"payment_method"`
	OrderType          OrderType       `json:"order_type" db:"order_type"`
	ScheduledDate      string          `json:"scheduled_date,omitempty" db:"scheduled_date"` // AAAA-MM-DD
	ScheduledTime      string          `json:"scheduled_time,omitempty" db:"scheduled_time"`
	Total              decimal.Decimal `json:"total" db:"total"`
	Status             OrderStatus     `json:"status" db:"status"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	Items              []OrderItem     `json:"items,omitempty"`
}

type OrderItem struct {
	ID          gocql.UUID      `json:"id" db:"item_id"`
	OrderID     gocql.UUID      `json:"order_id" db:"order_id"`
	ProductID   gocql.UUID      `json:"product_id" db:"product_id"`
	PromotionID *gocql.UUID     `json:"promotion_id,omitempty" db:"promotion_id"`
	Name        string          `json:"name" db:"name"`
	Quantity    int             `json:"quantity" db:"quantity"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Ingredients []string        `json:"ingredients,omitempty" db:"ingredients"`
}

// OrderEvent circula no canal Redis do painel admin.
type OrderEvent struct {
	Type    string      `json:"type"` // "created" ou "status_changed"
	OrderID gocql.UUID  `json:"order_id"`
	Status  OrderStatus `json:"status"`
}
