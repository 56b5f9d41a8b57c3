package models

import (
	"time"

	"github.com/gocql/gocql"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID          gocql.UUID      `json:"id" db:"product_id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description,omitempty" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	ImageURL    string          `json:"image_url,omitempty" db:"image_url"`
	Unit        string          `json:"unit" db:"unit"`
	Stock       int             `json:"stock" db:"stock"`
	CategoryID  gocql.UUID      `json:"category_id" db:"category_id"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// DefaultUnit é usada quando o admin não informa a unidade de venda.
const DefaultUnit = "un"
