package models

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gocql/gocql"
	"github.com/shopspring/decimal"
)

// Offer é a parte variável de uma promoção: ProductBundle ou PercentageDiscount.
type Offer interface {
	Kind() string
}

// ProductBundle: levar Quantity unidades do produto por SpecialPrice.
type ProductBundle struct {
	ProductID    gocql.UUID
	Quantity     int
	SpecialPrice decimal.Decimal
}

func (ProductBundle) Kind() string { return "bundle" }

// PercentageDiscount: banner de desconto sem produto vinculado.
type PercentageDiscount struct {
	Percentage decimal.Decimal
}

func (PercentageDiscount) Kind() string { return "percentage" }

type Promotion struct {
	ID          gocql.UUID
	Title       string
	Description string
	ImageURL    string
	IsActive    bool
	StartDate   *time.Time
	EndDate     *time.Time
	Offer       Offer
	CreatedAt   time.Time
}

var ErrUnknownOffer = errors.New("promoção sem produto nem percentual")

// promotionJSON é o formato plano da tabela e da API.
type promotionJSON struct {
	ID                 gocql.UUID       `json:"id"`
	Kind               string           `json:"kind"`
	Title              string           `json:"title"`
	Description        string           `json:"description,omitempty"`
	ImageURL           string           `json:"image_url,omitempty"`
	IsActive           bool             `json:"is_active"`
	StartDate          *time.Time       `json:"start_date,omitempty"`
	EndDate            *time.Time       `json:"end_date,omitempty"`
	ProductID          *gocql.UUID      `json:"product_id,omitempty"`
	Quantity           int              `json:"quantity,omitempty"`
	SpecialPrice       *decimal.Decimal `json:"special_price,omitempty"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
}

func (p Promotion) MarshalJSON() ([]byte, error) {
	out := promotionJSON{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		IsActive:    p.IsActive,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		CreatedAt:   p.CreatedAt,
	}
	switch o := p.Offer.(type) {
	case ProductBundle:
		out.Kind = o.Kind()
		pid, price := o.ProductID, o.SpecialPrice
		out.ProductID = &pid
		out.Quantity = o.Quantity
		out.SpecialPrice = &price
	case PercentageDiscount:
		out.Kind = o.Kind()
		pct := o.Percentage
		out.DiscountPercentage = &pct
	}
	return json.Marshal(out)
}

// UnmarshalJSON escolhe a variante pelo campo "kind"; sem ele, a presença de
// product_id decide, como no formulário antigo do painel.
func (p *Promotion) UnmarshalJSON(data []byte) error {
	var in promotionJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	offer, err := OfferFromColumns(in.Kind, in.ProductID, in.Quantity, in.SpecialPrice, in.DiscountPercentage)
	if err != nil {
		return err
	}
	*p = Promotion{
		ID:          in.ID,
		Title:       in.Title,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		IsActive:    in.IsActive,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Offer:       offer,
		CreatedAt:   in.CreatedAt,
	}
	return nil
}

// OfferFromColumns reconstrói a variante a partir das colunas opcionais.
func OfferFromColumns(kind string, productID *gocql.UUID, quantity int, specialPrice, discount *decimal.Decimal) (Offer, error) {
	switch {
	case kind == "bundle" || (kind == "" && productID != nil && *productID != (gocql.UUID{})):
		b := ProductBundle{Quantity: quantity}
		if productID != nil {
			b.ProductID = *productID
		}
		if specialPrice != nil {
			b.SpecialPrice = *specialPrice
		}
		return b, nil
	case kind == "percentage" || (kind == "" && discount != nil):
		d := PercentageDiscount{}
		if discount != nil {
			d.Percentage = *discount
		}
		return d, nil
	}
	return nil, ErrUnknownOffer
}
