// Package promotions valida e classifica as promoções do catálogo.
package promotions

import (
	"errors"
	"fmt"
	"time"

	"buymore_back_end/internal/models"

	"github.com/gocql/gocql"
	"github.com/shopspring/decimal"
)

var ErrInvalid = errors.New("promoção inválida")

var hundred = decimal.NewFromInt(100)

// Validate confere a variante e a janela de validade.
func Validate(p models.Promotion) error {
	if p.Title == "" {
		return fmt.Errorf("%w: título obrigatório", ErrInvalid)
	}
	switch o := p.Offer.(type) {
	case models.ProductBundle:
		if o.ProductID == (gocql.UUID{}) {
			return fmt.Errorf("%w: produto obrigatório", ErrInvalid)
		}
		if o.Quantity <= 0 {
			return fmt.Errorf("%w: quantidade deve ser maior que zero", ErrInvalid)
		}
		if !o.SpecialPrice.IsPositive() {
			return fmt.Errorf("%w: preço especial deve ser maior que zero", ErrInvalid)
		}
	case models.PercentageDiscount:
		if !o.Percentage.IsPositive() || o.Percentage.GreaterThan(hundred) {
			return fmt.Errorf("%w: desconto deve estar entre 0 e 100", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: %v", ErrInvalid, models.ErrUnknownOffer)
	}
	if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
		return fmt.Errorf("%w: data final antes da inicial", ErrInvalid)
	}
	return nil
}

// IsLive: ativa e dentro da janela (limites inclusivos; sem limite = aberto).
func IsLive(p models.Promotion, now time.Time) bool {
	if !p.IsActive {
		return false
	}
	if p.StartDate != nil && now.Before(*p.StartDate) {
		return false
	}
	if p.EndDate != nil && now.After(*p.EndDate) {
		return false
	}
	return true
}

// DiscountPercent é o desconto exibido no card do combo:
// round((original×qtd − especial) / (original×qtd) × 100).
func DiscountPercent(original, special decimal.Decimal, quantity int) int {
	full := original.Mul(decimal.NewFromInt(int64(quantity)))
	if !full.IsPositive() {
		return 0
	}
	pct := full.Sub(special).Div(full).Mul(hundred).Round(0)
	return int(pct.IntPart())
}

// Split separa as promoções vigentes em combos (com produto) e avulsas (banner).
func Split(all []models.Promotion, now time.Time) (bundles, standalone []models.Promotion) {
	for _, p := range all {
		if !IsLive(p, now) {
			continue
		}
		switch p.Offer.(type) {
		case models.ProductBundle:
			bundles = append(bundles, p)
		case models.PercentageDiscount:
			standalone = append(standalone, p)
		}
	}
	return bundles, standalone
}

// Bundle devolve a variante combo, se for o caso.
func Bundle(p models.Promotion) (models.ProductBundle, bool) {
	b, ok := p.Offer.(models.ProductBundle)
	return b, ok
}
