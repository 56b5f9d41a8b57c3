// Package cart mantém as linhas que o cliente pretende comprar.
//
// Duas adições do mesmo produto com o mesmo conjunto de ingredientes (em
// qualquer ordem) viram uma única linha; ingredientes diferentes geram linhas
// distintas. O preço é o do catálogo no momento da adição e nunca é
// recalculado depois.
package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"buymore_back_end/internal/models"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrInvalidQuantity = errors.New("quantidade inválida")
	ErrLineNotFound    = errors.New("item não encontrado no carrinho")
	ErrNotABundle      = errors.New("promoção não é um combo de produto")
)

// LowStockThreshold: abaixo disso a vitrine mostra "Últimas unidades".
const LowStockThreshold = 10

type Line struct {
	ID          string          `json:"id"`
	ProductID   gocql.UUID      `json:"product_id"`
	PromotionID *gocql.UUID     `json:"promotion_id,omitempty"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Unit        string          `json:"unit"`
	Ingredients []string        `json:"ingredients,omitempty"`
	Note        string          `json:"note,omitempty"`
}

func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// signature é a identidade de merge: produto + promoção + ingredientes ordenados.
func (l Line) signature() string {
	return signature(l.ProductID, l.PromotionID, l.Ingredients)
}

func signature(productID gocql.UUID, promotionID *gocql.UUID, ingredients []string) string {
	sorted := make([]string, len(ingredients))
	for i, ing := range ingredients {
		sorted[i] = norm.NFC.String(ing)
	}
	sort.Strings(sorted)
	// JSON delimita cada ingrediente, então nenhum separador pode colidir.
	set, _ := json.Marshal(sorted)
	promo := ""
	if promotionID != nil {
		promo = promotionID.String()
	}
	return productID.String() + "|" + promo + "|" + string(set)
}

type Cart struct {
	Lines []Line `json:"items"`
}

// Add soma quantity à linha idêntica ou cria uma nova com o preço atual do produto.
// A observação e os ingredientes de uma linha existente não são alterados.
func (c *Cart) Add(p models.Product, quantity int, ingredients []string, note string) (Line, error) {
	if quantity < 1 {
		return Line{}, fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}
	unit := p.Unit
	if unit == "" {
		unit = models.DefaultUnit
	}
	return c.merge(Line{
		ProductID:   p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Quantity:    quantity,
		Unit:        unit,
		Ingredients: append([]string(nil), ingredients...),
		Note:        note,
	}), nil
}

// AddBundle adiciona count combos de uma promoção de produto, cada um pelo
// preço especial.
func (c *Cart) AddBundle(promo models.Promotion, p models.Product, count int) (Line, error) {
	bundle, ok := promo.Offer.(models.ProductBundle)
	if !ok || bundle.ProductID != p.ID {
		return Line{}, ErrNotABundle
	}
	if count < 1 {
		return Line{}, fmt.Errorf("%w: %d", ErrInvalidQuantity, count)
	}
	name := promo.Title
	if name == "" {
		name = p.Name
	}
	unit := p.Unit
	if unit == "" {
		unit = models.DefaultUnit
	}
	promoID := promo.ID
	return c.merge(Line{
		ProductID:   p.ID,
		PromotionID: &promoID,
		Name:        name,
		Price:       bundle.SpecialPrice,
		Quantity:    count,
		Unit:        fmt.Sprintf("combo %d %s", bundle.Quantity, unit),
	}), nil
}

func (c *Cart) merge(line Line) Line {
	sig := line.signature()
	for i := range c.Lines {
		if c.Lines[i].signature() == sig {
			c.Lines[i].Quantity += line.Quantity
			return c.Lines[i]
		}
	}
	line.ID = uuid.NewString()
	c.Lines = append(c.Lines, line)
	return line
}

// Merge incorpora as linhas de outro carrinho (o anônimo, no login) com a
// mesma regra de identidade de Add.
func (c *Cart) Merge(other Cart) {
	for _, l := range other.Lines {
		l.Ingredients = append([]string(nil), l.Ingredients...)
		c.merge(l)
	}
}

// UpdateQuantity define a quantidade da linha; valores abaixo de 1 viram 1.
func (c *Cart) UpdateQuantity(lineID string, quantity int) (Line, error) {
	if quantity < 1 {
		quantity = 1
	}
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			c.Lines[i].Quantity = quantity
			return c.Lines[i], nil
		}
	}
	return Line{}, ErrLineNotFound
}

// Remove apaga a linha; devolve false se ela não existia.
func (c *Cart) Remove(lineID string) bool {
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return true
		}
	}
	return false
}

func (c *Cart) Clear() {
	c.Lines = nil
}

// Deduct tira do carrinho o que foi pedido: cada linha do pedido desconta sua
// quantidade da linha de mesmo id. O que entrou depois do pedido permanece.
func (c *Cart) Deduct(ordered []Line) {
	for _, o := range ordered {
		for i := range c.Lines {
			if c.Lines[i].ID != o.ID {
				continue
			}
			c.Lines[i].Quantity -= o.Quantity
			if c.Lines[i].Quantity < 1 {
				c.Remove(o.ID)
			}
			break
		}
	}
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Count soma as quantidades (o número mostrado no botão do carrinho).
func (c *Cart) Count() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) IsEmpty() bool { return len(c.Lines) == 0 }

// Snapshot copia as linhas para o checkout, que não deve ver mudanças posteriores.
func (c *Cart) Snapshot() []Line {
	out := make([]Line, len(c.Lines))
	for i, l := range c.Lines {
		l.Ingredients = append([]string(nil), l.Ingredients...)
		out[i] = l
	}
	return out
}

// StockHint é só informativo: o carrinho nunca recusa quantidade acima do estoque.
func StockHint(stock int) string {
	switch {
	case stock <= 0:
		return "Sem estoque"
	case stock < LowStockThreshold:
		return "Últimas unidades"
	}
	return ""
}
