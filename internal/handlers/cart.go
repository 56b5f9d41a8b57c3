package handlers

import (
	"errors"
	"log"
	"net/http"

	"buymore_back_end/internal/cache"
	"buymore_back_end/internal/cart"
	"buymore_back_end/internal/catalog"
	"buymore_back_end/internal/promotions"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/shopspring/decimal"
)

type cartView struct {
	Items []cart.Line       `json:"items"`
	Total decimal.Decimal   `json:"total"`
	Count int               `json:"count"`
	Hints map[string]string `json:"stock_hints,omitempty"`
}

// viewOf monta a resposta; snap pode ser nil (sem avisos de estoque).
func viewOf(ct cart.Cart, snap *catalog.Snapshot) cartView {
	v := cartView{Items: ct.Lines, Total: ct.Total(), Count: ct.Count()}
	if v.Items == nil {
		v.Items = []cart.Line{}
	}
	if snap == nil {
		return v
	}
	for _, l := range ct.Lines {
		p, ok := snap.Product(l.ProductID)
		if !ok {
			continue
		}
		if hint := cart.StockHint(p.Stock); hint != "" {
			if v.Hints == nil {
				v.Hints = map[string]string{}
			}
			v.Hints[l.ID] = hint
		}
	}
	return v
}

func cartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity), errors.Is(err, cart.ErrNotABundle):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, cart.ErrLineNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, cache.ErrCartConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("❌ Erro no carrinho: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao atualizar carrinho"})
	}
}

func (a *API) GetCart(c *gin.Context) {
	ct, err := a.Carts.Get(c.Request.Context(), a.cartID(c))
	if err != nil {
		cartError(c, err)
		return
	}
	snap, err := a.Catalog.Load(c.Request.Context())
	if err != nil {
		log.Printf("⚠️ Catálogo indisponível para avisos de estoque: %v", err)
	}
	c.JSON(http.StatusOK, viewOf(ct, snap))
}

func (a *API) AddToCart(c *gin.Context) {
	var input struct {
		ProductID   string   `json:"product_id" binding:"required"`
		Quantity    int      `json:"quantity"`
		Ingredients []string `json:"ingredients"`
		Note        string   `json:"note"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}
	productID, err := gocql.ParseUUID(input.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_id inválido"})
		return
	}

	ctx := c.Request.Context()
	snap, err := a.Catalog.Load(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	p, ok := snap.Product(productID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produto não encontrado"})
		return
	}

	ct, err := a.Carts.Update(ctx, a.cartID(c), func(ct *cart.Cart) error {
		_, err := ct.Add(p, input.Quantity, input.Ingredients, input.Note)
		return err
	})
	if err != nil {
		cartError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(ct, snap))
}

func (a *API) AddBundleToCart(c *gin.Context) {
	var input struct {
		PromotionID string `json:"promotion_id" binding:"required"`
		Count       int    `json:"count"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Count == 0 {
		input.Count = 1
	}
	promoID, err := gocql.ParseUUID(input.PromotionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "promotion_id inválido"})
		return
	}

	ctx := c.Request.Context()
	snap, err := a.Catalog.Load(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	promo, ok := snap.Promotion(promoID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Promoção não encontrada ou encerrada"})
		return
	}
	b, ok := promotions.Bundle(promo)
	if !ok {
		cartError(c, cart.ErrNotABundle)
		return
	}
	p, ok := snap.Product(b.ProductID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produto da promoção não encontrado"})
		return
	}

	ct, err := a.Carts.Update(ctx, a.cartID(c), func(ct *cart.Cart) error {
		_, err := ct.AddBundle(promo, p, input.Count)
		return err
	})
	if err != nil {
		cartError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(ct, snap))
}

func (a *API) UpdateCartLine(c *gin.Context) {
	var input struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lineID := c.Param("line_id")
	ct, err := a.Carts.Update(c.Request.Context(), a.cartID(c), func(ct *cart.Cart) error {
		_, err := ct.UpdateQuantity(lineID, input.Quantity)
		return err
	})
	if err != nil {
		cartError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(ct, nil))
}

// RemoveCartLine não falha para linha inexistente.
func (a *API) RemoveCartLine(c *gin.Context) {
	lineID := c.Param("line_id")
	ct, err := a.Carts.Update(c.Request.Context(), a.cartID(c), func(ct *cart.Cart) error {
		ct.Remove(lineID)
		return nil
	})
	if err != nil {
		cartError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(ct, nil))
}

func (a *API) ClearCart(c *gin.Context) {
	if err := a.Carts.Clear(c.Request.Context(), a.cartID(c)); err != nil {
		cartError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(cart.Cart{}, nil))
}
