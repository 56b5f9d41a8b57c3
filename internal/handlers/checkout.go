package handlers

import (
	"context"
	"errors"
	"net/http"

	"buymore_back_end/internal/checkout"
	"buymore_back_end/internal/middleware"
	"buymore_back_end/internal/models"

	"github.com/gin-gonic/gin"
)

// GetDeliveryDates lista os próximos dias úteis para pedido agendado.
func (a *API) GetDeliveryDates(c *gin.Context) {
	s := a.Deps.Checkout.Schedule()
	c.JSON(http.StatusOK, gin.H{"dates": s.AvailableDates(a.Deps.Checkout.Now())})
}

// GetDeliverySlots diz quais horários do dia ainda aceitam pedido.
func (a *API) GetDeliverySlots(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Informe a data (AAAA-MM-DD)"})
		return
	}
	s := a.Deps.Checkout.Schedule()
	av, err := s.Availability(date, a.Deps.Checkout.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, av)
}

type checkoutRequest struct {
	OrderType models.OrderType `json:"order_type"`
	checkout.Form
}

// Checkout grava o pedido a partir do carrinho atual.
func (a *API) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var customer checkout.Customer
	if sess := middleware.CurrentSession(c); sess != nil {
		customer = sess.Customer()
	}

	ctx := c.Request.Context()
	id := a.cartID(c)
	ct, err := a.Carts.Get(ctx, id)
	if err != nil {
		cartError(c, err)
		return
	}

	// o diálogo vive só durante a requisição
	flow := a.Deps.Checkout.Open(req.OrderType, customer)
	defer flow.Close()
	if err := flow.Fill(req.Form); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	lines := ct.Snapshot()
	res, err := flow.Submit(ctx, lines, func(ctx context.Context) error {
		return a.Carts.Deduct(ctx, id, lines)
	})
	if err != nil {
		var verr *checkout.ValidationError
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "missing": verr.Missing})
		case errors.Is(err, checkout.ErrItemsNotSaved):
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":    err.Error(),
				"order_id": res.Order.ID,
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, res)
}
