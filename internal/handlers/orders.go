package handlers

import (
	"errors"
	"log"
	"net/http"

	"buymore_back_end/internal/middleware"
	"buymore_back_end/internal/models"
	"buymore_back_end/internal/orders"

	"github.com/gin-gonic/gin"
)

// GetOrderStatus mostra os últimos pedidos do telefone do cadastro.
// Admin pode consultar outro telefone com ?phone=.
func (a *API) GetOrderStatus(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	phone := sess.Profile.Phone
	if q := c.Query("phone"); q != "" && sess.IsAdmin {
		phone = q
	}
	list, err := a.Viewer.ByPhone(c.Request.Context(), phone)
	respondOrders(c, list, err)
}

// GetMyOrders lista todos os pedidos feitos com o e-mail da conta.
func (a *API) GetMyOrders(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	list, err := a.Viewer.ByEmail(c.Request.Context(), sess.User.Email)
	respondOrders(c, list, err)
}

func respondOrders(c *gin.Context, list []orders.View, err error) {
	if errors.Is(err, orders.ErrMissingKey) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		log.Printf("❌ Erro ao buscar pedidos: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if list == nil {
		list = []orders.View{}
	}
	c.JSON(http.StatusOK, gin.H{"orders": list})
}

// GetStatusTable devolve a tabela de apresentação dos status.
func (a *API) GetStatusTable(c *gin.Context) {
	all := []models.OrderStatus{
		models.StatusPending, models.StatusAccepted, models.StatusInProduction,
		models.StatusReady, models.StatusDelivered, models.StatusCancelled,
	}
	out := make([]orders.Presentation, 0, len(all))
	for _, s := range all {
		out = append(out, orders.Present(s))
	}
	c.JSON(http.StatusOK, out)
}
