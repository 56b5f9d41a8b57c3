package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"buymore_back_end/internal/models"
	"buymore_back_end/internal/orders"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const wsPingInterval = 30 * time.Second

// checkOrigin: o upgrade não passa pelo CORS, então a origem é conferida aqui.
// Sem cabeçalho Origin (cliente fora do navegador) a conexão é aceita.
func (a *API) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range a.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(strings.TrimSuffix(allowed, "/"), origin) {
			return true
		}
	}
	u, err := url.Parse(origin)
	if err == nil && strings.EqualFold(u.Host, r.Host) {
		return true
	}
	log.Printf("⚠️ WebSocket recusado para a origem %s", origin)
	return false
}

// readLoop descarta o que o cliente manda e avisa quando a conexão cai.
func readLoop(conn *websocket.Conn) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	return done
}

// CartWebSocket envia o carrinho inteiro a cada alteração, em qualquer aba
// ou aparelho que use o mesmo carrinho.
func (a *API) CartWebSocket(c *gin.Context) {
	id := a.cartID(c)

	conn, err := a.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ Erro no upgrade do WebSocket: %v", err)
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	pubsub := a.Carts.Subscribe(ctx, id)
	defer pubsub.Close()
	ch := pubsub.Channel()
	done := readLoop(conn)

	send := func(kind string) bool {
		ct, err := a.Carts.Get(ctx, id)
		if err != nil {
			log.Printf("⚠️ Erro ao ler carrinho %s: %v", id, err)
			return true
		}
		v := viewOf(ct, nil)
		if err := conn.WriteJSON(gin.H{"type": kind, "items": v.Items, "total": v.Total, "count": v.Count}); err != nil {
			log.Printf("❌ Erro ao enviar pelo WebSocket: %v", err)
			return false
		}
		return true
	}

	if !send("connected") {
		return
	}

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if msg.Payload == "updated" || msg.Payload == "cleared" {
				if !send("cart_" + msg.Payload) {
					return
				}
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// OrdersWebSocket é o feed do painel: um evento por pedido novo ou status alterado.
func (a *API) OrdersWebSocket(c *gin.Context) {
	if a.Events == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Feed de pedidos indisponível"})
		return
	}

	conn, err := a.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ Erro no upgrade do WebSocket: %v", err)
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	pubsub := a.Events.SubscribeOrderEvents(ctx)
	defer pubsub.Close()
	ch := pubsub.Channel()
	done := readLoop(conn)

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ev models.OrderEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("⚠️ Evento de pedido inválido: %v", err)
				continue
			}
			out := gin.H{"type": ev.Type, "order_id": ev.OrderID, "status": ev.Status, "presentation": orders.Present(ev.Status)}
			if err := conn.WriteJSON(out); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		case <-ctx.Done():
			return
		}
	}
}
