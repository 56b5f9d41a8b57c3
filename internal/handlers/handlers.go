// Package handlers expõe a loja em HTTP (gin).
package handlers

import (
	"errors"
	"log"
	"net/http"

	"buymore_back_end/internal/auth"
	"buymore_back_end/internal/cache"
	"buymore_back_end/internal/catalog"
	"buymore_back_end/internal/checkout"
	"buymore_back_end/internal/middleware"
	"buymore_back_end/internal/orders"
	"buymore_back_end/internal/services"
	"buymore_back_end/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/gorilla/websocket"
)

const (
	cookieName      = "buymore"
	cookieCartID    = "cart_id"
	cookieBannerOff = "promo_banner_closed"
)

// Deps junta tudo o que os handlers usam. Search, Images e Events podem ser nil.
type Deps struct {
	Store        store.Store
	Catalog      *catalog.Loader
	CatalogCache *cache.CatalogCache
	Carts        *cache.CartStore
	Events       *cache.Redis
	Auth         *auth.Service
	Checkout     *checkout.Composer
	Viewer       *orders.Viewer
	Orders       *orders.Admin
	Search       *services.Search
	Images       *services.Images
	Cookies      sessions.Store

	// AllowedOrigins são as origens aceitas no upgrade dos WebSockets.
	AllowedOrigins []string
}

type API struct {
	Deps
	upgrader websocket.Upgrader
}

func New(d Deps) *API {
	a := &API{Deps: d}
	a.upgrader.CheckOrigin = a.checkOrigin
	return a
}

// cookieSession sempre devolve uma sessão utilizável; cookie inválido vira sessão nova.
func (a *API) cookieSession(c *gin.Context) *sessions.Session {
	s, err := a.Cookies.Get(c.Request, cookieName)
	if err != nil {
		log.Printf("⚠️ Cookie de sessão inválido, recriando: %v", err)
	}
	return s
}

func (a *API) saveCookie(c *gin.Context, s *sessions.Session) {
	if err := s.Save(c.Request, c.Writer); err != nil {
		log.Printf("⚠️ Erro ao gravar cookie de sessão: %v", err)
	}
}

// anonCartID lê o id do carrinho anônimo; com create, gera e grava o cookie.
func (a *API) anonCartID(c *gin.Context, create bool) string {
	s := a.cookieSession(c)
	if id, ok := s.Values[cookieCartID].(string); ok && id != "" {
		return id
	}
	if !create {
		return ""
	}
	id := "anon:" + uuid.NewString()
	s.Values[cookieCartID] = id
	a.saveCookie(c, s)
	return id
}

func (a *API) forgetAnonCart(c *gin.Context) {
	s := a.cookieSession(c)
	if _, ok := s.Values[cookieCartID]; !ok {
		return
	}
	delete(s.Values, cookieCartID)
	a.saveCookie(c, s)
}

// cartID: usuário logado usa o carrinho da conta, visitante o do cookie.
func (a *API) cartID(c *gin.Context) string {
	if sess := middleware.CurrentSession(c); sess != nil {
		return sess.CartID()
	}
	return a.anonCartID(c, true)
}

func paramUUID(c *gin.Context, name string) (gocql.UUID, bool) {
	id, err := gocql.ParseUUID(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return gocql.UUID{}, false
	}
	return id, true
}

// storeError traduz erros do store em status HTTP.
func storeError(c *gin.Context, what string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": what + " não encontrado"})
	case errors.Is(err, store.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("❌ Erro em %s: %v", what, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
