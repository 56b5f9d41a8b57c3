package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"buymore_back_end/internal/auth"
	"buymore_back_end/internal/middleware"

	"github.com/gin-gonic/gin"
)

// ================== CADASTRO / LOGIN ==================

func (a *API) SignUp(c *gin.Context) {
	var input auth.SignUpInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := a.Auth.SignUp(c.Request.Context(), input, a.anonCartID(c, false))
	switch {
	case errors.Is(err, auth.ErrInvalidSignUp):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, auth.ErrPhoneTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		log.Printf("❌ Erro no cadastro: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao criar conta"})
		return
	}
	a.forgetAnonCart(c)
	c.JSON(http.StatusCreated, gin.H{
		"token":   res.Token,
		"session": res.Session,
		"message": "Conta criada. Aguarde a aprovação do administrador.",
	})
}

func (a *API) SignIn(c *gin.Context) {
	var input struct {
		Phone    string `json:"phone" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := a.Auth.SignIn(c.Request.Context(), input.Phone, input.Password, a.anonCartID(c, false))
	if errors.Is(err, auth.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		log.Printf("❌ Erro no login: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao entrar"})
		return
	}
	a.forgetAnonCart(c)

	body := gin.H{"token": res.Token, "session": res.Session}
	if !res.Session.Approved() {
		body["warning"] = "Sua conta ainda não foi aprovada pelo administrador."
	}
	c.JSON(http.StatusOK, body)
}

func (a *API) SignOut(c *gin.Context) {
	a.Auth.SignOut(c.Request.Context(), middleware.CurrentSession(c))
	c.JSON(http.StatusOK, gin.H{"message": "Sessão encerrada"})
}

func (a *API) Me(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.CurrentSession(c))
}

// MergeCartOnSignIn leva o carrinho anônimo do navegador para a conta.
func (a *API) MergeCartOnSignIn() auth.Listener {
	return func(ctx context.Context, ev auth.Event) {
		if ev.Type != auth.SignedIn || ev.AnonCartID == "" {
			return
		}
		merged, err := a.Carts.Merge(ctx, ev.AnonCartID, ev.Session.CartID())
		if err != nil {
			log.Printf("⚠️ Erro ao juntar carrinho de %s: %v", ev.Session.User.Email, err)
			return
		}
		log.Printf("🛒 Carrinho de %s com %d itens após login", ev.Session.User.Email, merged.Count())
	}
}
