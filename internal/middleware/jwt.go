package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"buymore_back_end/internal/auth"

	"github.com/gin-gonic/gin"
)

const sessionKey = "session"

// Resolver transforma o token Bearer na sessão do usuário.
type Resolver interface {
	Resolve(ctx context.Context, token string) (*auth.Session, error)
}

func bearer(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// AuthRequired resolve a sessão uma vez e a deixa no contexto do gin.
func AuthRequired(r Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearer(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token ausente ou mal formatado"})
			c.Abort()
			return
		}

		sess, err := r.Resolve(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrRevoked):
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Sessão encerrada, entre novamente"})
			case errors.Is(err, auth.ErrInvalidToken):
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Token inválido"})
			default:
				log.Printf("❌ Erro ao resolver sessão: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao carregar sessão"})
			}
			c.Abort()
			return
		}

		c.Set(sessionKey, sess)
		c.Set("user_id", sess.User.ID.String())
		c.Next()
	}
}

// OptionalAuth segue sem sessão quando o token falta ou não vale.
func OptionalAuth(r Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearer(c); ok {
			if sess, err := r.Resolve(c.Request.Context(), token); err == nil {
				c.Set(sessionKey, sess)
				c.Set("user_id", sess.User.ID.String())
			}
		}
		c.Next()
	}
}

// CurrentSession devolve nil para visitantes.
func CurrentSession(c *gin.Context) *auth.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*auth.Session)
	return sess
}
