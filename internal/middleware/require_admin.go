package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAdmin vem depois de AuthRequired; o papel sai de user_roles.
func RequireAdmin(c *gin.Context) {
	sess := CurrentSession(c)
	if sess == nil || !sess.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Acesso restrito a administradores"})
		c.Abort()
		return
	}
	c.Next()
}

// RequireApproved barra contas ainda não aprovadas pelo administrador.
func RequireApproved(c *gin.Context) {
	sess := CurrentSession(c)
	if sess == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Não autenticado"})
		c.Abort()
		return
	}
	if !sess.Approved() {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "Aguardando aprovação",
			"pending": true,
		})
		c.Abort()
		return
	}
	c.Next()
}
