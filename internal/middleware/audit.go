package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AuditAdmin registra no log toda alteração feita pelo painel.
func AuditAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet {
			c.Next()
			return
		}

		c.Next()

		who := "?"
		if sess := CurrentSession(c); sess != nil {
			who = sess.User.Email
		}
		status := c.Writer.Status()
		if status >= 200 && status < 300 {
			log.Printf("📝 Admin %s: %s %s (%d)", who, c.Request.Method, c.Request.URL.Path, status)
		} else {
			log.Printf("⚠️ Admin %s falhou: %s %s (%d)", who, c.Request.Method, c.Request.URL.Path, status)
		}
	}
}
