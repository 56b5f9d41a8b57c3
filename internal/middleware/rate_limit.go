package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"buymore_back_end/internal/cache"
	"buymore_back_end/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	LoginMaxAttempts  = 5
	SignUpMaxAttempts = 3
	APIMaxRequests    = 100 // por minuto
	CartMaxRequests   = 30
	SearchMaxRequests = 30

	LoginCooldown  = 15 * time.Minute
	SignUpCooldown = 30 * time.Minute
	APIWindow      = time.Minute
)

// limit conta requisições por chave e barra quando passa de max na janela.
// Erro no Redis deixa a requisição passar.
func limit(rl *cache.Redis, prefix string, max int64, window time.Duration, key func(*gin.Context) string, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl == nil {
			c.Next()
			return
		}
		k := key(c)
		if k == "" {
			c.Next()
			return
		}

		n, err := rl.IncrementRateLimit(c.Request.Context(), prefix+k, window)
		if err != nil {
			log.Printf("⚠️ Rate limit indisponível: %v", err)
			c.Next()
			return
		}
		c.Header("X-RateLimit-Limit", strconv.FormatInt(max, 10))
		if n > max {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       message,
				"retry_after": int(window.Seconds()),
			})
			c.Abort()
			return
		}
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max-n, 10))
		c.Next()
	}
}

func byIP(c *gin.Context) string { return c.ClientIP() }

func byUserOrIP(c *gin.Context) string {
	if id := c.GetString("user_id"); id != "" {
		return id
	}
	return c.ClientIP()
}

func APIRateLimit(rl *cache.Redis) gin.HandlerFunc {
	return limit(rl, "api_requests:", APIMaxRequests, APIWindow, byIP, "Muitas requisições. Tente de novo em 1 minuto")
}

func CartRateLimit(rl *cache.Redis) gin.HandlerFunc {
	return limit(rl, "cart_ops:", CartMaxRequests, time.Minute, byUserOrIP, "Muitas alterações no carrinho. Vá com calma")
}

func SearchRateLimit(rl *cache.Redis) gin.HandlerFunc {
	return limit(rl, "search_requests:", SearchMaxRequests, time.Minute, byIP, "Muitas buscas. Tente de novo em 1 minuto")
}

// SignUpRateLimit conta só os cadastros criados, por IP.
func SignUpRateLimit(rl *cache.Redis) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl == nil {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		key := "signup_attempts:" + c.ClientIP()

		attempts, _ := rl.Client.Get(ctx, key).Int()
		if attempts >= SignUpMaxAttempts {
			ttl := rl.Client.TTL(ctx, key).Val()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       fmt.Sprintf("Muitos cadastros. Tente de novo em %d minutos", int(ttl.Minutes())+1),
				"retry_after": int(ttl.Seconds()),
			})
			c.Abort()
			return
		}

		c.Next()

		if c.Writer.Status() == http.StatusCreated {
			if _, err := rl.IncrementRateLimit(ctx, key, SignUpCooldown); err != nil {
				log.Printf("⚠️ Erro ao contar cadastro: %v", err)
			}
		}
	}
}

// LoginRateLimit bloqueia o telefone depois de LoginMaxAttempts senhas erradas.
func LoginRateLimit(rl *cache.Redis) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl == nil {
			c.Next()
			return
		}

		// lê o corpo sem consumir
		bodyBytes, _ := io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		var input struct {
			Phone string `json:"phone"`
		}
		if err := json.Unmarshal(bodyBytes, &input); err != nil || models.DigitsOnly(input.Phone) == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		phone := models.DigitsOnly(input.Phone)
		key := "login_attempts:" + phone
		cooldownKey := "login_cooldown:" + phone

		if rl.Client.Exists(ctx, cooldownKey).Val() > 0 {
			ttl := rl.Client.TTL(ctx, cooldownKey).Val()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       fmt.Sprintf("Muitas tentativas. Tente de novo em %d minutos", int(ttl.Minutes())+1),
				"retry_after": int(ttl.Seconds()),
			})
			c.Abort()
			return
		}

		c.Next()

		switch c.Writer.Status() {
		case http.StatusUnauthorized:
			n, err := rl.IncrementRateLimit(ctx, key, LoginCooldown)
			if err != nil {
				log.Printf("⚠️ Erro ao contar tentativa de login: %v", err)
				return
			}
			if n >= LoginMaxAttempts {
				rl.Client.Set(ctx, cooldownKey, "1", LoginCooldown)
				rl.Client.Del(ctx, key)
				log.Printf("🔒 Login bloqueado para %s por %s", phone, LoginCooldown)
			}
		case http.StatusOK:
			rl.Client.Del(ctx, key, cooldownKey)
		}
	}
}
