package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"buymore_back_end/internal/auth"
	"buymore_back_end/internal/cache"
	"buymore_back_end/internal/catalog"
	"buymore_back_end/internal/checkout"
	"buymore_back_end/internal/config"
	"buymore_back_end/internal/database"
	"buymore_back_end/internal/handlers"
	"buymore_back_end/internal/notify"
	"buymore_back_end/internal/orders"
	"buymore_back_end/internal/routes"
	"buymore_back_end/internal/services"
	"buymore_back_end/internal/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

func main() {
	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	st := openStore(cfg)
	defer st.Close()

	rdb, err := database.ConnectRedis(ctx, cfg)
	if err != nil {
		log.Fatal("❌ ", err)
	}
	defer rdb.Close()

	es, err := database.ConnectElastic(cfg)
	if err != nil {
		log.Println("⚠️", err)
	}
	mc, err := database.ConnectMinIO(ctx, cfg)
	if err != nil {
		log.Println("⚠️", err)
	}

	events := cache.NewRedis(rdb)
	carts := cache.NewCartStore(rdb)
	catalogCache := cache.NewCatalogCache(rdb)
	search := services.NewSearch(es)

	ordersAdmin := orders.NewAdmin(st, events)
	composer := checkout.NewComposer(st, notifier(cfg), checkout.Schedule{
		Days:         cfg.DeliveryDays,
		IncludeToday: cfg.DeliveryIncludeToday,
		Slots:        cfg.DeliverySlots,
		Buffer:       cfg.DeliveryBuffer,
		Location:     cfg.Location(),
	}, pix(cfg))
	composer.OnCreated(ordersAdmin.Created)

	authSvc := auth.NewService(st, auth.NewTokens(cfg.JWTSecret), events, auth.NewHub())

	api := handlers.New(handlers.Deps{
		Store:        st,
		Catalog:      catalog.NewLoader(st, catalogCache, search),
		CatalogCache: catalogCache,
		Carts:        carts,
		Events:       events,
		Auth:         authSvc,
		Checkout:     composer,
		Viewer:       orders.NewViewer(st),
		Orders:       ordersAdmin,
		Search:       search,
		Images:       services.NewImages(mc, cfg.MinioBucket, cfg.MinioEndpoint, cfg.MinioUseSSL),
		Cookies:      cookieStore(cfg),

		AllowedOrigins: cfg.CORSOrigins,
	})

	authSvc.Hub().Subscribe(authSvc.RevokeOnSignOut())
	authSvc.Hub().Subscribe(api.MergeCartOnSignIn())

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	routes.RegisterRoutes(r, api, authSvc, events)

	log.Println("🚀 Servidor Buy More rodando na porta", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("❌ ", err)
	}
}

func openStore(cfg *config.Config) store.Store {
	if cfg.StoreDriver == "memory" {
		log.Println("⚠️ STORE_DRIVER=memory, dados somem ao reiniciar")
		return store.NewMemory()
	}
	session, err := database.ConnectScylla(cfg)
	if err != nil {
		log.Fatal("❌ ", err)
	}
	return store.NewScylla(session)
}

// notifier liga o webhook e o e-mail que estiverem configurados.
func notifier(cfg *config.Config) notify.Notifier {
	var list notify.Multi
	if cfg.WebhookURL != "" {
		list = append(list, notify.NewWebhook(cfg.WebhookURL, cfg.WebhookSecret, cfg.WebhookTimeout))
		log.Println("📨 Webhook de pedidos ativado")
	}
	if cfg.SMTPHost != "" && cfg.ShopEmail != "" {
		from := cfg.SMTPUsername
		if !strings.Contains(from, "@") {
			from = cfg.ShopEmail
		}
		list = append(list, &notify.Mail{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     from,
			To:       cfg.ShopEmail,
		})
		log.Println("📨 E-mail de pedidos ativado para", cfg.ShopEmail)
	}
	if len(list) == 0 {
		log.Println("⚠️ Nenhuma notificação de pedido configurada")
		return notify.Noop{}
	}
	return list
}

func pix(cfg *config.Config) *checkout.Pix {
	if cfg.PixKey == "" {
		return nil
	}
	p, err := checkout.NewPix(cfg.PixKey, cfg.PixMerchant, cfg.PixCity)
	if err != nil {
		log.Println("⚠️ Pix desativado:", err)
		return nil
	}
	return p
}

// cookieStore guarda o id do carrinho anônimo e o banner fechado.
func cookieStore(cfg *config.Config) sessions.Store {
	cs := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	cs.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cache.CartTTL.Seconds()),
		HttpOnly: true,
		Secure:   strings.HasPrefix(cfg.BaseURL, "https://"),
		SameSite: http.SameSiteLaxMode,
	}
	return cs
}
