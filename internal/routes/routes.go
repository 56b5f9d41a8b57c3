package routes

import (
	"net/http"

	"buymore_back_end/internal/cache"
	"buymore_back_end/internal/handlers"
	"buymore_back_end/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes monta a API. limiter pode ser nil (sem rate limit).
func RegisterRoutes(r *gin.Engine, api *handlers.API, resolver middleware.Resolver, limiter *cache.Redis) {
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	g := r.Group("/api", middleware.APIRateLimit(limiter))
	optional := middleware.OptionalAuth(resolver)
	required := middleware.AuthRequired(resolver)

	// Catálogo (público)
	g.GET("/catalog", middleware.SearchRateLimit(limiter), api.GetCatalog)
	g.GET("/products/:id", api.GetProduct)
	g.GET("/banner", api.GetBanner)
	g.POST("/banner/close", api.CloseBanner)
	g.GET("/orders/statuses", api.GetStatusTable)

	// Auth
	a := g.Group("/auth")
	a.POST("/signup", middleware.SignUpRateLimit(limiter), api.SignUp)
	a.POST("/login", middleware.LoginRateLimit(limiter), api.SignIn)
	a.POST("/logout", required, api.SignOut)
	a.GET("/me", required, api.Me)

	// Carrinho: visitante usa o cookie, usuário logado o carrinho da conta
	cart := g.Group("/cart", optional, middleware.CartRateLimit(limiter))
	cart.GET("", api.GetCart)
	cart.POST("/items", api.AddToCart)
	cart.POST("/bundles", api.AddBundleToCart)
	cart.PATCH("/items/:line_id", api.UpdateCartLine)
	cart.DELETE("/items/:line_id", api.RemoveCartLine)
	cart.DELETE("", api.ClearCart)
	g.GET("/cart/ws", optional, api.CartWebSocket)

	// Checkout e pedidos exigem conta aprovada
	shop := g.Group("", required, middleware.RequireApproved)
	shop.GET("/checkout/dates", api.GetDeliveryDates)
	shop.GET("/checkout/slots", api.GetDeliverySlots)
	shop.POST("/checkout", api.Checkout)
	shop.GET("/orders/status", api.GetOrderStatus)
	shop.GET("/orders/mine", api.GetMyOrders)

	// Painel admin
	admin := g.Group("/admin", required, middleware.RequireAdmin, middleware.AuditAdmin())
	admin.GET("/products", api.AdminListProducts)
	admin.POST("/products", api.CreateProduct)
	admin.PUT("/products/:id", api.UpdateProduct)
	admin.DELETE("/products/:id", api.DeleteProduct)
	admin.POST("/products/image", api.UploadProductImage)

	admin.GET("/categories", api.AdminListCategories)
	admin.POST("/categories", api.CreateCategory)
	admin.PUT("/categories/:id", api.UpdateCategory)
	admin.DELETE("/categories/:id", api.DeleteCategory)

	admin.GET("/promotions", api.AdminListPromotions)
	admin.POST("/promotions", api.CreatePromotion)
	admin.PUT("/promotions/:id", api.UpdatePromotion)
	admin.DELETE("/promotions/:id", api.DeletePromotion)

	admin.GET("/users", api.AdminListUsers)
	admin.PATCH("/users/:id/approval", api.SetUserApproval)

	admin.GET("/orders", api.AdminListOrders)
	admin.PATCH("/orders/:id/status", api.UpdateOrderStatus)
	admin.GET("/orders/ws", api.OrdersWebSocket)
}
