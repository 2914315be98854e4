package routes

import (
	"os"
	"strings"
	"time"

	"egwinch_back_end/internal/handlers"
	"egwinch_back_end/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	allowedOrigins := []string{"http://localhost:3000", "http://localhost:5173"}
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		allowedOrigins = strings.Split(origins, ",")
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	api.Use(middleware.APIRateLimit())

	// --- Webhook Stripe ---
	// Pas de JWT ici : la requête est authentifiée par sa signature Stripe
	api.POST("/webhook/stripe", handlers.StripeWebhook)

	// --- Authentification ---
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", middleware.RegisterRateLimit(), handlers.Register)
		authGroup.POST("/login", middleware.LoginRateLimit(), handlers.Login)

		// Flux navigateur (redirection gothic)
		authGroup.GET("/:provider", handlers.BeginAuth)
		authGroup.GET("/:provider/callback", handlers.CallbackAuth)

		// Flux mobile (échange de code direct)
		authGroup.GET("/:provider/url", handlers.GetOAuthURL)
		authGroup.POST("/:provider/exchange", handlers.ExchangeOAuthCode)
	}

	// --- Catalogue (public) ---
	api.GET("/products", handlers.ListProducts)
	api.GET("/products/search", middleware.SearchRateLimit(), handlers.SearchProductsHandler)
	api.GET("/products/image-url", handlers.GetSignedImageURL)
	api.GET("/products/:id", handlers.GetProduct)

	// --- Panier ---
	// AuthOptional : un utilisateur connecté retrouve son panier, un invité
	// a le sien via le cookie de session
	cartGroup := api.Group("/cart")
	cartGroup.Use(middleware.AuthOptional())
	{
		cartGroup.GET("", handlers.GetCart)
		cartGroup.POST("/add", middleware.CartRateLimit(), handlers.AddToCart)
		cartGroup.PUT("/:productId", handlers.UpdateCartQuantity)
		cartGroup.DELETE("/clear", handlers.ClearCart)
		cartGroup.DELETE("/:productId", handlers.RemoveFromCart)
	}

	// --- Routes authentifiées ---
	authed := api.Group("")
	authed.Use(middleware.AuthRequired())
	{
		authed.GET("/me", handlers.Me)
		authed.PUT("/me", handlers.UpdateMe)
		authed.GET("/addresses", handlers.GetMyAddresses)

		authed.POST("/checkout", handlers.CreateCheckoutSession)

		authed.GET("/orders", handlers.GetMyOrders)
		authed.GET("/orders/:id", handlers.GetOrderByID)
		authed.GET("/orders/:id/tracking", handlers.GetOrderTracking)
		authed.GET("/orders/:id/invoice", handlers.GetOrderInvoice)

		authed.GET("/ws/cart", handlers.CartWebSocket)
	}

	// --- Administration ---
	admin := api.Group("/admin")
	admin.Use(middleware.AuthRequired(), middleware.RequireAdmin)
	{
		admin.GET("/dashboard/stats", handlers.GetDashboardStats)
		admin.GET("/dashboard/year-range", handlers.GetDashboardYearRange)

		admin.POST("/products", handlers.CreateProduct)
		admin.DELETE("/products/:id", handlers.DeactivateProduct)
		admin.PUT("/products/:id/stock", handlers.UpdateStock)
		admin.GET("/products/:id/movements", handlers.GetStockMovements)
		admin.POST("/products/:id/image", handlers.UploadProductImage)
		admin.GET("/stock-alerts", handlers.GetStockAlerts)

		admin.PUT("/orders/:id/tracking", handlers.UpdateTrackingStatus)

		admin.GET("/webhook-events/:id", handlers.GetWebhookEvent)
		admin.GET("/ws/orders", handlers.OrdersFeedWebSocket)
	}
}
