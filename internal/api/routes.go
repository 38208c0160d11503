package api

import (
	"github.com/Fatumayattani/lumi-hub/internal/blockchain"
	"github.com/Fatumayattani/lumi-hub/internal/middleware"
	"github.com/Fatumayattani/lumi-hub/internal/services"

	"github.com/gin-gonic/gin"
)

// Services shared by the handlers in this package
var (
	walletService      *services.WalletService
	paymentService     *services.PaymentService
	entitlementService *services.EntitlementService
	accessService      *services.AccessService
	downloadService    *services.DownloadService
	storageService     *services.StorageService
	redisService       *services.RedisService
)

// InitServices wires the handler dependencies
func InitServices(node blockchain.Node) error {
	wallet, err := services.NewWalletService()
	if err != nil {
		return err
	}
	walletService = wallet

	storageService = services.NewStorageService()
	accessService = services.NewAccessService()
	downloadService = services.NewDownloadService(accessService, storageService)
	entitlementService = services.NewEntitlementService(services.NewReceiptService(), services.NewWebhookNotifier())
	paymentService = services.NewPaymentService(node, entitlementService)

	redisService, err = services.NewRedisService()
	if err != nil {
		return err
	}

	return nil
}

// SetupRoutes sets up all routes
func SetupRoutes(r *gin.Engine, node blockchain.Node) error {
	if err := InitServices(node); err != nil {
		return err
	}

	// API route group
	api := r.Group("/api")
	{
		// Wallet provider registry and sessions
		wallets := api.Group("/wallets")
		wallets.Use(middleware.AuthMiddleware())
		{
			wallets.GET("", ListWalletProviders)
			wallets.POST("/connect", ConnectWallet)
			wallets.POST("/account", SetWalletAccount)
			wallets.POST("/disconnect", DisconnectWallet)
		}

		// Public marketplace catalog
		api.GET("/products", ListProducts)
		api.GET("/products/:id", GetProduct)

		// Creator catalog management
		catalog := api.Group("")
		catalog.Use(middleware.AuthMiddleware())
		{
			catalog.POST("/products", CreateProduct)
			catalog.GET("/products/mine", ListMyProducts)
			catalog.PUT("/products/:id", UpdateProduct)
			catalog.PATCH("/products/:id/publish", ToggleProductPublished)
			catalog.DELETE("/products/:id", DeleteProduct)

			catalog.GET("/stores/mine", GetMyStore)
			catalog.POST("/stores", CreateStore)
			catalog.PUT("/stores/:id", UpdateStore)

			catalog.POST("/uploads", UploadFile)
		}

		// Purchase flow
		payments := api.Group("/payments")
		payments.Use(middleware.AuthMiddleware())
		{
			payments.POST("/initiate", InitiatePayment)
			payments.POST("/:id/submit", SubmitPayment)
			payments.POST("/purchase", PurchaseWithSession)
		}

		// Demo payment endpoint does its own auth: it mirrors the hosted
		// confirmation endpoint's exact error shapes
		api.POST("/payments/demo", CreateDemoPayment)

		// Buyer side
		buyer := api.Group("")
		buyer.Use(middleware.AuthMiddleware())
		{
			buyer.GET("/purchases", ListPurchases)
			buyer.GET("/downloads/:productID", GetDownload)
		}
	}

	// Object retrieval
	storage := r.Group("/storage")
	{
		storage.GET("/o/:bucket/*path", ServePublicObject)
		storage.GET("/signed/:bucket/*path", ServeSignedObject)
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "lumi-hub",
		})
	})

	return nil
}
