package main

import (
	"log"

	"github.com/Fatumayattani/lumi-hub/internal/api"
	"github.com/Fatumayattani/lumi-hub/internal/blockchain"
	"github.com/Fatumayattani/lumi-hub/internal/config"
	"github.com/Fatumayattani/lumi-hub/internal/database"
	"github.com/Fatumayattani/lumi-hub/internal/services"
	"github.com/Fatumayattani/lumi-hub/pkg/logging"

	"github.com/gin-gonic/gin"
)

func main() {
	// Initialize configuration
	if err := config.InitConfig(); err != nil {
		log.Fatal("Failed to initialize config:", err)
	}

	// Initialize logging
	logging.InitLogging()

	// Initialize database
	if err := database.InitDatabase(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	// Algod client for payment submission and confirmation
	node, err := blockchain.NewAlgod(config.AppConfig.AlgodURL, config.AppConfig.AlgodToken)
	if err != nil {
		log.Fatal("Failed to initialize algod client:", err)
	}

	// Set Gin mode
	gin.SetMode(config.AppConfig.Mode)

	// Create Gin engine
	r := gin.Default()

	// Setup routes
	if err := api.SetupRoutes(r, node); err != nil {
		log.Fatal("Failed to setup routes:", err)
	}

	// Background sweep that expires abandoned pending payments
	reconciler := services.NewReconcileService()
	reconciler.Start()
	defer reconciler.Stop()

	// Start server
	port := config.AppConfig.Port
	logging.Infof("Starting server on port %s", port)

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
