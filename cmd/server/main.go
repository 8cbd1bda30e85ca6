package main

import (
	"log"
	"time"

	"delivery_manager/internal/config"
	"delivery_manager/internal/database"
	"delivery_manager/internal/events"
	"delivery_manager/internal/handlers"
	"delivery_manager/internal/migrations"
	"delivery_manager/internal/redis"
	"delivery_manager/internal/repository"
	"delivery_manager/internal/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := migrations.RunMigrations(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize Redis
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	// Fulfillment event fan-out: in-process bus plus Kafka for external
	// consumers.
	bus := events.NewBus()
	publisher := events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer publisher.Close()
	bus.Subscribe(publisher.Notify)
	bus.Subscribe(func(e events.Event) {
		if e.Type == events.ConfigInvalid {
			log.Printf("ALERT: %s", e.Detail)
		}
	})

	// Initialize repositories
	clientRepo := repository.NewClientRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	mixRepo := repository.NewMixConfigRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)
	recordRepo := repository.NewDeliveryRecordRepository(db)

	// Initialize services
	cache := services.NewQuantityCache()
	defer cache.Close()
	gateway := services.NewBalanceGateway(movementRepo, redisClient, time.Duration(cfg.BalanceCacheTTL)*time.Second)
	deliveryLog := services.NewDeliveryLogService(recordRepo)
	reservation := services.NewReservationService(db, movementRepo, mixRepo, gateway, cache, deliveryLog, bus)
	fulfillment := services.NewFulfillmentService(orderRepo, clientRepo, reservation, bus)
	stock := services.NewStockService(movementRepo, gateway)
	mixConfig := services.NewMixConfigService(mixRepo, cache, bus)
	clients := services.NewClientService(clientRepo)

	// Initialize handlers
	apiHandler := handlers.NewAPIHandler(fulfillment, stock, mixConfig, deliveryLog)
	clientHandler := handlers.NewClientHandler(clients)

	// Setup routes
	router := gin.Default()

	api := router.Group("/api")
	{
		api.POST("/clients", clientHandler.CreateClient)
		api.GET("/clients", clientHandler.ListClients)
		api.GET("/clients/:id", clientHandler.GetClient)
		api.PUT("/clients/:id", clientHandler.UpdateClient)
		api.GET("/clients/:id/history", apiHandler.GetClientHistory)

		api.POST("/orders", apiHandler.CreateOrder)
		api.GET("/orders", apiHandler.ListOrders)
		api.GET("/orders/:id", apiHandler.GetOrder)
		api.POST("/orders/:id/schedule", apiHandler.ScheduleOrder)
		api.POST("/orders/:id/confirm", apiHandler.ConfirmOrder)
		api.POST("/orders/:id/pick", apiHandler.PickOrder)
		api.POST("/orders/:id/undo-pick", apiHandler.UndoPick)
		api.POST("/orders/:id/dispatch", apiHandler.DispatchOrder)
		api.POST("/orders/:id/return-to-picking", apiHandler.ReturnToPicking)
		api.POST("/orders/:id/confirm-delivery", apiHandler.ConfirmDelivery)
		api.POST("/orders/:id/confirm-return", apiHandler.ConfirmReturn)

		// Batch transitions live under their own prefix: a "batch" segment
		// under /orders would collide with the :id wildcard in gin's router.
		api.POST("/batch/pick", apiHandler.PickOrders)
		api.POST("/batch/dispatch", apiHandler.DispatchOrders)
		api.POST("/batch/confirm-delivery", apiHandler.ConfirmDeliveries)
		api.POST("/batch/confirm-return", apiHandler.ConfirmReturns)

		api.GET("/stock/:product_id/balance", apiHandler.GetBalance)
		api.POST("/stock/production", apiHandler.RecordProduction)

		api.GET("/mix-config", apiHandler.GetMixConfig)
		api.PUT("/mix-config", apiHandler.ReplaceMixConfig)
	}

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
