package main

import (
	"fmt"
	"log"
	"time"

	"delivery_manager/internal/config"
	"delivery_manager/internal/database"
	"delivery_manager/internal/migrations"
	"delivery_manager/internal/models"
	"delivery_manager/internal/repository"

	"gorm.io/gorm"
)

func main() {
	fmt.Println("Initializing database...")

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Force recreate all tables
	fmt.Println("Dropping existing tables...")
	err = db.Migrator().DropTable(
		&models.Client{},
		&models.Order{},
		&models.OrderItem{},
		&models.ProductMixConfig{},
		&models.StockMovement{},
		&models.DeliveryRecord{},
		&models.DeliveryItem{},
	)
	if err != nil {
		log.Printf("Warning: Error dropping tables: %v", err)
	}

	// Create tables with proper schema and seed the default mix
	fmt.Println("Creating tables...")
	if err := migrations.RunMigrations(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	if err := seedDemoData(db); err != nil {
		log.Fatal("Failed to seed demo data:", err)
	}

	fmt.Println("Database initialized successfully!")
}

// seedDemoData creates a couple of clients, orders and opening stock so the
// fulfillment pipeline can be exercised right away.
func seedDemoData(db *gorm.DB) error {
	clientRepo := repository.NewClientRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)

	fmt.Println("Seeding demo data...")

	bakeryCorner := &models.Client{Name: "Bakery Corner", PeriodicityDays: 7, IsActive: true}
	centralMarket := &models.Client{Name: "Central Market", PeriodicityDays: 3, IsActive: true}
	for _, client := range []*models.Client{bakeryCorner, centralMarket} {
		if err := clientRepo.Create(client); err != nil {
			return err
		}
	}

	nextMonday := nextWeekday(time.Now(), time.Monday)
	orders := []*models.Order{
		{
			ClientID:      bakeryCorner.ID,
			ScheduledDate: nextMonday,
			TotalQuantity: 100,
			MixType:       models.MixStandard,
			Status:        models.StatusForecast,
			SubStatus:     models.SubStatusPending,
		},
		{
			ClientID:      centralMarket.ID,
			ScheduledDate: nextMonday,
			TotalQuantity: 60,
			MixType:       models.MixCustom,
			Status:        models.StatusForecast,
			SubStatus:     models.SubStatusPending,
			CustomItems: []models.OrderItem{
				{ProductName: "Traditional", Quantity: 40},
				{ProductName: "Sweet", Quantity: 20},
			},
		},
	}
	for _, order := range orders {
		if err := orderRepo.Create(order); err != nil {
			return err
		}
	}

	// Opening stock for the three default mix products.
	openingStock := []models.StockMovement{
		{ProductID: 1, Kind: models.MovementCredit, Quantity: 500, ReferenceKind: models.ReferenceProduction, ReferenceID: 1},
		{ProductID: 2, Kind: models.MovementCredit, Quantity: 200, ReferenceKind: models.ReferenceProduction, ReferenceID: 1},
		{ProductID: 3, Kind: models.MovementCredit, Quantity: 150, ReferenceKind: models.ReferenceProduction, ReferenceID: 1},
	}
	for i := range openingStock {
		if err := movementRepo.Create(&openingStock[i]); err != nil {
			return err
		}
	}

	return nil
}

func nextWeekday(from time.Time, weekday time.Weekday) time.Time {
	date := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	for date.Weekday() != weekday {
		date = date.AddDate(0, 0, 1)
	}
	return date
}
