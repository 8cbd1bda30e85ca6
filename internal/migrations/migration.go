package migrations

import (
	"log"

	"delivery_manager/internal/database"
	"delivery_manager/internal/models"
	"delivery_manager/internal/repository"

	"gorm.io/gorm"
)

// RunMigrations runs all database migrations and creates default data
func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	if err := database.AutoMigrate(db); err != nil {
		return err
	}

	// Create default data
	if err := createDefaultData(db); err != nil {
		log.Printf("Warning: Failed to create default data: %v", err)
	}

	log.Println("Database migrations completed successfully!")
	return nil
}

// createDefaultData seeds a standard product mix so standard allocation is
// usable out of the box.
func createDefaultData(db *gorm.DB) error {
	mixRepo := repository.NewMixConfigRepository(db)

	existing, err := mixRepo.GetAll()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Println("Product mix configuration already exists")
		return nil
	}

	log.Println("Creating default product mix configuration...")
	defaults := []models.ProductMixConfig{
		{ProductID: 1, ProductName: "Traditional", Percentage: 60.0, IsActive: true},
		{ProductID: 2, ProductName: "Whole Grain", Percentage: 25.0, IsActive: true},
		{ProductID: 3, ProductName: "Sweet", Percentage: 15.0, IsActive: true},
	}
	for i := range defaults {
		if err := mixRepo.Create(&defaults[i]); err != nil {
			return err
		}
	}

	log.Println("Default data created successfully!")
	return nil
}
