package models

import (
	"time"

	"gorm.io/gorm"
)

// Client is a retail point receiving recurring deliveries.
type Client struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	Name            string         `json:"name" gorm:"not null"`
	PhoneNumber     string         `json:"phone_number"`
	Address         string         `json:"address"`
	PeriodicityDays int            `json:"periodicity_days" gorm:"not null;default:7"`
	IsActive        bool           `json:"is_active" gorm:"default:true"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}
