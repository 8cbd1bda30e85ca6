package repository

import (
	"delivery_manager/internal/models"

	"gorm.io/gorm"
)

type DeliveryRecordRepository interface {
	Create(record *models.DeliveryRecord) error
	CreateInTx(tx *gorm.DB, record *models.DeliveryRecord) error
	GetByClientID(clientID uint) ([]models.DeliveryRecord, error)
	GetByOrderID(orderID uint) ([]models.DeliveryRecord, error)
}

type deliveryRecordRepository struct {
	db *gorm.DB
}

func NewDeliveryRecordRepository(db *gorm.DB) DeliveryRecordRepository {
	return &deliveryRecordRepository{db: db}
}

func (r *deliveryRecordRepository) Create(record *models.DeliveryRecord) error {
	return r.db.Create(record).Error
}

func (r *deliveryRecordRepository) CreateInTx(tx *gorm.DB, record *models.DeliveryRecord) error {
	return tx.Create(record).Error
}

func (r *deliveryRecordRepository) GetByClientID(clientID uint) ([]models.DeliveryRecord, error) {
	var records []models.DeliveryRecord
	err := r.db.Preload("Items").Where("client_id = ?", clientID).Order("created_at DESC").Find(&records).Error
	return records, err
}

func (r *deliveryRecordRepository) GetByOrderID(orderID uint) ([]models.DeliveryRecord, error) {
	var records []models.DeliveryRecord
	err := r.db.Preload("Items").Where("order_id = ?", orderID).Order("created_at DESC").Find(&records).Error
	return records, err
}
