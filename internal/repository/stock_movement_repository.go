package repository

import (
	"delivery_manager/internal/models"

	"gorm.io/gorm"
)

type StockMovementRepository interface {
	Create(movement *models.StockMovement) error
	CreateInTx(tx *gorm.DB, movement *models.StockMovement) error
	ExistsByReference(kind models.ReferenceKind, referenceID uint) (bool, error)
	SumByProduct(productID uint) (int64, error)
	GetByReference(kind models.ReferenceKind, referenceID uint) ([]models.StockMovement, error)
	GetByProductID(productID uint) ([]models.StockMovement, error)
}

type stockMovementRepository struct {
	db *gorm.DB
}

func NewStockMovementRepository(db *gorm.DB) StockMovementRepository {
	return &stockMovementRepository{db: db}
}

func (r *stockMovementRepository) Create(movement *models.StockMovement) error {
	return r.db.Create(movement).Error
}

func (r *stockMovementRepository) CreateInTx(tx *gorm.DB, movement *models.StockMovement) error {
	return tx.Create(movement).Error
}

func (r *stockMovementRepository) ExistsByReference(kind models.ReferenceKind, referenceID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.StockMovement{}).
		Where("reference_kind = ? AND reference_id = ?", kind, referenceID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// SumByProduct derives the current balance from the signed ledger.
func (r *stockMovementRepository) SumByProduct(productID uint) (int64, error) {
	var total int64
	err := r.db.Model(&models.StockMovement{}).
		Where("product_id = ?", productID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	return total, err
}

func (r *stockMovementRepository) GetByReference(kind models.ReferenceKind, referenceID uint) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	err := r.db.Where("reference_kind = ? AND reference_id = ?", kind, referenceID).Find(&movements).Error
	return movements, err
}

func (r *stockMovementRepository) GetByProductID(productID uint) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	err := r.db.Where("product_id = ?", productID).Order("created_at").Find(&movements).Error
	return movements, err
}
