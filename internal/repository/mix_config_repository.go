package repository

import (
	"delivery_manager/internal/models"

	"gorm.io/gorm"
)

type MixConfigRepository interface {
	Create(config *models.ProductMixConfig) error
	GetActive() ([]models.ProductMixConfig, error)
	GetAll() ([]models.ProductMixConfig, error)
	GetByProductID(productID uint) (*models.ProductMixConfig, error)
	Update(config *models.ProductMixConfig) error
	Replace(configs []models.ProductMixConfig) error
}

type mixConfigRepository struct {
	db *gorm.DB
}

func NewMixConfigRepository(db *gorm.DB) MixConfigRepository {
	return &mixConfigRepository{db: db}
}

func (r *mixConfigRepository) Create(config *models.ProductMixConfig) error {
	return r.db.Create(config).Error
}

func (r *mixConfigRepository) GetActive() ([]models.ProductMixConfig, error) {
	var configs []models.ProductMixConfig
	err := r.db.Where("is_active = ?", true).Order("id").Find(&configs).Error
	return configs, err
}

func (r *mixConfigRepository) GetAll() ([]models.ProductMixConfig, error) {
	var configs []models.ProductMixConfig
	err := r.db.Order("id").Find(&configs).Error
	return configs, err
}

func (r *mixConfigRepository) GetByProductID(productID uint) (*models.ProductMixConfig, error) {
	var config models.ProductMixConfig
	err := r.db.Where("product_id = ?", productID).First(&config).Error
	if err != nil {
		return nil, err
	}
	return &config, nil
}

func (r *mixConfigRepository) Update(config *models.ProductMixConfig) error {
	return r.db.Save(config).Error
}

// Replace swaps the whole configuration in one transaction so readers never
// observe a half-written mix.
func (r *mixConfigRepository) Replace(configs []models.ProductMixConfig) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.ProductMixConfig{}).Error; err != nil {
			return err
		}
		for i := range configs {
			if err := tx.Create(&configs[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
