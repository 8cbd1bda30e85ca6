package repository

import (
	"delivery_manager/internal/models"
	"time"

	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id uint) (*models.Order, error)
	GetByIDs(ids []uint) ([]models.Order, error)
	GetByClientID(clientID uint) ([]models.Order, error)
	GetByStatus(status models.OrderStatus) ([]models.Order, error)
	GetByDateRange(startDate, endDate time.Time) ([]models.Order, error)
	UpdateFulfillment(order *models.Order) error
	GetAll() ([]models.Order, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

func (r *orderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("CustomItems").First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByIDs(ids []uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("CustomItems").Where("id IN ?", ids).Find(&orders).Error
	return orders, err
}

func (r *orderRepository) GetByClientID(clientID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("CustomItems").Where("client_id = ?", clientID).Find(&orders).Error
	return orders, err
}

func (r *orderRepository) GetByStatus(status models.OrderStatus) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("CustomItems").Where("status = ?", status).Find(&orders).Error
	return orders, err
}

func (r *orderRepository) GetByDateRange(startDate, endDate time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("CustomItems").Where("scheduled_date BETWEEN ? AND ?", startDate, endDate).Find(&orders).Error
	return orders, err
}

// UpdateFulfillment persists only the fields a fulfillment transition is
// allowed to touch. Custom items are deliberately left alone so the client's
// configured mix survives every reschedule cycle.
func (r *orderRepository) UpdateFulfillment(order *models.Order) error {
	return r.db.Model(&models.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]interface{}{
			"scheduled_date": order.ScheduledDate,
			"status":         order.Status,
			"sub_status":     order.SubStatus,
			"mix_type":       order.MixType,
		}).Error
}

func (r *orderRepository) GetAll() ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("CustomItems").Find(&orders).Error
	return orders, err
}
