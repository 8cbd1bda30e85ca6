package services

import (
	"delivery_manager/internal/models"
	"delivery_manager/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeliveryLogService appends immutable delivery/return history. It never
// reads or reasons about current order state; it only writes what it is
// handed.
type DeliveryLogService interface {
	Record(tx *gorm.DB, clientID, orderID uint, kind models.OperationKind, totalQuantity int, items []Allocation, priorSubStatus models.OrderSubStatus) (*models.DeliveryRecord, error)
	GetClientHistory(clientID uint) ([]models.DeliveryRecord, error)
	GetOrderHistory(orderID uint) ([]models.DeliveryRecord, error)
}

type deliveryLogService struct {
	recordRepo repository.DeliveryRecordRepository
}

func NewDeliveryLogService(recordRepo repository.DeliveryRecordRepository) DeliveryLogService {
	return &deliveryLogService{recordRepo: recordRepo}
}

// Record appends one history entry. When tx is non-nil the write joins the
// caller's transaction, so a delivery's stock debits and its history entry
// commit or roll back together.
func (s *deliveryLogService) Record(tx *gorm.DB, clientID, orderID uint, kind models.OperationKind, totalQuantity int, items []Allocation, priorSubStatus models.OrderSubStatus) (*models.DeliveryRecord, error) {
	record := &models.DeliveryRecord{
		RecordID:       uuid.New().String(),
		ClientID:       clientID,
		OrderID:        orderID,
		OperationKind:  kind,
		TotalQuantity:  totalQuantity,
		PriorSubStatus: priorSubStatus,
		Items:          make([]models.DeliveryItem, 0, len(items)),
	}
	for _, item := range items {
		record.Items = append(record.Items, models.DeliveryItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
		})
	}

	var err error
	if tx != nil {
		err = s.recordRepo.CreateInTx(tx, record)
	} else {
		err = s.recordRepo.Create(record)
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *deliveryLogService) GetClientHistory(clientID uint) ([]models.DeliveryRecord, error) {
	return s.recordRepo.GetByClientID(clientID)
}

func (s *deliveryLogService) GetOrderHistory(orderID uint) ([]models.DeliveryRecord, error) {
	return s.recordRepo.GetByOrderID(orderID)
}
