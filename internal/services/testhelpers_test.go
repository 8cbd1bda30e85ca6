package services

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"delivery_manager/internal/database"
	"delivery_manager/internal/events"
	"delivery_manager/internal/models"
	"delivery_manager/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBCounter int64

// setupTestDB opens a fresh in-memory database. The shared-cache DSN keeps
// the schema visible across the connections gorm opens for concurrent
// operations.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// One connection serializes concurrent writers; sqlite's shared cache
	// otherwise surfaces table-lock errors under parallel transitions.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db))
	return db
}

func seedStandardMix(t *testing.T, db *gorm.DB) {
	t.Helper()
	configs := []models.ProductMixConfig{
		{ProductID: 1, ProductName: "Traditional", Percentage: 60, IsActive: true},
		{ProductID: 2, ProductName: "Whole Grain", Percentage: 25, IsActive: true},
		{ProductID: 3, ProductName: "Sweet", Percentage: 15, IsActive: true},
	}
	for i := range configs {
		require.NoError(t, db.Create(&configs[i]).Error)
	}
}

func seedStock(t *testing.T, db *gorm.DB, batchID uint, quantities map[uint]int64) {
	t.Helper()
	for productID, quantity := range quantities {
		movement := models.StockMovement{
			ProductID:     productID,
			Kind:          models.MovementCredit,
			Quantity:      quantity,
			ReferenceKind: models.ReferenceProduction,
			ReferenceID:   batchID,
		}
		require.NoError(t, db.Create(&movement).Error)
	}
}

// recordingNotifier captures published events for assertions.
type recordingNotifier struct {
	mu     sync.Mutex
	events []events.Event
}

func (n *recordingNotifier) Notify(event events.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) byType(eventType events.EventType) []events.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	var matched []events.Event
	for _, e := range n.events {
		if e.Type == eventType {
			matched = append(matched, e)
		}
	}
	return matched
}

type reservationFixture struct {
	db       *gorm.DB
	movement repository.StockMovementRepository
	mix      repository.MixConfigRepository
	records  repository.DeliveryRecordRepository
	cache    *QuantityCache
	notifier *recordingNotifier
	service  ReservationService
}

func newReservationFixture(t *testing.T) *reservationFixture {
	t.Helper()
	db := setupTestDB(t)
	f := &reservationFixture{
		db:       db,
		movement: repository.NewStockMovementRepository(db),
		mix:      repository.NewMixConfigRepository(db),
		records:  repository.NewDeliveryRecordRepository(db),
		cache:    NewQuantityCache(),
		notifier: &recordingNotifier{},
	}
	t.Cleanup(f.cache.Close)
	gateway := NewBalanceGateway(f.movement, nil, 0)
	deliveryLog := NewDeliveryLogService(f.records)
	f.service = NewReservationService(db, f.movement, f.mix, gateway, f.cache, deliveryLog, f.notifier)
	return f
}

func (f *reservationFixture) movementCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&models.StockMovement{}).Count(&count).Error)
	return count
}
