package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"delivery_manager/internal/models"
	"delivery_manager/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type APIHandler struct {
	fulfillmentService services.FulfillmentService
	stockService       services.StockService
	mixConfigService   services.MixConfigService
	deliveryLogService services.DeliveryLogService
}

func NewAPIHandler(
	fulfillmentService services.FulfillmentService,
	stockService services.StockService,
	mixConfigService services.MixConfigService,
	deliveryLogService services.DeliveryLogService,
) *APIHandler {
	return &APIHandler{
		fulfillmentService: fulfillmentService,
		stockService:       stockService,
		mixConfigService:   mixConfigService,
		deliveryLogService: deliveryLogService,
	}
}

// Order endpoints

func (h *APIHandler) CreateOrder(c *gin.Context) {
	var req struct {
		ClientID      uint   `json:"client_id" binding:"required"`
		TotalQuantity int    `json:"total_quantity"`
		MixType       string `json:"mix_type"`
		CustomItems   []struct {
			ProductName string `json:"product_name"`
			Quantity    int    `json:"quantity"`
		} `json:"custom_items"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order := &models.Order{
		ClientID:      req.ClientID,
		TotalQuantity: req.TotalQuantity,
		MixType:       models.MixType(req.MixType),
	}
	for _, item := range req.CustomItems {
		order.CustomItems = append(order.CustomItems, models.OrderItem{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
		})
	}

	if err := h.fulfillmentService.CreateOrder(order); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *APIHandler) GetOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	order, err := h.fulfillmentService.GetOrder(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *APIHandler) ListOrders(c *gin.Context) {
	if status := c.Query("status"); status != "" {
		orders, err := h.fulfillmentService.GetOrdersByStatus(models.OrderStatus(status))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, orders)
		return
	}
	if clientID := c.Query("client_id"); clientID != "" {
		id, err := strconv.ParseUint(clientID, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client_id"})
			return
		}
		orders, err := h.fulfillmentService.GetOrdersByClient(uint(id))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, orders)
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "status or client_id query parameter required"})
}

// Transition endpoints

func (h *APIHandler) ScheduleOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Date   string `json:"date" binding:"required"`
		Target string `json:"target" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	err = h.fulfillmentService.ScheduleOrder(id, date, models.OrderStatus(req.Target))
	h.respondTransition(c, id, err)
}

func (h *APIHandler) ConfirmOrder(c *gin.Context) {
	h.singleTransition(c, h.fulfillmentService.ConfirmOrder)
}

func (h *APIHandler) PickOrder(c *gin.Context) {
	h.singleTransition(c, h.fulfillmentService.PickOrder)
}

func (h *APIHandler) UndoPick(c *gin.Context) {
	h.singleTransition(c, h.fulfillmentService.UndoPick)
}

func (h *APIHandler) DispatchOrder(c *gin.Context) {
	h.singleTransition(c, h.fulfillmentService.DispatchOrder)
}

func (h *APIHandler) ReturnToPicking(c *gin.Context) {
	h.singleTransition(c, h.fulfillmentService.ReturnToPicking)
}

func (h *APIHandler) ConfirmDelivery(c *gin.Context) {
	h.singleTransition(c, h.fulfillmentService.ConfirmDelivery)
}

func (h *APIHandler) ConfirmReturn(c *gin.Context) {
	h.singleTransition(c, h.fulfillmentService.ConfirmReturn)
}

func (h *APIHandler) singleTransition(c *gin.Context, transition func(uint) error) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	h.respondTransition(c, id, transition(id))
}

// Batch transition endpoints

func (h *APIHandler) PickOrders(c *gin.Context) {
	h.batchTransition(c, h.fulfillmentService.PickOrders)
}

func (h *APIHandler) DispatchOrders(c *gin.Context) {
	h.batchTransition(c, h.fulfillmentService.DispatchOrders)
}

func (h *APIHandler) ConfirmDeliveries(c *gin.Context) {
	h.batchTransition(c, h.fulfillmentService.ConfirmDeliveries)
}

func (h *APIHandler) ConfirmReturns(c *gin.Context) {
	h.batchTransition(c, h.fulfillmentService.ConfirmReturns)
}

func (h *APIHandler) batchTransition(c *gin.Context, transition func([]uint) (*services.BatchOutcome, error)) {
	var req struct {
		OrderIDs []uint `json:"order_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	outcome, err := transition(req.OrderIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// Stock endpoints

func (h *APIHandler) GetBalance(c *gin.Context) {
	id, ok := parseID(c, "product_id")
	if !ok {
		return
	}
	balance, err := h.stockService.GetBalance(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"product_id": id, "balance": balance})
}

func (h *APIHandler) RecordProduction(c *gin.Context) {
	var req struct {
		ProductID uint  `json:"product_id" binding:"required"`
		BatchID   uint  `json:"batch_id" binding:"required"`
		Quantity  int64 `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.stockService.RecordProductionEntry(req.ProductID, req.BatchID, req.Quantity); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "recorded"})
}

// Mix configuration endpoints

func (h *APIHandler) GetMixConfig(c *gin.Context) {
	configs, err := h.mixConfigService.GetConfiguration()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	sum, usable, err := h.mixConfigService.CheckConfiguration()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"configs": configs, "percentage_sum": sum, "usable": usable})
}

func (h *APIHandler) ReplaceMixConfig(c *gin.Context) {
	var req struct {
		Configs []models.ProductMixConfig `json:"configs" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.mixConfigService.ReplaceConfiguration(req.Configs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "replaced"})
}

// History endpoints

func (h *APIHandler) GetClientHistory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	records, err := h.deliveryLogService.GetClientHistory(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, records)
}

// respondTransition maps domain errors to HTTP statuses. Shortfall responses
// carry the full itemized list so the caller can show every problem at once.
func (h *APIHandler) respondTransition(c *gin.Context, orderID uint, err error) {
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"order_id": orderID, "status": "ok"})
		return
	}

	var shortfall *services.ShortfallError
	if errors.As(err, &shortfall) {
		c.JSON(http.StatusConflict, gin.H{"error": shortfall.Error(), "shortfalls": shortfall.Lines})
		return
	}
	var duplicate *services.DuplicateOperationError
	if errors.As(err, &duplicate) {
		c.JSON(http.StatusConflict, gin.H{"error": duplicate.Error()})
		return
	}
	var invalid *services.InvalidTransitionError
	if errors.As(err, &invalid) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": invalid.Error()})
		return
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func parseID(c *gin.Context, param string) (uint, bool) {
	raw := c.Param(param)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + param})
		return 0, false
	}
	return uint(id), true
}
