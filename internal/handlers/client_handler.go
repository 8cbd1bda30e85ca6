package handlers

import (
	"errors"
	"net/http"

	"delivery_manager/internal/models"
	"delivery_manager/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ClientHandler struct {
	clientService services.ClientService
}

func NewClientHandler(clientService services.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req struct {
		Name            string `json:"name" binding:"required"`
		PhoneNumber     string `json:"phone_number"`
		Address         string `json:"address"`
		PeriodicityDays int    `json:"periodicity_days"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	client := &models.Client{
		Name:            req.Name,
		PhoneNumber:     req.PhoneNumber,
		Address:         req.Address,
		PeriodicityDays: req.PeriodicityDays,
		IsActive:        true,
	}
	if err := h.clientService.CreateClient(client); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, client)
}

func (h *ClientHandler) GetClient(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	client, err := h.clientService.GetClientByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *ClientHandler) ListClients(c *gin.Context) {
	var clients []models.Client
	var err error
	if c.Query("active") == "true" {
		clients, err = h.clientService.GetActiveClients()
	} else {
		clients, err = h.clientService.GetAllClients()
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, clients)
}

func (h *ClientHandler) UpdateClient(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	client, err := h.clientService.GetClientByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var req struct {
		Name            *string `json:"name"`
		PhoneNumber     *string `json:"phone_number"`
		Address         *string `json:"address"`
		PeriodicityDays *int    `json:"periodicity_days"`
		IsActive        *bool   `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Name != nil {
		client.Name = *req.Name
	}
	if req.PhoneNumber != nil {
		client.PhoneNumber = *req.PhoneNumber
	}
	if req.Address != nil {
		client.Address = *req.Address
	}
	if req.PeriodicityDays != nil {
		client.PeriodicityDays = *req.PeriodicityDays
	}
	if req.IsActive != nil {
		client.IsActive = *req.IsActive
	}

	if err := h.clientService.UpdateClient(client); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, client)
}
