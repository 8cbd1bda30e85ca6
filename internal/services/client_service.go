package services

import (
	"fmt"

	"delivery_manager/internal/models"
	"delivery_manager/internal/repository"
)

type ClientService interface {
	CreateClient(client *models.Client) error
	GetClientByID(id uint) (*models.Client, error)
	GetActiveClients() ([]models.Client, error)
	GetAllClients() ([]models.Client, error)
	UpdateClient(client *models.Client) error
}

type clientService struct {
	clientRepo repository.ClientRepository
}

func NewClientService(clientRepo repository.ClientRepository) ClientService {
	return &clientService{clientRepo: clientRepo}
}

func (s *clientService) CreateClient(client *models.Client) error {
	if client.Name == "" {
		return fmt.Errorf("client name is required")
	}
	if client.PeriodicityDays <= 0 {
		client.PeriodicityDays = 7
	}
	return s.clientRepo.Create(client)
}

func (s *clientService) GetClientByID(id uint) (*models.Client, error) {
	return s.clientRepo.GetByID(id)
}

func (s *clientService) GetActiveClients() ([]models.Client, error) {
	return s.clientRepo.GetActive()
}

func (s *clientService) GetAllClients() ([]models.Client, error) {
	return s.clientRepo.GetAll()
}

func (s *clientService) UpdateClient(client *models.Client) error {
	if client.PeriodicityDays <= 0 {
		return fmt.Errorf("periodicity must be positive")
	}
	return s.clientRepo.Update(client)
}
