package services

import (
	"fmt"
	"time"

	"delivery_manager/internal/events"
	"delivery_manager/internal/models"
	"delivery_manager/internal/repository"
)

// MixConfigService manages the global standard proportion. Saving a mix whose
// percentages do not sum to 100 is allowed (allocation degrades to the even
// split until it is fixed) but immediately reported.
type MixConfigService interface {
	GetConfiguration() ([]models.ProductMixConfig, error)
	GetActiveMix() ([]MixLine, error)
	ReplaceConfiguration(configs []models.ProductMixConfig) error
	CheckConfiguration() (float64, bool, error)
}

type mixConfigService struct {
	mixRepo  repository.MixConfigRepository
	cache    *QuantityCache
	notifier events.Notifier
}

func NewMixConfigService(mixRepo repository.MixConfigRepository, cache *QuantityCache, notifier events.Notifier) MixConfigService {
	return &mixConfigService{mixRepo: mixRepo, cache: cache, notifier: notifier}
}

func (s *mixConfigService) GetConfiguration() ([]models.ProductMixConfig, error) {
	return s.mixRepo.GetAll()
}

func (s *mixConfigService) GetActiveMix() ([]MixLine, error) {
	configs, err := s.mixRepo.GetActive()
	if err != nil {
		return nil, err
	}
	return MixLinesFromConfig(configs), nil
}

func (s *mixConfigService) ReplaceConfiguration(configs []models.ProductMixConfig) error {
	seen := make(map[uint]bool, len(configs))
	for _, cfg := range configs {
		if cfg.ProductID == 0 {
			return fmt.Errorf("mix line is missing a product id")
		}
		if cfg.ProductName == "" {
			return fmt.Errorf("mix line for product %d is missing a name", cfg.ProductID)
		}
		if cfg.Percentage < 0 {
			return fmt.Errorf("mix line for product %d has a negative percentage", cfg.ProductID)
		}
		if seen[cfg.ProductID] {
			return fmt.Errorf("product %d appears more than once", cfg.ProductID)
		}
		seen[cfg.ProductID] = true
	}

	if err := s.mixRepo.Replace(configs); err != nil {
		return err
	}
	// Cached demand was computed against the old mix.
	s.cache.InvalidateAll()

	active := make([]models.ProductMixConfig, 0, len(configs))
	for _, cfg := range configs {
		if cfg.IsActive {
			active = append(active, cfg)
		}
	}
	if sum, ok := ValidateMix(MixLinesFromConfig(active)); !ok && s.notifier != nil {
		s.notifier.Notify(events.Event{
			Type:       events.ConfigInvalid,
			Detail:     (&ConfigurationError{PercentageSum: sum}).Error(),
			OccurredAt: time.Now(),
		})
	}
	return nil
}

// CheckConfiguration reports the active percentage sum and whether standard
// allocation is currently usable.
func (s *mixConfigService) CheckConfiguration() (float64, bool, error) {
	mix, err := s.GetActiveMix()
	if err != nil {
		return 0, false, err
	}
	sum, ok := ValidateMix(mix)
	return sum, ok, nil
}
