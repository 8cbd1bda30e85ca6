package services

import (
	"testing"

	"delivery_manager/internal/events"
	"delivery_manager/internal/models"
	"delivery_manager/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMixConfigService(t *testing.T) (MixConfigService, *recordingNotifier, repository.MixConfigRepository) {
	t.Helper()
	db := setupTestDB(t)
	cache := NewQuantityCache()
	t.Cleanup(cache.Close)
	notifier := &recordingNotifier{}
	repo := repository.NewMixConfigRepository(db)
	return NewMixConfigService(repo, cache, notifier), notifier, repo
}

func TestReplaceConfiguration_SwapsWholeMix(t *testing.T) {
	service, notifier, repo := newMixConfigService(t)

	require.NoError(t, service.ReplaceConfiguration([]models.ProductMixConfig{
		{ProductID: 1, ProductName: "Traditional", Percentage: 70, IsActive: true},
		{ProductID: 2, ProductName: "Sweet", Percentage: 30, IsActive: true},
	}))

	configs, err := repo.GetActive()
	require.NoError(t, err)
	require.Len(t, configs, 2)
	assert.Equal(t, 70.0, configs[0].Percentage)
	assert.Empty(t, notifier.byType(events.ConfigInvalid))

	sum, usable, err := service.CheckConfiguration()
	require.NoError(t, err)
	assert.True(t, usable)
	assert.InDelta(t, 100, sum, 0.0001)
}

func TestReplaceConfiguration_InvalidSumAcceptedButReported(t *testing.T) {
	service, notifier, _ := newMixConfigService(t)

	require.NoError(t, service.ReplaceConfiguration([]models.ProductMixConfig{
		{ProductID: 1, ProductName: "Traditional", Percentage: 50, IsActive: true},
		{ProductID: 2, ProductName: "Sweet", Percentage: 40, IsActive: true},
	}))

	alerts := notifier.byType(events.ConfigInvalid)
	require.Len(t, alerts, 1)

	_, usable, err := service.CheckConfiguration()
	require.NoError(t, err)
	assert.False(t, usable)
}

func TestReplaceConfiguration_InactiveLinesExcludedFromSum(t *testing.T) {
	service, notifier, _ := newMixConfigService(t)

	// Active lines alone sum to 100; the inactive one does not count.
	require.NoError(t, service.ReplaceConfiguration([]models.ProductMixConfig{
		{ProductID: 1, ProductName: "Traditional", Percentage: 60, IsActive: true},
		{ProductID: 2, ProductName: "Sweet", Percentage: 40, IsActive: true},
		{ProductID: 3, ProductName: "Seasonal", Percentage: 20, IsActive: false},
	}))

	assert.Empty(t, notifier.byType(events.ConfigInvalid))
}

func TestReplaceConfiguration_RejectsMalformedLines(t *testing.T) {
	service, _, _ := newMixConfigService(t)

	assert.Error(t, service.ReplaceConfiguration([]models.ProductMixConfig{
		{ProductID: 0, ProductName: "Traditional", Percentage: 100, IsActive: true},
	}))
	assert.Error(t, service.ReplaceConfiguration([]models.ProductMixConfig{
		{ProductID: 1, ProductName: "", Percentage: 100, IsActive: true},
	}))
	assert.Error(t, service.ReplaceConfiguration([]models.ProductMixConfig{
		{ProductID: 1, ProductName: "Traditional", Percentage: -1, IsActive: true},
	}))
	assert.Error(t, service.ReplaceConfiguration([]models.ProductMixConfig{
		{ProductID: 1, ProductName: "Traditional", Percentage: 50, IsActive: true},
		{ProductID: 1, ProductName: "Traditional", Percentage: 50, IsActive: true},
	}))
}
