package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/furniture-mes/scheduling-service/internal/domain"
)

func TestToProductionDTO(t *testing.T) {
	t.Run("maps all fields", func(t *testing.T) {
		production, err := domain.NewBatch("PRD-1",
			domain.Product{ID: "PROD-100", Name: "Dining Table", Trackable: true},
			[]domain.BatchItem{
				{OrderID: "ORD-1", Quantity: 10},
				{OrderID: "ORD-2", Quantity: 15},
			},
			domain.PriorityHigh,
			time.Date(2025, 3, 15, 9, 30, 45, 0, time.UTC))
		require.NoError(t, err)

		dto := ToProductionDTO(production)

		require.NotNil(t, dto)
		assert.Equal(t, "PRD-1", dto.ProductionID)
		assert.Equal(t, "BATCH-20250315093045", dto.BatchNumber)
		assert.Equal(t, "Dining Table", dto.ProductName)
		assert.Equal(t, 25, dto.Quantity)
		assert.Equal(t, 25, dto.UnitsReserved)
		assert.Equal(t, "high", dto.Priority)
		assert.Equal(t, "pending", dto.Status)
		assert.Len(t, dto.Items, 2)
		assert.Len(t, dto.StageLog, 1)
		assert.Zero(t, dto.Progress)
	})

	t.Run("nil production maps to nil", func(t *testing.T) {
		assert.Nil(t, ToProductionDTO(nil))
		assert.Nil(t, ToProductionListDTO(nil))
	})
}

func TestToProductionListDTOs(t *testing.T) {
	p1, err := domain.NewProduction("PRD-1",
		domain.Product{ID: "PROD-100", Name: "Dining Table", Trackable: true},
		[]domain.BatchItem{{OrderID: "ORD-1", Quantity: 5}}, domain.PriorityMedium)
	require.NoError(t, err)

	dtos := ToProductionListDTOs([]*domain.Production{p1, nil})

	require.Len(t, dtos, 1)
	assert.Equal(t, "PRD-1", dtos[0].ProductionID)
	assert.Equal(t, 1, dtos[0].OrderCount)
}

func TestToStageWorkloadDTO(t *testing.T) {
	usage := domain.StageUsage{
		Stage:     domain.StageAssembly,
		Capacity:  5,
		Reserved:  4,
		Available: 1,
	}

	dto := ToStageWorkloadDTO(usage, WorkloadStatusBusy)

	assert.Equal(t, string(domain.StageAssembly), dto.Stage)
	assert.Equal(t, 5, dto.Capacity)
	assert.Equal(t, 4, dto.Reserved)
	assert.Equal(t, 1, dto.Available)
	assert.Equal(t, WorkloadStatusBusy, dto.Status)
	assert.InDelta(t, 80.0, dto.Utilization, 0.001)
}
