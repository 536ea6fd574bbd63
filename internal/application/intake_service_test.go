package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/furniture-mes/scheduling-service/pkg/logging"

	"github.com/furniture-mes/scheduling-service/internal/domain"
)

func newIntake(t *testing.T) (*IntakeApplicationService, *MockOrderService, *MockProductionRepository) {
	t.Helper()
	orders := NewMockOrderService()
	repo := NewMockProductionRepository()
	logger := logging.New(logging.DefaultConfig("test"))
	service := NewIntakeApplicationService(orders, repo, logger)
	return service, orders, repo
}

// =============================================================================
// ListReadyOrders Tests
// =============================================================================

func TestIntakeApplicationService_ListReadyOrders(t *testing.T) {
	t.Run("annotates eligible orders with capacity demand and duration", func(t *testing.T) {
		service, orders, _ := newIntake(t)
		orders.AddOrder(confirmedOrder("ORD-1", 12))

		dtos, err := service.ListReadyOrders(context.Background(), 0)

		require.NoError(t, err)
		require.Len(t, dtos, 1)
		assert.Equal(t, "ORD-1", dtos[0].OrderID)
		assert.Equal(t, string(domain.ReadinessReady), dtos[0].Readiness)
		assert.Equal(t, 12, dtos[0].TrackableQuantity)
		assert.Equal(t, 12, dtos[0].RequiredCapacity)
		assert.NotEmpty(t, dtos[0].EstimatedDuration)
		assert.Empty(t, dtos[0].ProductionID)
	})

	t.Run("orders with only stock-produced lines are filtered out", func(t *testing.T) {
		service, orders, _ := newIntake(t)
		stockOnly := domain.Order{
			ID:     "ORD-1",
			Status: domain.OrderStatusConfirmed,
			Lines: []domain.OrderLine{
				{ProductID: "PROD-200", ProductName: "Alkansya Coin Box", Quantity: 100, Trackable: false},
			},
		}
		orders.AddOrder(stockOnly)
		orders.AddOrder(confirmedOrder("ORD-2", 5))

		dtos, err := service.ListReadyOrders(context.Background(), 0)

		require.NoError(t, err)
		require.Len(t, dtos, 1)
		assert.Equal(t, "ORD-2", dtos[0].OrderID)
	})

	t.Run("orders in production carry their production ID", func(t *testing.T) {
		service, orders, repo := newIntake(t)
		orders.AddOrder(confirmedOrder("ORD-1", 10))

		production, err := domain.NewProduction("PRD-1",
			domain.Product{ID: "PROD-100", Name: "Dining Table", Trackable: true},
			[]domain.BatchItem{{OrderID: "ORD-1", Quantity: 10}}, domain.PriorityMedium)
		require.NoError(t, err)
		repo.AddProduction(production)

		dtos, err := service.ListReadyOrders(context.Background(), 0)

		require.NoError(t, err)
		require.Len(t, dtos, 1)
		assert.Equal(t, string(domain.ReadinessInProduction), dtos[0].Readiness)
		assert.Equal(t, "PRD-1", dtos[0].ProductionID)
		assert.Nil(t, dtos[0].CompletedAt)
	})

	t.Run("order service failure is propagated", func(t *testing.T) {
		service, orders, _ := newIntake(t)
		orders.err = errors.New("order service down")

		_, err := service.ListReadyOrders(context.Background(), 0)

		assert.Error(t, err)
	})

	t.Run("empty order feed yields an empty slice", func(t *testing.T) {
		service, _, _ := newIntake(t)

		dtos, err := service.ListReadyOrders(context.Background(), 0)

		require.NoError(t, err)
		assert.NotNil(t, dtos)
		assert.Empty(t, dtos)
	})
}
