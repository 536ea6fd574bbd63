package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/furniture-mes/scheduling-service/pkg/logging"

	"github.com/furniture-mes/scheduling-service/internal/domain"
)

func confirmedOrder(orderID string, quantity int) domain.Order {
	return domain.Order{
		ID:         orderID,
		CustomerID: "CUST-1",
		Status:     domain.OrderStatusConfirmed,
		Lines: []domain.OrderLine{
			{ProductID: "PROD-100", ProductName: "Dining Table", Quantity: quantity, Trackable: true},
		},
		AcceptedAt: time.Now(),
	}
}

func newForecaster(t *testing.T) (*ForecasterApplicationService, *MockOrderService, *MockProductionRepository, *domain.CapacityLedger) {
	t.Helper()
	orders := NewMockOrderService()
	repo := NewMockProductionRepository()
	ledger := domain.NewDefaultCapacityLedger()
	logger := logging.New(logging.DefaultConfig("test"))
	service := NewForecasterApplicationService(orders, repo, ledger, logger)
	return service, orders, repo, ledger
}

// =============================================================================
// Forecast Tests
// =============================================================================

func TestForecasterApplicationService_GetForecast(t *testing.T) {
	t.Run("demand within availability is sufficient", func(t *testing.T) {
		service, orders, _, _ := newForecaster(t)
		orders.AddOrder(confirmedOrder("ORD-1", 10))
		orders.AddOrder(confirmedOrder("ORD-2", 5))

		forecast, err := service.GetForecast(context.Background(), 0)

		require.NoError(t, err)
		assert.Equal(t, 2, forecast.PendingOrders)
		assert.Equal(t, 15, forecast.ProjectedDemand)
		assert.Equal(t, 30, forecast.AvailableCapacity)
		assert.Equal(t, 7, forecast.HorizonDays)
		assert.Equal(t, AdequacySufficient, forecast.Adequacy)
		assert.Zero(t, forecast.Shortfall)
		assert.Empty(t, forecast.RecommendedAction)
	})

	t.Run("demand equal to availability is still sufficient", func(t *testing.T) {
		service, orders, _, _ := newForecaster(t)
		orders.AddOrder(confirmedOrder("ORD-1", 30)) // exactly the entry capacity

		forecast, err := service.GetForecast(context.Background(), 0)

		require.NoError(t, err)
		assert.Equal(t, 30, forecast.ProjectedDemand)
		assert.Equal(t, AdequacySufficient, forecast.Adequacy)
	})

	t.Run("demand above availability reports the shortfall", func(t *testing.T) {
		service, orders, _, ledger := newForecaster(t)
		orders.AddOrder(confirmedOrder("ORD-1", 25))
		orders.AddOrder(confirmedOrder("ORD-2", 15))
		require.NoError(t, ledger.Reserve(domain.EntryStage(), 10))

		forecast, err := service.GetForecast(context.Background(), 0)

		require.NoError(t, err)
		assert.Equal(t, 40, forecast.ProjectedDemand)
		assert.Equal(t, 20, forecast.AvailableCapacity)
		assert.Equal(t, AdequacyInsufficient, forecast.Adequacy)
		assert.Equal(t, 20, forecast.Shortfall)
		assert.Contains(t, forecast.RecommendedAction, "Add capacity for 20 units")
	})

	t.Run("orders already in production are excluded", func(t *testing.T) {
		service, orders, repo, _ := newForecaster(t)
		orders.AddOrder(confirmedOrder("ORD-1", 10))
		orders.AddOrder(confirmedOrder("ORD-2", 10))

		production, err := domain.NewProduction("PRD-1",
			domain.Product{ID: "PROD-100", Name: "Dining Table", Trackable: true},
			[]domain.BatchItem{{OrderID: "ORD-1", Quantity: 10}}, domain.PriorityMedium)
		require.NoError(t, err)
		repo.AddProduction(production)

		forecast, err := service.GetForecast(context.Background(), 0)

		require.NoError(t, err)
		assert.Equal(t, 1, forecast.PendingOrders)
		assert.Equal(t, 10, forecast.ProjectedDemand)
	})

	t.Run("cancelled productions do not block their orders", func(t *testing.T) {
		service, orders, repo, _ := newForecaster(t)
		orders.AddOrder(confirmedOrder("ORD-1", 10))

		production, err := domain.NewProduction("PRD-1",
			domain.Product{ID: "PROD-100", Name: "Dining Table", Trackable: true},
			[]domain.BatchItem{{OrderID: "ORD-1", Quantity: 10}}, domain.PriorityMedium)
		require.NoError(t, err)
		_, err = production.Cancel("rescheduling")
		require.NoError(t, err)
		repo.AddProduction(production)

		forecast, err := service.GetForecast(context.Background(), 0)

		require.NoError(t, err)
		assert.Equal(t, 1, forecast.PendingOrders)
	})

	t.Run("ineligible orders are skipped", func(t *testing.T) {
		service, orders, _, _ := newForecaster(t)
		cancelled := confirmedOrder("ORD-1", 10)
		cancelled.Status = domain.OrderStatusCancelled
		orders.AddOrder(cancelled)

		forecast, err := service.GetForecast(context.Background(), 0)

		require.NoError(t, err)
		assert.Zero(t, forecast.PendingOrders)
		assert.Equal(t, AdequacySufficient, forecast.Adequacy)
	})

	t.Run("requested horizon is reported back", func(t *testing.T) {
		service, _, _, _ := newForecaster(t)

		forecast, err := service.GetForecast(context.Background(), 14)

		require.NoError(t, err)
		assert.Equal(t, 14, forecast.HorizonDays)
	})

	t.Run("order service failure is propagated", func(t *testing.T) {
		service, orders, _, _ := newForecaster(t)
		orders.err = errors.New("order service down")

		_, err := service.GetForecast(context.Background(), 0)

		assert.Error(t, err)
	})
}
