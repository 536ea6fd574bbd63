package application

import (
	"context"
	"fmt"
	"time"

	"github.com/furniture-mes/scheduling-service/pkg/logging"

	"github.com/furniture-mes/scheduling-service/internal/domain"
)

const (
	defaultForecastLimit = 500
	defaultForecastDays  = 7
)

// Forecast adequacy values
const (
	AdequacySufficient   = "sufficient"
	AdequacyInsufficient = "insufficient"
)

// ForecasterApplicationService projects pending demand against entry-stage
// availability, so planners know whether the queue will fit before it arrives.
type ForecasterApplicationService struct {
	orders domain.OrderService
	repo   domain.ProductionRepository
	ledger *domain.CapacityLedger
	logger *logging.Logger
}

// NewForecasterApplicationService creates a new ForecasterApplicationService
func NewForecasterApplicationService(
	orders domain.OrderService,
	repo domain.ProductionRepository,
	ledger *domain.CapacityLedger,
	logger *logging.Logger,
) *ForecasterApplicationService {
	return &ForecasterApplicationService{
		orders: orders,
		repo:   repo,
		ledger: ledger,
		logger: logger,
	}
}

// GetForecast sums the trackable quantities of production-eligible orders
// not yet in production and compares them with the entry stage's free
// capacity. Demand exactly equal to availability counts as sufficient. The
// horizon is reported back; eligible orders carry no due dates, so it does
// not narrow the demand set.
func (s *ForecasterApplicationService) GetForecast(ctx context.Context, horizonDays int) (*CapacityForecastDTO, error) {
	if horizonDays <= 0 {
		horizonDays = defaultForecastDays
	}

	orders, err := s.orders.GetSchedulableOrders(ctx, defaultForecastLimit)
	if err != nil {
		s.logger.WithError(err).Error("Failed to fetch orders for forecast")
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}

	// One scan of the active productions replaces a per-order lookup; an
	// order already inside one is not pending demand.
	active, err := s.repo.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active productions: %w", err)
	}
	inProduction := make(map[string]struct{})
	for _, production := range active {
		for _, orderID := range production.OrderIDs() {
			inProduction[orderID] = struct{}{}
		}
	}

	pending := 0
	projected := 0
	for _, order := range orders {
		if !order.IsSchedulable() {
			continue
		}
		if _, ok := inProduction[order.ID]; ok {
			continue
		}

		pending++
		projected += order.TrackableQuantity()
	}

	entry := domain.EntryStage()
	available := s.ledger.Available(entry)

	forecast := &CapacityForecastDTO{
		HorizonDays:       horizonDays,
		PendingOrders:     pending,
		ProjectedDemand:   projected,
		AvailableCapacity: available,
		Adequacy:          AdequacySufficient,
		GeneratedAt:       time.Now(),
	}

	if projected > available {
		forecast.Adequacy = AdequacyInsufficient
		forecast.Shortfall = projected - available
		forecast.RecommendedAction = fmt.Sprintf(
			"Add capacity for %d units at %s or defer lower-priority orders", forecast.Shortfall, entry)
	}

	return forecast, nil
}
