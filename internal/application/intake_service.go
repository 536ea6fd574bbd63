package application

import (
	"context"
	"fmt"

	"github.com/furniture-mes/scheduling-service/pkg/logging"

	"github.com/furniture-mes/scheduling-service/internal/domain"
)

const defaultIntakeLimit = 100

// IntakeApplicationService surfaces accepted customer orders annotated with
// their scheduling readiness, so planners can see what is waiting to enter
// the pipeline.
type IntakeApplicationService struct {
	orders domain.OrderService
	repo   domain.ProductionRepository
	logger *logging.Logger
}

// NewIntakeApplicationService creates a new IntakeApplicationService
func NewIntakeApplicationService(
	orders domain.OrderService,
	repo domain.ProductionRepository,
	logger *logging.Logger,
) *IntakeApplicationService {
	return &IntakeApplicationService{
		orders: orders,
		repo:   repo,
		logger: logger,
	}
}

// ListReadyOrders retrieves accepted orders with readiness classification.
// Orders whose lines are all non-trackable stock products are filtered out:
// they are fulfilled from inventory and never enter the pipeline.
func (s *IntakeApplicationService) ListReadyOrders(ctx context.Context, limit int) ([]ReadyOrderDTO, error) {
	if limit <= 0 {
		limit = defaultIntakeLimit
	}

	orders, err := s.orders.GetSchedulableOrders(ctx, limit)
	if err != nil {
		s.logger.WithError(err).Error("Failed to fetch orders")
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}

	dtos := make([]ReadyOrderDTO, 0, len(orders))
	for _, order := range orders {
		if !order.IsSchedulable() {
			continue
		}

		production, err := s.repo.FindByOrderID(ctx, order.ID)
		if err != nil {
			s.logger.WithError(err).Error("Failed to look up production for order", "orderId", order.ID)
			return nil, fmt.Errorf("failed to look up production: %w", err)
		}

		hasProduction := production != nil && production.Status != domain.ProductionStatusCancelled
		productionDone := hasProduction && production.Status == domain.ProductionStatusCompleted
		readiness := domain.ClassifyReadiness(order, hasProduction, productionDone)

		qty := order.TrackableQuantity()
		dto := ReadyOrderDTO{
			OrderID:           order.ID,
			CustomerID:        order.CustomerID,
			Status:            string(order.Status),
			Readiness:         string(readiness),
			TrackableQuantity: qty,
			RequiredCapacity:  qty,
			EstimatedDuration: domain.EstimateDuration(qty).String(),
			AcceptedAt:        order.AcceptedAt,
		}
		if hasProduction {
			dto.ProductionID = production.ProductionID
			dto.CompletedAt = production.ActualCompletion
		}
		dtos = append(dtos, dto)
	}

	return dtos, nil
}
