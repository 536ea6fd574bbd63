package application

import (
	"context"
	"fmt"
	"time"

	"github.com/furniture-mes/scheduling-service/pkg/errors"
	"github.com/furniture-mes/scheduling-service/pkg/logging"
	"github.com/furniture-mes/scheduling-service/pkg/metrics"
	"github.com/furniture-mes/scheduling-service/pkg/resilience"

	"github.com/furniture-mes/scheduling-service/internal/domain"
)

// SchedulingApplicationService handles production scheduling use cases
type SchedulingApplicationService struct {
	repo         domain.ProductionRepository
	capacityRepo domain.CapacityRepository
	catalog      domain.ProductCatalog
	orders       domain.OrderService
	ledger       *domain.CapacityLedger
	metrics      *metrics.Metrics
	logger       *logging.Logger
}

// NewSchedulingApplicationService creates a new SchedulingApplicationService
func NewSchedulingApplicationService(
	repo domain.ProductionRepository,
	capacityRepo domain.CapacityRepository,
	catalog domain.ProductCatalog,
	orders domain.OrderService,
	ledger *domain.CapacityLedger,
	m *metrics.Metrics,
	logger *logging.Logger,
) *SchedulingApplicationService {
	return &SchedulingApplicationService{
		repo:         repo,
		capacityRepo: capacityRepo,
		catalog:      catalog,
		orders:       orders,
		ledger:       ledger,
		metrics:      m,
		logger:       logger,
	}
}

// Ledger exposes the capacity ledger for analytics services
func (s *SchedulingApplicationService) Ledger() *domain.CapacityLedger {
	return s.ledger
}

// RestoreLedger rebuilds in-memory reservations from the persisted snapshot.
// Called once at startup, before the HTTP server accepts traffic.
func (s *SchedulingApplicationService) RestoreLedger(ctx context.Context) error {
	usages, err := s.capacityRepo.LoadUsage(ctx)
	if err != nil {
		return fmt.Errorf("failed to load capacity snapshot: %w", err)
	}

	for _, usage := range usages {
		if err := s.ledger.Restore(usage.Stage, usage.Reserved); err != nil {
			// stale snapshot rows for renamed or removed stages are skipped
			s.logger.WithError(err).Warn("Skipping capacity snapshot row", "stage", usage.Stage)
		}
	}

	s.publishUtilization()
	s.logger.Info("Restored capacity ledger", "stages", len(usages))
	return nil
}

// StartProduction admits a single order into production. Admission is
// all-or-nothing: entry-stage capacity is reserved first, and released
// again if validation or persistence fails.
func (s *SchedulingApplicationService) StartProduction(ctx context.Context, cmd StartProductionCommand) (*ProductionDTO, error) {
	product, err := s.lookupProduct(ctx, cmd.ProductID)
	if err != nil {
		return nil, err
	}

	priority, err := parsePriority(cmd.Priority)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	existing, err := s.repo.FindByOrderID(ctx, cmd.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing production: %w", err)
	}
	if existing != nil && existing.IsActive() {
		return nil, errors.ErrConflict(fmt.Sprintf("order %s is already in production %s", cmd.OrderID, existing.ProductionID))
	}

	items := []domain.BatchItem{{OrderID: cmd.OrderID, Quantity: cmd.Quantity}}
	production, err := s.admit(ctx, func() (*domain.Production, error) {
		return domain.NewProduction(generateProductionID(), *product, items, priority)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Started production",
		"productionId", production.ProductionID,
		"orderId", cmd.OrderID,
		"productId", cmd.ProductID,
		"quantity", cmd.Quantity,
		"unitsReserved", production.UnitsReserved)
	return ToProductionDTO(production), nil
}

// CreateBatch aggregates several orders of the same product into one batch
// production that moves through the pipeline as a single unit. Declared
// quantities are checked against each order's trackable total; a mismatch
// rejects the whole batch.
func (s *SchedulingApplicationService) CreateBatch(ctx context.Context, cmd CreateBatchCommand) (*ProductionDTO, error) {
	product, err := s.lookupProduct(ctx, cmd.ProductID)
	if err != nil {
		return nil, err
	}

	priority, err := parsePriority(cmd.Priority)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	items := make([]domain.BatchItem, 0, len(cmd.Orders))
	for _, order := range cmd.Orders {
		existing, err := s.repo.FindByOrderID(ctx, order.OrderID)
		if err != nil {
			return nil, fmt.Errorf("failed to check existing production: %w", err)
		}
		if existing != nil && existing.IsActive() {
			return nil, errors.ErrConflict(fmt.Sprintf("order %s is already in production %s", order.OrderID, existing.ProductionID))
		}
		if err := s.checkBatchConsistency(ctx, order.OrderID, order.Quantity); err != nil {
			return nil, err
		}
		items = append(items, domain.BatchItem{OrderID: order.OrderID, Quantity: order.Quantity})
	}

	production, err := s.admit(ctx, func() (*domain.Production, error) {
		return domain.NewBatch(generateProductionID(), *product, items, priority, time.Now())
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Created batch production",
		"productionId", production.ProductionID,
		"batchNumber", production.BatchNumber,
		"productId", cmd.ProductID,
		"orders", len(cmd.Orders),
		"quantity", production.Quantity,
		"unitsReserved", production.UnitsReserved)
	if s.metrics != nil {
		s.metrics.RecordBatchCreated()
	}
	return ToProductionDTO(production), nil
}

// checkBatchConsistency verifies a declared batch quantity against the
// order's trackable total. Lookup failures are tolerated so batch creation
// survives an order-service outage; a known mismatch is always rejected.
func (s *SchedulingApplicationService) checkBatchConsistency(ctx context.Context, orderID string, declared int) error {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		s.logger.WithError(err).Warn("Skipping batch consistency check", "orderId", orderID)
		return nil
	}
	if order == nil {
		return nil
	}
	if actual := order.TrackableQuantity(); actual != declared {
		mismatch := &domain.InconsistentBatchError{OrderID: orderID, Declared: declared, Actual: actual}
		return errors.ErrUnprocessable(mismatch.Error())
	}
	return nil
}

// admit runs the shared admission sequence: build the aggregate, reserve
// entry-stage capacity, persist, and roll the reservation back on failure.
// The aggregate is built first so that a non-trackable product or invalid
// batch is refused before the ledger is touched.
func (s *SchedulingApplicationService) admit(ctx context.Context, build func() (*domain.Production, error)) (*domain.Production, error) {
	production, err := build()
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordProductionAdmitted("rejected")
		}
		var nte *domain.NonTrackableProductError
		if errors.As(err, &nte) {
			return nil, errors.ErrUnprocessable(err.Error())
		}
		return nil, errors.ErrValidation(err.Error())
	}

	entry := domain.EntryStage()
	if err := s.ledger.Reserve(entry, production.UnitsReserved); err != nil {
		var cee *domain.CapacityExceededError
		if errors.As(err, &cee) {
			if s.metrics != nil {
				s.metrics.RecordCapacityRefusal(string(entry))
				s.metrics.RecordProductionAdmitted("refused")
			}
			s.logger.CapacityRefusal(ctx, string(cee.Stage), cee.Requested, cee.Available, cee.Shortfall)
			return nil, errors.ErrCapacityExceeded(err.Error())
		}
		return nil, errors.ErrValidation(err.Error())
	}

	if err := s.saveWithSnapshot(ctx, production); err != nil {
		// roll back the reservation so a persistence failure never leaks capacity
		if relErr := s.ledger.Release(entry, production.UnitsReserved); relErr != nil {
			s.logger.WithError(relErr).Error("Failed to roll back reservation", "stage", entry)
		}
		if s.metrics != nil {
			s.metrics.RecordProductionAdmitted("error")
		}
		return nil, fmt.Errorf("failed to save production: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordProductionAdmitted("admitted")
		s.metrics.RecordCapacityReserved(string(entry), production.UnitsReserved)
	}
	s.publishUtilization()
	return production, nil
}

// AdvanceStage moves a production to its next stage. Capacity at the next
// stage is reserved before the current stage is released, so a full
// downstream stage refuses the transition without losing the current hold.
func (s *SchedulingApplicationService) AdvanceStage(ctx context.Context, cmd AdvanceStageCommand) (*ProductionDTO, error) {
	production, err := s.findProduction(ctx, cmd.ProductionID)
	if err != nil {
		return nil, err
	}

	current := production.Stage
	if current.IsFinal() {
		return s.completeProduction(ctx, production)
	}

	next, ok := current.Next()
	if !ok {
		return nil, errors.ErrValidation(fmt.Sprintf("stage %q has no successor", current))
	}

	units := production.UnitsReserved
	if err := s.ledger.Reserve(next, units); err != nil {
		var cee *domain.CapacityExceededError
		if errors.As(err, &cee) {
			if s.metrics != nil {
				s.metrics.RecordCapacityRefusal(string(next))
			}
			s.logger.CapacityRefusal(ctx, string(cee.Stage), cee.Requested, cee.Available, cee.Shortfall)
			return nil, errors.ErrCapacityExceeded(err.Error())
		}
		return nil, errors.ErrValidation(err.Error())
	}

	if err := production.AdvanceTo(next); err != nil {
		if relErr := s.ledger.Release(next, units); relErr != nil {
			s.logger.WithError(relErr).Error("Failed to roll back reservation", "stage", next)
		}
		return nil, errors.ErrValidation(err.Error())
	}

	if err := s.saveWithSnapshot(ctx, production); err != nil {
		if relErr := s.ledger.Release(next, units); relErr != nil {
			s.logger.WithError(relErr).Error("Failed to roll back reservation", "stage", next)
		}
		return nil, fmt.Errorf("failed to save production: %w", err)
	}

	if err := s.ledger.Release(current, units); err != nil {
		s.logger.WithError(err).Error("Failed to release previous stage", "stage", current)
	}

	if s.metrics != nil {
		s.metrics.RecordStageTransition(string(current), string(next))
	}
	s.publishUtilization()
	s.logger.StageTransition(ctx, production.ProductionID, string(current), string(next))
	return ToProductionDTO(production), nil
}

// completeProduction finishes a production sitting at the final stage and
// releases its remaining capacity.
func (s *SchedulingApplicationService) completeProduction(ctx context.Context, production *domain.Production) (*ProductionDTO, error) {
	final := production.Stage
	units := production.UnitsReserved

	if err := production.Complete(); err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	if err := s.saveWithSnapshot(ctx, production); err != nil {
		return nil, fmt.Errorf("failed to save production: %w", err)
	}

	if units > 0 {
		if err := s.ledger.Release(final, units); err != nil {
			s.logger.WithError(err).Error("Failed to release final stage", "stage", final)
		}
	}

	s.publishUtilization()
	s.logger.Info("Completed production",
		"productionId", production.ProductionID,
		"quantity", production.Quantity)
	return ToProductionDTO(production), nil
}

// ChangePriority changes a production's priority. This is metadata only and
// never touches the capacity ledger.
func (s *SchedulingApplicationService) ChangePriority(ctx context.Context, cmd ChangePriorityCommand) (*ProductionDTO, error) {
	production, err := s.findProduction(ctx, cmd.ProductionID)
	if err != nil {
		return nil, err
	}

	priority, err := domain.ParsePriority(cmd.Priority)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	if err := production.ChangePriority(priority, cmd.Note); err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	if err := s.repo.Save(ctx, production); err != nil {
		if errors.Is(err, domain.ErrStaleProduction) {
			return nil, errors.ErrConflict(err.Error())
		}
		return nil, fmt.Errorf("failed to save production: %w", err)
	}

	s.logger.Info("Changed production priority",
		"productionId", cmd.ProductionID,
		"priority", cmd.Priority)
	return ToProductionDTO(production), nil
}

// CancelProduction cancels a production and releases the capacity it holds
// at its current stage. Cancelling an already-cancelled production is a no-op.
func (s *SchedulingApplicationService) CancelProduction(ctx context.Context, cmd CancelProductionCommand) (*ProductionDTO, error) {
	production, err := s.findProduction(ctx, cmd.ProductionID)
	if err != nil {
		return nil, err
	}

	stage := production.Stage
	released, err := production.Cancel(cmd.Reason)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	if released == 0 {
		// already cancelled, nothing to persist or release
		return ToProductionDTO(production), nil
	}

	if err := s.saveWithSnapshot(ctx, production); err != nil {
		return nil, fmt.Errorf("failed to save production: %w", err)
	}

	if err := s.ledger.Release(stage, released); err != nil {
		s.logger.WithError(err).Error("Failed to release cancelled production", "stage", stage)
	}

	s.publishUtilization()
	s.logger.Info("Cancelled production",
		"productionId", cmd.ProductionID,
		"reason", cmd.Reason,
		"unitsReleased", released)
	return ToProductionDTO(production), nil
}

// CancelByOrder cancels the production that contains the given order.
// Used by the order-cancelled event consumer; missing productions are
// ignored so the consumer stays idempotent.
func (s *SchedulingApplicationService) CancelByOrder(ctx context.Context, orderID, reason string) error {
	production, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to find production for order: %w", err)
	}
	if production == nil {
		s.logger.Debug("No production for cancelled order", "orderId", orderID)
		return nil
	}
	if !production.IsActive() {
		return nil
	}

	_, err = s.CancelProduction(ctx, CancelProductionCommand{
		ProductionID: production.ProductionID,
		Reason:       reason,
	})
	return err
}

// GetProduction retrieves a production by ID
func (s *SchedulingApplicationService) GetProduction(ctx context.Context, query GetProductionQuery) (*ProductionDTO, error) {
	production, err := s.findProduction(ctx, query.ProductionID)
	if err != nil {
		return nil, err
	}
	return ToProductionDTO(production), nil
}

// GetProductionByBatch retrieves a production by batch number
func (s *SchedulingApplicationService) GetProductionByBatch(ctx context.Context, query GetProductionByBatchQuery) (*ProductionDTO, error) {
	production, err := s.repo.FindByBatchNumber(ctx, query.BatchNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to get production: %w", err)
	}
	if production == nil {
		return nil, errors.ErrNotFoundWithID("production", query.BatchNumber)
	}
	return ToProductionDTO(production), nil
}

// GetProductionByOrder retrieves the production containing an order
func (s *SchedulingApplicationService) GetProductionByOrder(ctx context.Context, query GetProductionByOrderQuery) (*ProductionDTO, error) {
	production, err := s.repo.FindByOrderID(ctx, query.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get production: %w", err)
	}
	if production == nil {
		return nil, errors.ErrNotFoundWithID("production", query.OrderID)
	}
	return ToProductionDTO(production), nil
}

// ListProductions retrieves a page of productions, optionally filtered by status
func (s *SchedulingApplicationService) ListProductions(ctx context.Context, query ListProductionsQuery) ([]ProductionListDTO, int64, error) {
	sortOrder := -1
	if query.Order == "asc" {
		sortOrder = 1
	}
	sortField := query.SortBy
	if sortField == "" {
		sortField = "createdAt"
	}

	offset := (query.Page - 1) * query.Limit
	productions, total, err := s.repo.FindPage(ctx, domain.ProductionStatus(query.Status), offset, query.Limit, sortField, sortOrder)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list productions")
		return nil, 0, fmt.Errorf("failed to list productions: %w", err)
	}

	return ToProductionListDTOs(productions), total, nil
}

// findProduction loads a production or returns a not-found application error
func (s *SchedulingApplicationService) findProduction(ctx context.Context, productionID string) (*domain.Production, error) {
	production, err := s.repo.FindByID(ctx, productionID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get production", "productionId", productionID)
		return nil, fmt.Errorf("failed to get production: %w", err)
	}
	if production == nil {
		return nil, errors.ErrNotFoundWithID("production", productionID)
	}
	return production, nil
}

// lookupProduct resolves a product from the catalog
func (s *SchedulingApplicationService) lookupProduct(ctx context.Context, productID string) (*domain.Product, error) {
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to look up product", "productId", productID)
		if errors.Is(err, resilience.ErrCircuitOpen) {
			return nil, errors.ErrServiceUnavailable("catalog service").Wrap(err)
		}
		return nil, fmt.Errorf("failed to look up product: %w", err)
	}
	if product == nil {
		// A product the catalog does not know is treated as non-trackable
		// rather than missing: the request itself is well-formed, the
		// product just cannot be scheduled.
		nte := &domain.NonTrackableProductError{ProductID: productID}
		return nil, errors.ErrUnprocessable(nte.Error()).WithDetail("productId", productID)
	}
	return product, nil
}

// saveWithSnapshot persists the aggregate and the ledger snapshot together.
// The snapshot is best-effort: the ledger is authoritative in memory and the
// snapshot only seeds the rebuild after a restart.
func (s *SchedulingApplicationService) saveWithSnapshot(ctx context.Context, production *domain.Production) error {
	if err := s.repo.Save(ctx, production); err != nil {
		if errors.Is(err, domain.ErrStaleProduction) {
			return errors.ErrConflict(err.Error())
		}
		return err
	}
	if err := s.capacityRepo.SaveUsage(ctx, s.ledger.Snapshot()); err != nil {
		s.logger.WithError(err).Warn("Failed to persist capacity snapshot")
	}
	return nil
}

// publishUtilization refreshes the per-stage utilization gauges
func (s *SchedulingApplicationService) publishUtilization() {
	if s.metrics == nil {
		return
	}
	for _, usage := range s.ledger.Snapshot() {
		s.metrics.SetStageUtilization(string(usage.Stage), usage.Utilization())
	}
}

func parsePriority(raw string) (domain.Priority, error) {
	if raw == "" {
		return domain.PriorityMedium, nil
	}
	return domain.ParsePriority(raw)
}

// generateProductionID generates a unique production ID
func generateProductionID() string {
	now := time.Now()
	return fmt.Sprintf("PRD-%s-%d", now.Format("20060102"), now.UnixNano()%100000)
}
