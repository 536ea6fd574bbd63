package domain

import (
	"context"
)

// ProductionRepository defines the interface for production persistence
type ProductionRepository interface {
	// Save persists a production (create or update)
	Save(ctx context.Context, production *Production) error

	// FindByID retrieves a production by its ID
	FindByID(ctx context.Context, productionID string) (*Production, error)

	// FindByBatchNumber retrieves a production by its batch number
	FindByBatchNumber(ctx context.Context, batchNumber string) (*Production, error)

	// FindByOrderID retrieves the production containing a specific order
	FindByOrderID(ctx context.Context, orderID string) (*Production, error)

	// FindActive retrieves all productions that still hold capacity
	FindActive(ctx context.Context) ([]*Production, error)

	// FindPage retrieves a page of productions, optionally filtered by status
	FindPage(ctx context.Context, status ProductionStatus, offset, limit int64, sortField string, sortOrder int) ([]*Production, int64, error)
}

// CapacityRepository persists per-stage reservation snapshots so the ledger
// can be rebuilt after a restart.
type CapacityRepository interface {
	// SaveUsage persists the current usage of every stage
	SaveUsage(ctx context.Context, usages []StageUsage) error

	// LoadUsage retrieves the persisted usage of every stage
	LoadUsage(ctx context.Context) ([]StageUsage, error)
}

// OrderService defines the interface for fetching customer orders
type OrderService interface {
	// GetSchedulableOrders retrieves confirmed orders not yet in production
	GetSchedulableOrders(ctx context.Context, limit int) ([]Order, error)

	// GetOrder retrieves a single order by ID
	GetOrder(ctx context.Context, orderID string) (*Order, error)
}

// ProductCatalog defines the interface for product lookups
type ProductCatalog interface {
	// GetProduct retrieves a product by ID
	GetProduct(ctx context.Context, productID string) (*Product, error)
}
