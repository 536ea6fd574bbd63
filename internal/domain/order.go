package domain

import "time"

// OrderStatus represents the status of a customer order
type OrderStatus string

const (
	OrderStatusPending          OrderStatus = "pending"
	OrderStatusConfirmed        OrderStatus = "confirmed"
	OrderStatusInProduction     OrderStatus = "in_production"
	OrderStatusReadyForDelivery OrderStatus = "ready_for_delivery"
	OrderStatusDelivered        OrderStatus = "delivered"
	OrderStatusCompleted        OrderStatus = "completed"
	OrderStatusCancelled        OrderStatus = "cancelled"
)

// OrderLine is a single product line on a customer order
type OrderLine struct {
	ProductID   string
	ProductName string
	Quantity    int
	Trackable   bool
}

// Order is a customer order as seen by the scheduler
type Order struct {
	ID         string
	CustomerID string
	Status     OrderStatus
	Lines      []OrderLine
	AcceptedAt time.Time
}

// TrackableLines returns only the lines whose products are tracked through
// the workshop stages.
func (o Order) TrackableLines() []OrderLine {
	lines := make([]OrderLine, 0, len(o.Lines))
	for _, line := range o.Lines {
		if line.Trackable {
			lines = append(lines, line)
		}
	}
	return lines
}

// TrackableQuantity returns the total quantity across trackable lines
func (o Order) TrackableQuantity() int {
	total := 0
	for _, line := range o.Lines {
		if line.Trackable {
			total += line.Quantity
		}
	}
	return total
}

// IsSchedulable reports whether the order is production-eligible: it must
// carry at least one trackable line and must not be completed or cancelled.
func (o Order) IsSchedulable() bool {
	if o.Status == OrderStatusCompleted || o.Status == OrderStatusCancelled {
		return false
	}
	return len(o.TrackableLines()) > 0
}

// Readiness classifies an order's position in the production pipeline
type Readiness string

const (
	ReadinessPending      Readiness = "pending"
	ReadinessReady        Readiness = "ready_for_production"
	ReadinessInProduction Readiness = "in_production"
	ReadinessCompleted    Readiness = "completed"
)

// ClassifyReadiness derives an order's readiness from its status and whether
// a production already exists for it.
func ClassifyReadiness(order Order, hasProduction, productionDone bool) Readiness {
	switch {
	case hasProduction && productionDone:
		return ReadinessCompleted
	case hasProduction:
		return ReadinessInProduction
	case order.Status == OrderStatusCompleted:
		return ReadinessCompleted
	case order.Status == OrderStatusConfirmed:
		return ReadinessReady
	default:
		return ReadinessPending
	}
}
