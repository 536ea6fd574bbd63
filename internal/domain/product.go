package domain

import (
	"fmt"
	"strings"
)

// NonTrackableProductError is returned when a production or batch is
// requested for a product that is not tracked through the workshop stages.
type NonTrackableProductError struct {
	ProductID   string
	ProductName string
}

func (e *NonTrackableProductError) Error() string {
	name := e.ProductName
	if name == "" {
		name = e.ProductID
	}
	return fmt.Sprintf("product %q is not trackable and cannot be scheduled for production", name)
}

// Product describes a catalog product as seen by the scheduler
type Product struct {
	ID        string
	Name      string
	Trackable bool
}

// stockProducedKeyword marks products that are made to stock in fixed daily
// runs and are never scheduled per order. Inherited from the legacy catalog.
const stockProducedKeyword = "alkansya"

// TrackableByName applies the legacy naming heuristic for catalogs that do
// not carry an explicit trackable flag.
func TrackableByName(name string) bool {
	return !strings.Contains(strings.ToLower(name), stockProducedKeyword)
}
