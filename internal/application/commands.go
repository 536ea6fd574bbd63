package application

// StartProductionCommand represents the command to start production for a single order
type StartProductionCommand struct {
	OrderID   string
	ProductID string
	Quantity  int
	Priority  string
}

// CreateBatchCommand represents the command to aggregate several orders of the
// same product into one batch production
type CreateBatchCommand struct {
	ProductID string
	Orders    []BatchOrderInput
	Priority  string
}

// BatchOrderInput is one order contribution to a batch
type BatchOrderInput struct {
	OrderID  string
	Quantity int
}

// AdvanceStageCommand represents the command to move a production to its next stage
type AdvanceStageCommand struct {
	ProductionID string
}

// ChangePriorityCommand represents the command to change a production's priority
type ChangePriorityCommand struct {
	ProductionID string
	Priority     string
	Note         string
}

// CancelProductionCommand represents the command to cancel a production
type CancelProductionCommand struct {
	ProductionID string
	Reason       string
}

// GetProductionQuery represents the query to get a production by ID
type GetProductionQuery struct {
	ProductionID string
}

// GetProductionByBatchQuery represents the query to get a production by batch number
type GetProductionByBatchQuery struct {
	BatchNumber string
}

// GetProductionByOrderQuery represents the query to get the production containing an order
type GetProductionByOrderQuery struct {
	OrderID string
}

// ListProductionsQuery represents the query to list productions with pagination
type ListProductionsQuery struct {
	Status string
	Page   int64
	Limit  int64
	SortBy string
	Order  string
}
