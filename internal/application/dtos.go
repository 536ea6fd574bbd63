package application

import "time"

// ProductionDTO represents a production in responses
type ProductionDTO struct {
	ProductionID        string          `json:"productionId"`
	BatchNumber         string          `json:"batchNumber,omitempty"`
	ProductID           string          `json:"productId"`
	ProductName         string          `json:"productName"`
	Items               []BatchItemDTO  `json:"items"`
	Quantity            int             `json:"quantity"`
	Stage               string          `json:"stage"`
	UnitsReserved       int             `json:"unitsReserved"`
	Priority            string          `json:"priority"`
	Status              string          `json:"status"`
	Progress            float64         `json:"progress"`
	Notes               string          `json:"notes,omitempty"`
	StageLog            []StageEntryDTO `json:"stageLog"`
	StageStartedAt      time.Time       `json:"stageStartedAt"`
	EstimatedCompletion time.Time       `json:"estimatedCompletion"`
	ActualCompletion    *time.Time      `json:"actualCompletion,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

// BatchItemDTO represents one order's contribution to a production
type BatchItemDTO struct {
	OrderID  string `json:"orderId"`
	Quantity int    `json:"quantity"`
}

// StageEntryDTO represents one entry of a production's stage history
type StageEntryDTO struct {
	Stage     string    `json:"stage"`
	EnteredAt time.Time `json:"enteredAt"`
}

// ProductionListDTO represents a simplified production for list operations
type ProductionListDTO struct {
	ProductionID        string    `json:"productionId"`
	BatchNumber         string    `json:"batchNumber,omitempty"`
	ProductID           string    `json:"productId"`
	ProductName         string    `json:"productName"`
	Quantity            int       `json:"quantity"`
	Stage               string    `json:"stage"`
	Priority            string    `json:"priority"`
	Status              string    `json:"status"`
	Progress            float64   `json:"progress"`
	OrderCount          int       `json:"orderCount"`
	EstimatedCompletion time.Time `json:"estimatedCompletion"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// StartProductionRequest is the API request for starting a single-order production
type StartProductionRequest struct {
	OrderID   string `json:"orderId" binding:"required"`
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	Priority  string `json:"priority" binding:"omitempty,production_priority"`
}

// CreateBatchRequest is the API request for creating a batch production
type CreateBatchRequest struct {
	ProductID string                  `json:"productId" binding:"required"`
	Orders    []BatchOrderRequestItem `json:"orders" binding:"required,min=1,dive"`
	Priority  string                  `json:"priority" binding:"omitempty,production_priority"`
}

// BatchOrderRequestItem is one order line of a CreateBatchRequest
type BatchOrderRequestItem struct {
	OrderID  string `json:"orderId" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

// ChangePriorityRequest is the API request for changing a production's priority
type ChangePriorityRequest struct {
	Priority string `json:"priority" binding:"required,production_priority"`
	Note     string `json:"note"`
}

// CancelProductionRequest is the API request for cancelling a production
type CancelProductionRequest struct {
	Reason string `json:"reason"`
}

// ReadyOrderDTO represents an accepted order annotated with scheduling readiness
type ReadyOrderDTO struct {
	OrderID           string     `json:"orderId"`
	CustomerID        string     `json:"customerId"`
	Status            string     `json:"status"`
	Readiness         string     `json:"readiness"`
	TrackableQuantity int        `json:"trackableQuantity"`
	RequiredCapacity  int        `json:"requiredCapacity"`
	EstimatedDuration string     `json:"estimatedDuration"`
	AcceptedAt        time.Time  `json:"acceptedAt"`
	ProductionID      string     `json:"productionId,omitempty"`
	CompletedAt       *time.Time `json:"completedAt,omitempty"`
}

// StageWorkloadDTO represents the workload of one production stage
type StageWorkloadDTO struct {
	Stage       string  `json:"stage"`
	Capacity    int     `json:"capacity"`
	Reserved    int     `json:"reserved"`
	Available   int     `json:"available"`
	Utilization float64 `json:"utilization"`
	Status      string  `json:"status"`
}

// WorkloadReportDTO represents the workload of all stages plus any bottlenecks
type WorkloadReportDTO struct {
	Stages      []StageWorkloadDTO `json:"stages"`
	Bottlenecks []string           `json:"bottlenecks"`
	GeneratedAt time.Time          `json:"generatedAt"`
}

// SuggestionDTO represents one workload-rebalancing suggestion
type SuggestionDTO struct {
	Type     string `json:"type"`
	Priority string `json:"priority"`
	Message  string `json:"message"`
	Action   string `json:"action"`
}

// CapacityForecastDTO represents the demand-vs-availability forecast
type CapacityForecastDTO struct {
	HorizonDays       int       `json:"horizonDays"`
	PendingOrders     int       `json:"pendingOrders"`
	ProjectedDemand   int       `json:"projectedDemand"`
	AvailableCapacity int       `json:"availableCapacity"`
	Adequacy          string    `json:"adequacy"`
	Shortfall         int       `json:"shortfall"`
	RecommendedAction string    `json:"recommendedAction,omitempty"`
	GeneratedAt       time.Time `json:"generatedAt"`
}

// CapacityReportDTO represents current utilization across all stages
type CapacityReportDTO struct {
	Stages             []StageWorkloadDTO `json:"stages"`
	TotalCapacity      int                `json:"totalCapacity"`
	TotalReserved      int                `json:"totalReserved"`
	OverallUtilization float64            `json:"overallUtilization"`
	GeneratedAt        time.Time          `json:"generatedAt"`
}
