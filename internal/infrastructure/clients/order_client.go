package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/furniture-mes/scheduling-service/pkg/logging"
	"github.com/furniture-mes/scheduling-service/pkg/resilience"

	"github.com/furniture-mes/scheduling-service/internal/domain"
)

// OrderDTO represents order data fetched from order-service
type OrderDTO struct {
	OrderID    string         `json:"orderId"`
	CustomerID string         `json:"customerId"`
	Status     string         `json:"status"`
	Lines      []OrderLineDTO `json:"lines"`
	AcceptedAt time.Time      `json:"acceptedAt"`
}

// OrderLineDTO represents a single line of an order
type OrderLineDTO struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
}

// PagedOrdersResponse represents paginated orders response from order-service
type PagedOrdersResponse struct {
	Data       []OrderDTO `json:"data"`
	Page       int        `json:"page"`
	PageSize   int        `json:"pageSize"`
	TotalItems int        `json:"totalItems"`
	TotalPages int        `json:"totalPages"`
}

// OrderServiceClient handles communication with order-service
// Implements domain.OrderService interface
type OrderServiceClient struct {
	baseURL    string
	httpClient *http.Client
	breaker    *resilience.CircuitBreaker
}

// NewOrderServiceClient creates a new OrderServiceClient
func NewOrderServiceClient(baseURL string, logger *logging.Logger) *OrderServiceClient {
	return &OrderServiceClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		breaker: resilience.NewCircuitBreaker(
			resilience.DefaultCircuitBreakerConfig("order-service"), logger.Logger),
	}
}

// GetOrder fetches a single order by ID from order-service
func (c *OrderServiceClient) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	url := fmt.Sprintf("%s/api/v1/orders/%s", c.baseURL, orderID)

	result, err := c.breaker.Execute(ctx, func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch order: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return (*OrderDTO)(nil), nil
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("order service returned status %d", resp.StatusCode)
		}

		var order OrderDTO
		if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
			return nil, fmt.Errorf("failed to decode order response: %w", err)
		}
		return &order, nil
	})
	if err != nil {
		return nil, err
	}

	dto := result.(*OrderDTO)
	if dto == nil {
		return nil, nil
	}

	order := toDomainOrder(*dto)
	return &order, nil
}

// GetSchedulableOrders fetches confirmed orders ready for scheduling
// Implements domain.OrderService interface
func (c *OrderServiceClient) GetSchedulableOrders(ctx context.Context, limit int) ([]domain.Order, error) {
	url := fmt.Sprintf("%s/api/v1/orders/status/confirmed", c.baseURL)

	result, err := c.breaker.Execute(ctx, func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		q := req.URL.Query()
		if limit > 0 {
			q.Add("limit", fmt.Sprintf("%d", limit))
		} else {
			q.Add("limit", "100")
		}
		q.Add("sortBy", "acceptedAt")
		q.Add("sortOrder", "asc")
		req.URL.RawQuery = q.Encode()

		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch confirmed orders: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("order service returned status %d", resp.StatusCode)
		}

		var pagedResponse PagedOrdersResponse
		if err := json.NewDecoder(resp.Body).Decode(&pagedResponse); err != nil {
			return nil, fmt.Errorf("failed to decode orders response: %w", err)
		}
		return pagedResponse.Data, nil
	})
	if err != nil {
		return nil, err
	}

	dtos := result.([]OrderDTO)
	orders := make([]domain.Order, 0, len(dtos))
	for _, dto := range dtos {
		orders = append(orders, toDomainOrder(dto))
	}

	return orders, nil
}

// toDomainOrder converts an OrderDTO to a domain Order. Trackability is
// derived from the product name; the order service does not carry the flag.
func toDomainOrder(dto OrderDTO) domain.Order {
	lines := make([]domain.OrderLine, 0, len(dto.Lines))
	for _, line := range dto.Lines {
		lines = append(lines, domain.OrderLine{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			Trackable:   domain.TrackableByName(line.ProductName),
		})
	}

	return domain.Order{
		ID:         dto.OrderID,
		CustomerID: dto.CustomerID,
		Status:     domain.OrderStatus(dto.Status),
		Lines:      lines,
		AcceptedAt: dto.AcceptedAt,
	}
}
