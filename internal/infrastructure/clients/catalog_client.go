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

// ProductDTO represents product data fetched from catalog-service
type ProductDTO struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Category    string `json:"category"`
}

// CatalogServiceClient handles communication with catalog-service
// Implements domain.ProductCatalog interface
type CatalogServiceClient struct {
	baseURL    string
	httpClient *http.Client
	breaker    *resilience.CircuitBreaker
}

// NewCatalogServiceClient creates a new CatalogServiceClient
func NewCatalogServiceClient(baseURL string, logger *logging.Logger) *CatalogServiceClient {
	return &CatalogServiceClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		breaker: resilience.NewCircuitBreaker(
			resilience.DefaultCircuitBreakerConfig("catalog-service"), logger.Logger),
	}
}

// GetProduct fetches a product by ID from catalog-service
func (c *CatalogServiceClient) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	url := fmt.Sprintf("%s/api/v1/products/%s", c.baseURL, productID)

	result, err := c.breaker.Execute(ctx, func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch product: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return (*ProductDTO)(nil), nil
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("catalog service returned status %d", resp.StatusCode)
		}

		var product ProductDTO
		if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
			return nil, fmt.Errorf("failed to decode product response: %w", err)
		}
		return &product, nil
	})
	if err != nil {
		return nil, err
	}

	dto := result.(*ProductDTO)
	if dto == nil {
		return nil, nil
	}

	return &domain.Product{
		ID:        dto.ProductID,
		Name:      dto.ProductName,
		Trackable: domain.TrackableByName(dto.ProductName),
	}, nil
}
