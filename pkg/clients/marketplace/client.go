package marketplace

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const deviceKeyHeader = "X-Device-Key"

// Client exposes the device operations of the FishTrace API.
type Client interface {
	ReportQuantity(ctx context.Context, vendorID, fishName string, quantity int) (*StockEntry, error)
	Health(ctx context.Context) error
}

// Config holds the connection settings of a stall device.
type Config struct {
	BaseURL   string
	DeviceKey string
	Timeout   time.Duration
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds a device API client.
func NewClient(cfg Config) *APIClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader(deviceKeyHeader, cfg.DeviceKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)

	return &APIClient{httpClient: restyClient}
}

// StockEntry mirrors the stall entry returned after a reading is stored.
type StockEntry struct {
	Name               string     `json:"name"`
	Quantity           *int       `json:"quantity"`
	Price              float64    `json:"price"`
	QuantityReportedAt *time.Time `json:"quantityReportedAt,omitempty"`
}

// apiError represents the server's error payload.
type apiError struct {
	Error string `json:"error"`
}

// ReportQuantity pushes one scale reading.
func (c *APIClient) ReportQuantity(ctx context.Context, vendorID, fishName string, quantity int) (*StockEntry, error) {
	result := new(StockEntry)
	apiErr := new(apiError)

	path := fmt.Sprintf("/api/devices/vendors/%s/stock/%s", url.PathEscape(vendorID), url.PathEscape(fishName))
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(map[string]int{"quantity": quantity}).
		SetResult(result).
		SetError(apiErr).
		Put(path)
	if err != nil {
		return nil, fmt.Errorf("report quantity: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, fmt.Errorf("fishtrace api error: code=%d, message=%s", resp.StatusCode(), apiErr.Error)
	}

	return result, nil
}

// Health checks that the server and its store are reachable.
func (c *APIClient) Health(ctx context.Context) error {
	resp, err := c.httpClient.R().SetContext(ctx).Get("/healthz")
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("health check: status %d", resp.StatusCode())
	}
	return nil
}
