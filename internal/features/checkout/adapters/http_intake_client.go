package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ecu-stand/internal/core/httpclient"
	"ecu-stand/internal/core/logger"
	"ecu-stand/internal/features/checkout/ports"
	"ecu-stand/internal/features/orders/domain"

	"go.uber.org/zap"
)

// HTTPIntakeClient implements ports.IntakeClient against POST /api/order.
type HTTPIntakeClient struct {
	client  *http.Client
	baseURL string
}

// NewHTTPIntakeClient creates a new instance of HTTPIntakeClient.
// An empty baseURL targets relative paths and is only useful behind a proxy.
func NewHTTPIntakeClient(baseURL string, timeout time.Duration) *HTTPIntakeClient {
	return &HTTPIntakeClient{
		client:  httpclient.NewClient("intake-api", timeout),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type submitRequest struct {
	Order domain.OrderFormData `json:"order"`
}

type submitResponse struct {
	OK        bool   `json:"ok"`
	OrderID   string `json:"orderId"`
	CreatedAt string `json:"createdAt"`
	Error     string `json:"error"`
}

// SubmitOrder sends one order. It never retries.
func (c *HTTPIntakeClient) SubmitOrder(ctx context.Context, order domain.OrderFormData) (*ports.IntakeResult, error) {
	body, err := json.Marshal(submitRequest{Order: order})
	if err != nil {
		return nil, fmt.Errorf("failed to encode order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/order", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var data submitResponse
	decodeErr := json.Unmarshal(raw, &data)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if decodeErr == nil && data.Error != "" {
			return nil, fmt.Errorf("intake API returned status %d: %s", resp.StatusCode, data.Error)
		}
		return nil, fmt.Errorf("intake API returned status: %d", resp.StatusCode)
	}

	if decodeErr != nil {
		logger.Named("checkout").Warn("Intake API accepted the order with an unreadable body",
			zap.Int("status_code", resp.StatusCode),
			zap.Error(decodeErr),
		)
		return &ports.IntakeResult{}, nil
	}

	return &ports.IntakeResult{OrderID: data.OrderID, CreatedAt: data.CreatedAt}, nil
}

var _ ports.IntakeClient = (*HTTPIntakeClient)(nil)
