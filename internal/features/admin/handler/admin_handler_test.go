package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"ecu-stand/internal/features/admin/domain"
	orderdomain "ecu-stand/internal/features/orders/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAdminService is a mock implementation of AdminService.
type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) Unlock(passphrase string) error {
	return m.Called(passphrase).Error(0)
}

func (m *MockAdminService) ListOrders(ctx context.Context) ([]orderdomain.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]orderdomain.Order), args.Error(1)
}

func (m *MockAdminService) Analytics(ctx context.Context) (domain.Analytics, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Analytics), args.Error(1)
}

func (m *MockAdminService) ChangeStatus(ctx context.Context, id string, status string) (*orderdomain.Order, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderdomain.Order), args.Error(1)
}

func (m *MockAdminService) DeleteOrder(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func setupApp(service *MockAdminService) *fiber.App {
	app := fiber.New()
	NewAdminHandler(service).Register(app)
	return app
}

func gated(method, target string, body []byte) *http.Request {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set(PassphraseHeader, "1234")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestAdminHandler_Login(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := new(MockAdminService)
		app := setupApp(mockService)
		mockService.On("Unlock", "1234").Return(nil).Once()

		req := httptest.NewRequest("POST", "/api/admin/login", bytes.NewBufferString(`{"passphrase":"1234"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockService.AssertExpectations(t)
	})

	t.Run("Rejected", func(t *testing.T) {
		mockService := new(MockAdminService)
		app := setupApp(mockService)
		mockService.On("Unlock", "0000").Return(domain.ErrInvalidPassphrase).Once()

		req := httptest.NewRequest("POST", "/api/admin/login", bytes.NewBufferString(`{"passphrase":"0000"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)

		var out ErrorResponse
		decode(t, resp, &out)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Invalid Access Code", out.Error)
		assert.False(t, out.OK)
	})
}

func TestAdminHandler_Gate(t *testing.T) {
	mockService := new(MockAdminService)
	app := setupApp(mockService)
	mockService.On("Unlock", "").Return(domain.ErrInvalidPassphrase)

	for _, tt := range []struct{ method, target string }{
		{"GET", "/api/admin/orders"},
		{"GET", "/api/admin/analytics"},
		{"PATCH", "/api/admin/orders/AAAA1111"},
		{"DELETE", "/api/admin/orders/AAAA1111?confirm=true"},
	} {
		resp, err := app.Test(httptest.NewRequest(tt.method, tt.target, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, tt.target)
	}

	mockService.AssertNotCalled(t, "ListOrders", mock.Anything)
	mockService.AssertNotCalled(t, "DeleteOrder", mock.Anything, mock.Anything)
}

func TestAdminHandler_ListOrders(t *testing.T) {
	mockService := new(MockAdminService)
	app := setupApp(mockService)
	mockService.On("Unlock", "1234").Return(nil)

	orders := []orderdomain.Order{
		{
			OrderFormData: orderdomain.OrderFormData{Country: orderdomain.CountryAlbania, Quantity: 2},
			ID:            "BBBB2222",
			Status:        orderdomain.OrderStatusPacked,
		},
		{
			OrderFormData: orderdomain.OrderFormData{Country: orderdomain.CountryKosovo, Quantity: 1},
			ID:            "AAAA1111",
			Status:        orderdomain.OrderStatusPending,
		},
	}
	mockService.On("ListOrders", mock.Anything).Return(orders, nil).Once()

	resp, err := app.Test(gated("GET", "/api/admin/orders", nil))
	require.NoError(t, err)

	var out []OrderResponse
	decode(t, resp, &out)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, out, 2)
	assert.Equal(t, orders[0], out[0].Order)
	assert.Equal(t, orderdomain.Quote{BasePrice: 14.99, ShippingCost: 5, TotalPrice: 34.98}, out[0].Pricing)
	assert.Equal(t, orders[1], out[1].Order)
	assert.Equal(t, orderdomain.Quote{BasePrice: 14.99, ShippingCost: 0, TotalPrice: 14.99}, out[1].Pricing)
	mockService.AssertExpectations(t)
}

func TestAdminHandler_ListOrders_StoreError(t *testing.T) {
	mockService := new(MockAdminService)
	app := setupApp(mockService)
	mockService.On("Unlock", "1234").Return(nil)
	mockService.On("ListOrders", mock.Anything).Return(nil, errors.New("redis down")).Once()

	resp, err := app.Test(gated("GET", "/api/admin/orders", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestAdminHandler_Analytics(t *testing.T) {
	mockService := new(MockAdminService)
	app := setupApp(mockService)
	mockService.On("Unlock", "1234").Return(nil)

	a := domain.ComputeAnalytics([]orderdomain.Order{
		{OrderFormData: orderdomain.OrderFormData{Country: orderdomain.CountryKosovo, Quantity: 2}, Status: orderdomain.OrderStatusDelivered},
	})
	mockService.On("Analytics", mock.Anything).Return(a, nil).Once()

	resp, err := app.Test(gated("GET", "/api/admin/analytics", nil))
	require.NoError(t, err)

	var out domain.Summary
	decode(t, resp, &out)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, out.TotalOrders)
	assert.Equal(t, 29.98, out.TotalRevenue)
	assert.Equal(t, 1, out.StatusDistribution["Delivered"])
}

func TestAdminHandler_ChangeStatus(t *testing.T) {
	tests := []struct {
		name   string
		result *orderdomain.Order
		err    error
		status int
	}{
		{name: "Success", result: &orderdomain.Order{
			OrderFormData: orderdomain.OrderFormData{Country: orderdomain.CountryKosovo, Quantity: 3},
			ID:            "AAAA1111",
			Status:        orderdomain.OrderStatusShipped,
		}, status: http.StatusOK},
		{name: "InvalidStatus", err: fmt.Errorf("%w: %q", orderdomain.ErrInvalidStatus, "Shipped"), status: http.StatusBadRequest},
		{name: "NotFound", err: fmt.Errorf("%w: AAAA1111", orderdomain.ErrOrderNotFound), status: http.StatusNotFound},
		{name: "StoreError", err: errors.New("redis down"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockAdminService)
			app := setupApp(mockService)
			mockService.On("Unlock", "1234").Return(nil)
			if tt.result != nil {
				mockService.On("ChangeStatus", mock.Anything, "AAAA1111", "Shipped").Return(tt.result, nil).Once()
			} else {
				mockService.On("ChangeStatus", mock.Anything, "AAAA1111", "Shipped").Return(nil, tt.err).Once()
			}

			resp, err := app.Test(gated("PATCH", "/api/admin/orders/AAAA1111", []byte(`{"status":"Shipped"}`)))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.result != nil {
				var out OrderResponse
				decode(t, resp, &out)
				assert.Equal(t, *tt.result, out.Order)
				assert.Equal(t, tt.result.Pricing().Quote(), out.Pricing)
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestAdminHandler_DeleteOrder(t *testing.T) {
	t.Run("RequiresConfirmation", func(t *testing.T) {
		mockService := new(MockAdminService)
		app := setupApp(mockService)
		mockService.On("Unlock", "1234").Return(nil)

		for _, target := range []string{"/api/admin/orders/AAAA1111", "/api/admin/orders/AAAA1111?confirm=false"} {
			resp, err := app.Test(gated("DELETE", target, nil))
			require.NoError(t, err)
			assert.Equal(t, http.StatusPreconditionRequired, resp.StatusCode, target)
		}
		mockService.AssertNotCalled(t, "DeleteOrder", mock.Anything, mock.Anything)
	})

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockAdminService)
		app := setupApp(mockService)
		mockService.On("Unlock", "1234").Return(nil)
		mockService.On("DeleteOrder", mock.Anything, "AAAA1111").Return(nil).Once()

		resp, err := app.Test(gated("DELETE", "/api/admin/orders/AAAA1111?confirm=true", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockService.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockAdminService)
		app := setupApp(mockService)
		mockService.On("Unlock", "1234").Return(nil)
		mockService.On("DeleteOrder", mock.Anything, "MISSING1").Return(orderdomain.ErrOrderNotFound).Once()

		resp, err := app.Test(gated("DELETE", "/api/admin/orders/MISSING1?confirm=true", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
