package handler

import (
	"context"
	"errors"
	"net/http"

	"ecu-stand/internal/core/logger"
	"ecu-stand/internal/features/orders/domain"
	"ecu-stand/internal/features/orders/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	msgInvalidOrder  = "Invalid order data."
	msgNotConfigured = "Server email is not configured. Missing RESEND_API_KEY / OWNER_EMAIL / FROM_EMAIL."
	msgSendFailed    = "Failed to send email."
)

// IntakeService is the order intake operation the handler depends on.
type IntakeService interface {
	Intake(ctx context.Context, req service.OrderRequest) (*service.Receipt, error)
}

// OrderHandler handles HTTP requests related to orders.
type OrderHandler struct {
	// service accepts validated orders.
	service IntakeService
}

// NewOrderHandler creates a new instance of OrderHandler.
func NewOrderHandler(s IntakeService) *OrderHandler {
	return &OrderHandler{
		service: s,
	}
}

// SubmitOrder handles POST /api/order.
// @Summary Submit an order
// @Description Validates and prices an order, then emails the customer and the shop owner.
// @Tags Orders
// @Accept json
// @Produce json
// @Param order body service.OrderRequest true "Order details"
// @Success 200 {object} SubmitOrderResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/order [post]
func (h *OrderHandler) SubmitOrder(c *fiber.Ctx) error {
	rayID, ok := c.Locals("requestid").(string)
	if !ok {
		rayID = "unknown"
	}

	var req service.OrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error: msgInvalidOrder,
			RayID: rayID,
		})
	}

	receipt, err := h.service.Intake(c.UserContext(), req)
	if err != nil {
		status := http.StatusInternalServerError
		msg := msgSendFailed

		switch {
		case errors.Is(err, domain.ErrValidation):
			status = http.StatusBadRequest
			msg = msgInvalidOrder
		case errors.Is(err, domain.ErrConfiguration):
			msg = msgNotConfigured
		}

		logger.Get().Error("Order rejected",
			zap.Int("status", status),
			zap.String("ray_id", rayID),
			zap.Error(err),
		)

		return c.Status(status).JSON(ErrorResponse{
			Error: msg,
			RayID: rayID,
		})
	}

	return c.Status(http.StatusOK).JSON(SubmitOrderResponse{
		OK:        true,
		OrderID:   receipt.Order.ID,
		CreatedAt: receipt.Order.Date,
		Pricing:   receipt.Pricing.Quote(),
	})
}

// SubmitOrderResponse is returned for an accepted order.
type SubmitOrderResponse struct {
	OK        bool         `json:"ok"`
	OrderID   string       `json:"orderId"`
	CreatedAt string       `json:"createdAt"`
	Pricing   domain.Quote `json:"pricing"`
}

// ErrorResponse represents the structure of an error response.
type ErrorResponse struct {
	// OK is always false.
	OK bool `json:"ok"`
	// Error is the client-facing error description.
	Error string `json:"error"`
	// RayID is the unique request identifier for debugging.
	RayID string `json:"ray_id"`
}
