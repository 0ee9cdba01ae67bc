package handler

import (
	"context"
	"errors"
	"net/http"

	"ecu-stand/internal/core/logger"
	"ecu-stand/internal/features/admin/domain"
	orderdomain "ecu-stand/internal/features/orders/domain"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// PassphraseHeader carries the shared admin passphrase on gated requests.
const PassphraseHeader = "X-Admin-Passphrase"

// AdminService is the admin operation set the handler depends on.
type AdminService interface {
	Unlock(passphrase string) error
	ListOrders(ctx context.Context) ([]orderdomain.Order, error)
	Analytics(ctx context.Context) (domain.Analytics, error)
	ChangeStatus(ctx context.Context, id string, status string) (*orderdomain.Order, error)
	DeleteOrder(ctx context.Context, id string) error
}

// AdminHandler handles HTTP requests for the admin dashboard.
type AdminHandler struct {
	service AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(service AdminService) *AdminHandler {
	return &AdminHandler{
		service: service,
	}
}

// Register mounts the admin routes under /api/admin.
func (h *AdminHandler) Register(r fiber.Router) {
	g := r.Group("/api/admin")
	g.Post("/login", h.Login)
	g.Get("/orders", h.RequirePassphrase, h.ListOrders)
	g.Get("/analytics", h.RequirePassphrase, h.Analytics)
	g.Patch("/orders/:id", h.RequirePassphrase, h.ChangeStatus)
	g.Delete("/orders/:id", h.RequirePassphrase, h.DeleteOrder)
}

// LoginRequest represents the request body for unlocking the dashboard.
type LoginRequest struct {
	Passphrase string `json:"passphrase"`
}

// StatusRequest represents the request body for changing an order status.
type StatusRequest struct {
	Status string `json:"status"`
}

// OrderResponse is an order with its computed pricing.
type OrderResponse struct {
	orderdomain.Order
	Pricing orderdomain.Quote `json:"pricing"`
}

func toResponse(o orderdomain.Order) OrderResponse {
	return OrderResponse{Order: o, Pricing: o.Pricing().Quote()}
}

// ErrorResponse represents the structure of an error response.
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	RayID string `json:"ray_id"`
}

func fail(c *fiber.Ctx, status int, msg string) error {
	rayID, ok := c.Locals("requestid").(string)
	if !ok {
		rayID = "unknown"
	}
	return c.Status(status).JSON(ErrorResponse{Error: msg, RayID: rayID})
}

// RequirePassphrase rejects requests without the shared passphrase.
// It is a convenience gate, not an authentication layer.
func (h *AdminHandler) RequirePassphrase(c *fiber.Ctx) error {
	if err := h.service.Unlock(c.Get(PassphraseHeader)); err != nil {
		return fail(c, http.StatusUnauthorized, "Invalid Access Code")
	}
	return c.Next()
}

// Login handles POST /api/admin/login.
// @Summary Unlock the dashboard
// @Description Checks the shared passphrase. The gate is not a security boundary.
// @Tags Admin
// @Accept json
// @Produce json
// @Param login body LoginRequest true "Passphrase"
// @Success 200 {object} map[string]bool
// @Failure 401 {object} ErrorResponse
// @Router /api/admin/login [post]
func (h *AdminHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	if err := h.service.Unlock(req.Passphrase); err != nil {
		return fail(c, http.StatusUnauthorized, "Invalid Access Code")
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{"ok": true})
}

// ListOrders handles GET /api/admin/orders.
// @Summary List orders
// @Description Lists recorded orders newest first.
// @Tags Admin
// @Produce json
// @Param X-Admin-Passphrase header string true "Shared admin passphrase"
// @Success 200 {array} OrderResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/admin/orders [get]
func (h *AdminHandler) ListOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListOrders(c.UserContext())
	if err != nil {
		logger.Get().Error("Failed to list orders", zap.Error(err))
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toResponse(o))
	}
	return c.Status(http.StatusOK).JSON(out)
}

// Analytics handles GET /api/admin/analytics.
// @Summary Order analytics
// @Description Totals, revenue and status distribution over all recorded orders.
// @Tags Admin
// @Produce json
// @Param X-Admin-Passphrase header string true "Shared admin passphrase"
// @Success 200 {object} domain.Summary
// @Failure 401 {object} ErrorResponse
// @Router /api/admin/analytics [get]
func (h *AdminHandler) Analytics(c *fiber.Ctx) error {
	a, err := h.service.Analytics(c.UserContext())
	if err != nil {
		logger.Get().Error("Failed to compute analytics", zap.Error(err))
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.Status(http.StatusOK).JSON(a.Summary())
}

// ChangeStatus handles PATCH /api/admin/orders/:id.
// @Summary Change order status
// @Description Sets the fulfillment status of an order.
// @Tags Admin
// @Accept json
// @Produce json
// @Param X-Admin-Passphrase header string true "Shared admin passphrase"
// @Param id path string true "Order ID"
// @Param status body StatusRequest true "New status"
// @Success 200 {object} OrderResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/admin/orders/{id} [patch]
func (h *AdminHandler) ChangeStatus(c *fiber.Ctx) error {
	var req StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	order, err := h.service.ChangeStatus(c.UserContext(), c.Params("id"), req.Status)
	if err != nil {
		return h.orderError(c, err, "Failed to change order status")
	}
	return c.Status(http.StatusOK).JSON(toResponse(*order))
}

// DeleteOrder handles DELETE /api/admin/orders/:id.
// @Summary Delete an order
// @Description Removes an order. Requires confirm=true.
// @Tags Admin
// @Produce json
// @Param X-Admin-Passphrase header string true "Shared admin passphrase"
// @Param id path string true "Order ID"
// @Param confirm query bool true "Explicit confirmation"
// @Success 200 {object} map[string]bool
// @Failure 404 {object} ErrorResponse
// @Failure 428 {object} ErrorResponse
// @Router /api/admin/orders/{id} [delete]
func (h *AdminHandler) DeleteOrder(c *fiber.Ctx) error {
	if !c.QueryBool("confirm") {
		return fail(c, http.StatusPreconditionRequired, "Deletion must be confirmed with confirm=true")
	}

	if err := h.service.DeleteOrder(c.UserContext(), c.Params("id")); err != nil {
		return h.orderError(c, err, "Failed to delete order")
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"ok": true})
}

func (h *AdminHandler) orderError(c *fiber.Ctx, err error, logMsg string) error {
	switch {
	case errors.Is(err, orderdomain.ErrOrderNotFound):
		return fail(c, http.StatusNotFound, "Order not found")
	case errors.Is(err, orderdomain.ErrInvalidStatus):
		return fail(c, http.StatusBadRequest, "Invalid status. Must be Pending, Packed, Shipped, Delivered or Canceled")
	}
	logger.Get().Error(logMsg, zap.String("order_id", c.Params("id")), zap.Error(err))
	return fail(c, http.StatusInternalServerError, "Internal server error")
}
