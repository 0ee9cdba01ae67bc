package ports

import (
	"context"

	"ecu-stand/internal/features/orders/domain"
)

// IntakeResult is what the intake API reported for an accepted order.
// Either field may be empty when the response body was unreadable.
type IntakeResult struct {
	OrderID   string
	CreatedAt string
}

// IntakeClient submits orders to the intake API. Secondary port.
type IntakeClient interface {
	SubmitOrder(ctx context.Context, order domain.OrderFormData) (*IntakeResult, error)
}
