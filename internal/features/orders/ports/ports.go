package ports

import (
	"context"

	"ecu-stand/internal/features/orders/domain"
)

// Email is one outbound notification.
type Email struct {
	From    string
	To      string
	Subject string
	// Exactly one of HTML or Text is normally set.
	HTML string
	Text string
}

// Notifier sends transactional email. Secondary port.
type Notifier interface {
	Send(ctx context.Context, email Email) error
}

// OrderStore is the order record store shared by the intake service, the
// order form and the admin dashboard. Orders are kept newest first.
type OrderStore interface {
	// LoadAll returns every stored order, most recently added first.
	LoadAll(ctx context.Context) ([]domain.Order, error)
	// Add prepends order, replacing any stored order with the same id.
	Add(ctx context.Context, order domain.Order) error
	// UpsertStatus changes the status of the order with id.
	UpsertStatus(ctx context.Context, id string, status domain.OrderStatus) error
	// Remove deletes the order with id.
	Remove(ctx context.Context, id string) error
	// Subscribe registers fn to run after every change. The returned func unregisters it.
	Subscribe(fn func()) (cancel func())
}
